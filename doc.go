// Package vmix is a live video-mixing engine for [Ebitengine].
//
// A [Session] holds an ordered list of sources (pictures, nested sessions,
// loopbacks of an output) and composites them every frame into an offscreen
// [FrameBuffer]. Sessions fade their output smoothly, feed every produced
// frame to attached recorders and expose one scene subgraph per editing view.
//
// # Quick start
//
//	s := vmix.NewSession()
//	s.AddSource(vmix.NewImageSource("logo", "logo.png"))
//	s.SetFading(0, true)
//
//	// once per frame, from ebiten.Game.Update:
//	s.Update(1.0 / 60)
//	screen.DrawImage(s.Frame().Image(), nil)
//
// # Scene graph
//
// The scene graph is a tree of [Node] values: [Group] and [Switch] hold
// children, and the leaves [Primitive], [Surface], [Disk], [Handles],
// [Symbol] and [Frame] carry geometry in their local unit space. Every node
// has a translation, a rotation and a scale; [Scene.Update] recomputes the
// transforms of dirty subtrees once per frame.
//
// Behaviors over the tree are visitors. Each node hands itself to the method
// of [Visitor] matching its type, with the modelview accumulated by its
// ancestors passed down by value:
//
//	type counter struct {
//		vmix.NopVisitor
//		surfaces int
//	}
//
//	func (c *counter) VisitGroup(g *vmix.Group, mv mgl32.Mat4) { vmix.VisitChildren(c, g, mv) }
//	func (c *counter) VisitSurface(*vmix.Surface, mgl32.Mat4)  { c.surfaces++ }
//
// # Picking
//
// [PickingVisitor] tests query points against leaves by bringing the points
// into each leaf's local space through the inverse modelview. Hits come back
// in draw order: the last hit is the topmost node.
//
//	hits := scene.Pick(mgl32.Vec3{0.2, 0.4, 0})
//
// # Recording
//
// Any [Recorder] attached with [Session.AddRecorder] receives each frame
// until it reports finished. [PNGRecorder] writes numbered PNG files.
//
// Session files are read and written by the sessionfile package, and the
// metrics package exports session counters to Prometheus.
//
// [Ebitengine]: https://ebitengine.org
package vmix
