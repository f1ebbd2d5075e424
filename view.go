package vmix

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// viewAnim holds the active zoom and pan tweens of a view.
type viewAnim struct {
	zoom *gween.Tween
	panX *gween.Tween
	panY *gween.Tween
	done [3]bool
}

// View is an editing window onto a session for one ViewMode. It shows the
// subgraph each source contributes to that mode, zoomed and panned inside
// a screen viewport.
//
// Scene units map to pixels so that y in [-1/zoom, 1/zoom] spans the
// viewport height, y up, centered on Pan.
type View struct {
	Mode     ViewMode
	Viewport Rect
	Zoom     float32
	Pan      mgl32.Vec2

	scene  *Scene
	output *Surface
	drawer *DrawVisitor
	anim   *viewAnim
}

// NewView creates a view of the given mode covering viewport.
func NewView(mode ViewMode, viewport Rect) *View {
	return &View{
		Mode:     mode,
		Viewport: viewport,
		Zoom:     1,
		scene:    NewScene(),
		drawer:   NewDrawVisitor(mgl32.Ident4()),
	}
}

// Scene returns the scene displayed by the view.
func (v *View) Scene() *Scene {
	return v.scene
}

// Sync rebuilds the workspace from the sources of s, back to front so that
// the front source is drawn last. The rendering view shows the output frame
// of the session instead, since rendering subgraphs belong to the session.
func (v *View) Sync(s *Session) {
	v.Detach()
	ws := v.scene.WS()
	if v.Mode == ViewRendering {
		if v.output == nil {
			v.output = NewSurface("output")
			ws.Attach(v.output)
		}
		if fb := s.Frame(); fb != nil {
			v.output.SetImage(fb.Image())
			v.output.SetScale(mgl32.Vec3{fb.AspectRatio(), 1, 1})
		}
		return
	}
	srcs := s.Sources()
	for i := len(srcs) - 1; i >= 0; i-- {
		if g := srcs[i].Group(v.Mode); g != nil {
			ws.Attach(g)
		}
	}
}

// RestoreSettings reads zoom and pan from a session configuration group.
// The rendering configuration holds the output resolution and is ignored.
func (v *View) RestoreSettings(config *Group) {
	if config == nil || v.Mode == ViewRendering {
		return
	}
	if z := config.Scale.X(); z > 0 {
		v.Zoom = z
	}
	v.Pan = config.Translation.Vec2()
}

// SaveSettings stores zoom and pan into a session configuration group.
func (v *View) SaveSettings(config *Group) {
	if config == nil || v.Mode == ViewRendering {
		return
	}
	config.SetScale(mgl32.Vec3{v.Zoom, v.Zoom, 1})
	config.SetTranslation(mgl32.Vec3{v.Pan.X(), v.Pan.Y(), 0})
}

// Projection maps scene units to screen pixels.
func (v *View) Projection() mgl32.Mat4 {
	half := float32(v.Viewport.Height) / 2 * v.Zoom
	cx := float32(v.Viewport.X + v.Viewport.Width/2)
	cy := float32(v.Viewport.Y + v.Viewport.Height/2)
	return mgl32.Translate3D(cx, cy, 0).
		Mul4(mgl32.Scale3D(half, -half, 1)).
		Mul4(mgl32.Translate3D(-v.Pan.X(), -v.Pan.Y(), 0))
}

// ScreenToScene converts a screen pixel to scene coordinates.
func (v *View) ScreenToScene(x, y float64) mgl32.Vec3 {
	inv, ok := invertTransform(v.Projection())
	if !ok {
		return mgl32.Vec3{}
	}
	return transformPoint(inv, mgl32.Vec3{float32(x), float32(y), 0})
}

// SceneToScreen converts scene coordinates to a screen pixel.
func (v *View) SceneToScreen(p mgl32.Vec3) (x, y float64) {
	s := transformPoint(v.Projection(), p)
	return float64(s.X()), float64(s.Y())
}

// Pick returns the nodes under a screen pixel in draw order.
func (v *View) Pick(x, y float64) []Hit {
	return v.scene.Pick(v.ScreenToScene(x, y))
}

// PickArea returns the surfaces intersecting the screen rectangle spanned by
// two pixels.
func (v *View) PickArea(x0, y0, x1, y1 float64) []Hit {
	return v.scene.PickArea(v.ScreenToScene(x0, y0), v.ScreenToScene(x1, y1))
}

// SourceAt returns the topmost source of s under a screen pixel.
func (v *View) SourceAt(s *Session, x, y float64) (Source, Hit) {
	hits := v.Pick(x, y)
	for i := len(hits) - 1; i >= 0; i-- {
		if src := s.FindByNode(hits[i].Node); src != nil {
			return src, hits[i]
		}
	}
	return nil, Hit{}
}

// ZoomTo animates the zoom factor over duration seconds.
func (v *View) ZoomTo(zoom float32, duration float32, fn ease.TweenFunc) {
	if zoom <= 0 {
		return
	}
	a := v.animation()
	a.zoom = gween.New(v.Zoom, zoom, duration, fn)
	a.done[0] = false
}

// PanTo animates the pan center over duration seconds.
func (v *View) PanTo(p mgl32.Vec2, duration float32, fn ease.TweenFunc) {
	a := v.animation()
	a.panX = gween.New(v.Pan.X(), p.X(), duration, fn)
	a.panY = gween.New(v.Pan.Y(), p.Y(), duration, fn)
	a.done[1], a.done[2] = false, false
}

// Animating reports whether a zoom or pan animation is running.
func (v *View) Animating() bool {
	return v.anim != nil
}

func (v *View) animation() *viewAnim {
	if v.anim == nil {
		v.anim = &viewAnim{done: [3]bool{true, true, true}}
	}
	return v.anim
}

// Update advances animations and refreshes the scene transforms.
func (v *View) Update(dt float64) {
	if a := v.anim; a != nil {
		if a.zoom != nil && !a.done[0] {
			v.Zoom, a.done[0] = a.zoom.Update(float32(dt))
		}
		if a.panX != nil && !a.done[1] {
			var x float32
			x, a.done[1] = a.panX.Update(float32(dt))
			v.Pan[0] = x
		}
		if a.panY != nil && !a.done[2] {
			var y float32
			y, a.done[2] = a.panY.Update(float32(dt))
			v.Pan[1] = y
		}
		if a.done[0] && a.done[1] && a.done[2] {
			v.anim = nil
		}
	}
	v.scene.Update(dt)
}

// Draw draws the view scene into its viewport on target.
func (v *View) Draw(target *ebiten.Image) {
	v.drawer.Reset(v.Projection())
	v.scene.Accept(v.drawer)
	v.drawer.Submit(target)
}

// Detach releases the source subgraphs so that another view can show them.
func (v *View) Detach() {
	ws := v.scene.WS()
	ws.Clear()
	if v.output != nil {
		ws.Attach(v.output)
	}
}
