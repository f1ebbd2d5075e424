package vmix

import "github.com/go-gl/mathgl/mgl32"

// Handle hit radii, expressed as world-space offsets so that the radius stays
// constant on screen whatever the scale of the handled node.
var (
	handleHitOffset   = mgl32.Vec3{0.05, 0.05, 0}
	rotateIconOffset  = mgl32.Vec3{0.1, 0.1, 0}
	rotateHitMultiple = float32(1.5)
)

// Hit is one node reported by a PickingVisitor together with the query point
// expressed in the node's local space (zero for area queries).
type Hit struct {
	Node  Node
	Local mgl32.Vec2
}

// PickingVisitor hit-tests a query point, or a selection box given by two
// opposite corners, against the leaves of a scene. Each leaf is tested in its
// own canonical local space by applying the inverse of the accumulated
// modelview to the query.
//
// Hits are appended in traversal order, which is draw order: later hits are
// drawn on top. Use Topmost or scan Hits from the end for priority picking.
type PickingVisitor struct {
	NopVisitor
	points []mgl32.Vec3
	hits   []Hit
}

// NewPickingVisitor creates a visitor for a single point query.
func NewPickingVisitor(p mgl32.Vec3) *PickingVisitor {
	return &PickingVisitor{points: []mgl32.Vec3{p}}
}

// NewAreaPickingVisitor creates a visitor for a selection box query.
func NewAreaPickingVisitor(start, end mgl32.Vec3) *PickingVisitor {
	return &PickingVisitor{points: []mgl32.Vec3{start, end}}
}

// Hits returns the picked nodes in traversal order.
func (v *PickingVisitor) Hits() []Hit {
	return v.hits
}

// Topmost returns the last hit, i.e. the visually topmost node.
func (v *PickingVisitor) Topmost() (Hit, bool) {
	if len(v.hits) == 0 {
		return Hit{}, false
	}
	return v.hits[len(v.hits)-1], true
}

// Reset clears previous hits so the visitor can be reused with the same query.
func (v *PickingVisitor) Reset() {
	v.hits = v.hits[:0]
}

func (v *PickingVisitor) VisitGroup(n *Group, modelview mgl32.Mat4) {
	VisitChildren(v, n, modelview)
}

func (v *PickingVisitor) VisitSwitch(n *Switch, modelview mgl32.Mat4) {
	VisitActiveChild(v, n, modelview)
}

func (v *PickingVisitor) VisitScene(s *Scene) {
	s.root.Accept(v, mgl32.Ident4())
}

func (v *PickingVisitor) VisitSurface(n *Surface, modelview mgl32.Mat4) {
	if !n.Visible || len(v.points) == 0 {
		return
	}
	inv, ok := invertTransform(modelview)
	if !ok {
		return
	}

	// More than one point: test overlap of the selection box.
	if len(v.points) > 1 {
		area := NewAABB(v.points...).Transformed(inv)
		if area.Intersects2D(n.bbox) {
			v.hits = append(v.hits, Hit{Node: n})
		}
		return
	}

	p := transformPoint(inv, v.points[0])
	if n.bbox.Contains2D(p) {
		v.hits = append(v.hits, Hit{Node: n, Local: p.Vec2()})
	}
}

func (v *PickingVisitor) VisitDisk(n *Disk, modelview mgl32.Mat4) {
	if !n.Visible || len(v.points) != 1 {
		return
	}
	inv, ok := invertTransform(modelview)
	if !ok {
		return
	}
	p := transformPoint(inv, v.points[0]).Vec2()
	if p.Len() < 1 {
		v.hits = append(v.hits, Hit{Node: n, Local: p})
	}
}

func (v *PickingVisitor) VisitHandles(n *Handles, modelview mgl32.Mat4) {
	if !n.Visible || len(v.points) != 1 {
		return
	}
	inv, ok := invertTransform(modelview)
	if !ok {
		return
	}
	p := transformPoint(inv, v.points[0]).Vec2()
	// The handle is drawn at a constant screen size: measure the hit radius
	// in local units.
	scale := transformVector(inv, handleHitOffset).Vec2().Len()

	if handleContains(n.Type, p, scale, inv) {
		v.hits = append(v.hits, Hit{Node: n, Local: p})
	}
}

// handleContains applies the predicate of the handle type to the local point p.
func handleContains(typ HandleType, p mgl32.Vec2, scale float32, inv mgl32.Mat4) bool {
	near := func(x, y float32) bool {
		return mgl32.Vec2{x, y}.Sub(p).Len() < scale
	}
	switch typ {
	case HandleResize:
		return near(1, 1) || near(1, -1) || near(-1, 1) || near(-1, -1)
	case HandleResizeH:
		return near(1, 0) || near(-1, 0)
	case HandleResizeV:
		return near(0, 1) || near(0, -1)
	case HandleRotate:
		// The rotate icon sits diagonally outward from the top right corner.
		l := transformVector(inv, rotateIconOffset).Vec2().Len()
		return mgl32.Vec2{1 + l, 1 + l}.Sub(p).Len() < rotateHitMultiple*scale
	default:
		return false
	}
}

// Pick runs a point query against the scene and returns the hits in draw order.
func (s *Scene) Pick(p mgl32.Vec3) []Hit {
	v := NewPickingVisitor(p)
	s.Accept(v)
	return v.Hits()
}

// PickArea runs a selection box query against the scene.
func (s *Scene) PickArea(start, end mgl32.Vec3) []Hit {
	v := NewAreaPickingVisitor(start, end)
	s.Accept(v)
	return v.Hits()
}
