package vmix

import "github.com/go-gl/mathgl/mgl32"

// Visitor adds behavior to the scene graph without modifying node variants.
// Each variant's Accept first calls VisitNode to compose its own transform
// into the modelview it received, then calls the method matching its
// concrete type with the composed value.
//
// The modelview is passed by value down the recursion: sibling transforms
// never compose with each other and no visitor state needs to be restored.
type Visitor interface {
	VisitNode(n *Base, modelview mgl32.Mat4) mgl32.Mat4
	VisitGroup(n *Group, modelview mgl32.Mat4)
	VisitSwitch(n *Switch, modelview mgl32.Mat4)
	VisitPrimitive(n *Primitive, modelview mgl32.Mat4)
	VisitSurface(n *Surface, modelview mgl32.Mat4)
	VisitDisk(n *Disk, modelview mgl32.Mat4)
	VisitHandles(n *Handles, modelview mgl32.Mat4)
	VisitSymbol(n *Symbol, modelview mgl32.Mat4)
	VisitFrame(n *Frame, modelview mgl32.Mat4)
	VisitScene(s *Scene)
}

// Accept dispatches to v.VisitGroup.
func (g *Group) Accept(v Visitor, modelview mgl32.Mat4) {
	v.VisitGroup(g, v.VisitNode(&g.Base, modelview))
}

// Accept dispatches to v.VisitSwitch.
func (s *Switch) Accept(v Visitor, modelview mgl32.Mat4) {
	v.VisitSwitch(s, v.VisitNode(&s.Base, modelview))
}

// Accept dispatches to v.VisitPrimitive.
func (p *Primitive) Accept(v Visitor, modelview mgl32.Mat4) {
	v.VisitPrimitive(p, v.VisitNode(&p.Base, modelview))
}

// Accept dispatches to v.VisitSurface.
func (s *Surface) Accept(v Visitor, modelview mgl32.Mat4) {
	v.VisitSurface(s, v.VisitNode(&s.Base, modelview))
}

// Accept dispatches to v.VisitDisk.
func (d *Disk) Accept(v Visitor, modelview mgl32.Mat4) {
	v.VisitDisk(d, v.VisitNode(&d.Base, modelview))
}

// Accept dispatches to v.VisitHandles.
func (h *Handles) Accept(v Visitor, modelview mgl32.Mat4) {
	v.VisitHandles(h, v.VisitNode(&h.Base, modelview))
}

// Accept dispatches to v.VisitSymbol.
func (s *Symbol) Accept(v Visitor, modelview mgl32.Mat4) {
	v.VisitSymbol(s, v.VisitNode(&s.Base, modelview))
}

// Accept dispatches to v.VisitFrame.
func (f *Frame) Accept(v Visitor, modelview mgl32.Mat4) {
	v.VisitFrame(f, v.VisitNode(&f.Base, modelview))
}

// NopVisitor is meant to be embedded by concrete visitors. VisitNode composes
// the transform computed by the last Update; every other method does nothing.
// Embedders override VisitGroup and VisitSwitch with VisitChildren and
// VisitActiveChild to descend into the graph.
type NopVisitor struct{}

// VisitNode returns modelview multiplied by the node transform.
func (NopVisitor) VisitNode(n *Base, modelview mgl32.Mat4) mgl32.Mat4 {
	return modelview.Mul4(n.transform)
}

func (NopVisitor) VisitGroup(*Group, mgl32.Mat4)         {}
func (NopVisitor) VisitSwitch(*Switch, mgl32.Mat4)       {}
func (NopVisitor) VisitPrimitive(*Primitive, mgl32.Mat4) {}
func (NopVisitor) VisitSurface(*Surface, mgl32.Mat4)     {}
func (NopVisitor) VisitDisk(*Disk, mgl32.Mat4)           {}
func (NopVisitor) VisitHandles(*Handles, mgl32.Mat4)     {}
func (NopVisitor) VisitSymbol(*Symbol, mgl32.Mat4)       {}
func (NopVisitor) VisitFrame(*Frame, mgl32.Mat4)         {}
func (NopVisitor) VisitScene(*Scene)                     {}

// VisitChildren visits the visible children of a visible group in order.
func VisitChildren(v Visitor, g *Group, modelview mgl32.Mat4) {
	if !g.Visible {
		return
	}
	for _, c := range g.children {
		if c.base().Visible {
			c.Accept(v, modelview)
		}
	}
}

// VisitActiveChild visits the active child of a visible, non-empty switch.
func VisitActiveChild(v Visitor, s *Switch, modelview mgl32.Mat4) {
	if !s.Visible || len(s.children) == 0 {
		return
	}
	if c := s.children[s.active]; c.base().Visible {
		c.Accept(v, modelview)
	}
}

// SearchVisitor looks for a node in the visited subgraph regardless of
// visibility or switch state.
type SearchVisitor struct {
	NopVisitor
	target *Base
	found  bool
}

// NewSearchVisitor creates a visitor looking for target.
func NewSearchVisitor(target Node) *SearchVisitor {
	return &SearchVisitor{target: BaseOf(target)}
}

// Found reports whether the target was met during the traversal.
func (v *SearchVisitor) Found() bool {
	return v.found
}

func (v *SearchVisitor) VisitNode(n *Base, modelview mgl32.Mat4) mgl32.Mat4 {
	if n == v.target {
		v.found = true
	}
	return modelview
}

func (v *SearchVisitor) VisitGroup(n *Group, modelview mgl32.Mat4) {
	for _, c := range n.children {
		if v.found {
			return
		}
		c.Accept(v, modelview)
	}
}

func (v *SearchVisitor) VisitSwitch(n *Switch, modelview mgl32.Mat4) {
	for _, c := range n.children {
		if v.found {
			return
		}
		c.Accept(v, modelview)
	}
}

func (v *SearchVisitor) VisitScene(s *Scene) {
	s.root.Accept(v, mgl32.Ident4())
}
