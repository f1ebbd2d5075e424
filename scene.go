package vmix

// Scene is the entry point for drawing and picking traversals. Its root
// holds three groups drawn in order: background, workspace and foreground.
// Sources attach their subgraphs to the workspace.
type Scene struct {
	root *Group
	bg   *Group
	ws   *Group
	fg   *Group
}

// NewScene creates a scene with empty background, workspace and foreground groups.
func NewScene() *Scene {
	s := &Scene{
		root: NewGroup("root"),
		bg:   NewGroup("bg"),
		ws:   NewGroup("ws"),
		fg:   NewGroup("fg"),
	}
	s.root.Attach(s.bg)
	s.root.Attach(s.ws)
	s.root.Attach(s.fg)
	return s
}

// Root returns the scene's root group.
func (s *Scene) Root() *Group {
	return s.root
}

// WS returns the workspace group where sources are attached.
func (s *Scene) WS() *Group {
	return s.ws
}

// BG returns the background group, drawn below the workspace.
func (s *Scene) BG() *Group {
	return s.bg
}

// FG returns the foreground group, drawn above the workspace.
func (s *Scene) FG() *Group {
	return s.fg
}

// Update refreshes every transform of the tree. Visitors consume the
// transforms computed here and never recompute them.
func (s *Scene) Update(dt float64) {
	s.root.Update(dt)
}

// Accept hands the scene to v, which forwards to the root node.
func (s *Scene) Accept(v Visitor) {
	v.VisitScene(s)
}

// Contains reports whether n is part of this scene.
func (s *Scene) Contains(n Node) bool {
	v := NewSearchVisitor(n)
	s.Accept(v)
	return v.Found()
}

// Clear disposes every node of the workspace, background and foreground
// groups, keeping the three groups themselves.
func (s *Scene) Clear() {
	for _, g := range []*Group{s.bg, s.ws, s.fg} {
		disposeChildren(g.children)
		clear(g.children)
		g.children = g.children[:0]
	}
}
