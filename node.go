package vmix

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// nodeIDCounter is atomic because sessions may be built on loader goroutines.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// Node is the interface implemented by every scene graph element. The set of
// variants is closed: Group, Switch, Primitive, Surface, Disk, Handles,
// Symbol and Frame. Behaviors such as drawing and picking are added through
// a Visitor rather than by extending the variants.
type Node interface {
	// Update recomputes the node transform (and the subtree for containers).
	Update(dt float64)
	// Accept composes this node's transform into modelview and dispatches to
	// the Visitor method matching the concrete variant.
	Accept(v Visitor, modelview mgl32.Mat4)
	// Dispose detaches the node and releases its subtree.
	Dispose()

	base() *Base
}

// container is implemented by the variants that own children.
type container interface {
	Node
	childNodes() []Node
	removeChild(child *Base)
}

// Base holds the state shared by every node variant. It is embedded by value
// in each variant; the fields are promoted.
type Base struct {
	// Identity
	ID   uint32
	Name string

	// Transform (local)
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3 // Euler angles in radians
	Scale       mgl32.Vec3

	Visible bool

	// Metadata
	UserData any

	parent container

	// Computed by Update; consumed as-is by visitors.
	transform  mgl32.Mat4
	world      mgl32.Mat4
	dirty      bool
	recomputed bool

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(b *Base, name string) {
	b.ID = nextNodeID()
	b.Name = name
	b.Scale = mgl32.Vec3{1, 1, 1}
	b.Visible = true
	b.transform = mgl32.Ident4()
	b.world = mgl32.Ident4()
	b.dirty = true
}

func (b *Base) base() *Base { return b }

// BaseOf returns the shared state of any node variant.
func BaseOf(n Node) *Base {
	if n == nil {
		return nil
	}
	return n.base()
}

// Parent returns the group or switch owning this node, or nil.
func (b *Base) Parent() Node {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

func (b *Base) parentBase() *Base {
	if b.parent == nil {
		return nil
	}
	return b.parent.base()
}

// Update recomputes the transform of a leaf node.
func (b *Base) Update(dt float64) {
	b.updateTransform()
}

// Dispose removes this node from its parent and marks it as disposed.
func (b *Base) Dispose() {
	if b.disposed {
		return
	}
	b.detachFromParent()
	b.dispose()
}

func (b *Base) dispose() {
	b.disposed = true
	b.ID = 0
	b.parent = nil
	b.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (b *Base) IsDisposed() bool {
	return b.disposed
}

func (b *Base) detachFromParent() {
	if b.parent != nil {
		b.parent.removeChild(b)
		b.parent = nil
	}
}

// --- Group ---

// Group is an ordered collection of children. Insertion order is the
// traversal and draw order: later children draw on top.
type Group struct {
	Base
	children []Node
}

// NewGroup creates an empty visible group.
func NewGroup(name string) *Group {
	g := &Group{}
	nodeDefaults(&g.Base, name)
	return g
}

// Attach appends child to this group.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this group (cycle).
func (g *Group) Attach(child Node) {
	g.AttachAt(child, len(g.children))
}

// AttachAt inserts child at the given index.
// Same reparenting and cycle-check behavior as Attach. When child already
// belongs to g, index is clamped to the list without it.
func (g *Group) AttachAt(child Node, index int) {
	cb := prepareAttach(g, child, "Attach")
	if index < 0 || index > len(g.children) {
		panic("vmix: child index out of range")
	}
	if cb.parent == container(g) {
		g.removeChild(cb)
		index = min(index, len(g.children))
	} else {
		cb.detachFromParent()
	}
	cb.parent = g
	g.children = append(g.children, nil)
	copy(g.children[index+1:], g.children[index:])
	g.children[index] = child
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(cb)
		debugCheckChildCount(&g.Base, len(g.children))
	}
}

// Detach removes child from this group without disposing it.
// Returns false when child is not a direct child of this group.
func (g *Group) Detach(child Node) bool {
	if child == nil {
		return false
	}
	cb := child.base()
	if cb.parent != container(g) {
		return false
	}
	g.removeChild(cb)
	cb.parent = nil
	markSubtreeDirty(child)
	return true
}

// Contains reports whether child is a direct child of this group.
func (g *Group) Contains(child Node) bool {
	return child != nil && child.base().parent == container(g)
}

// Clear detaches all children. Children are NOT disposed.
func (g *Group) Clear() {
	for _, c := range g.children {
		c.base().parent = nil
		markSubtreeDirty(c)
	}
	clear(g.children)
	g.children = g.children[:0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (g *Group) Children() []Node {
	return g.children
}

// NumChildren returns the number of children.
func (g *Group) NumChildren() int {
	return len(g.children)
}

// ChildAt returns the child at the given index.
func (g *Group) ChildAt(index int) Node {
	return g.children[index]
}

// Update recomputes this group's transform, then updates every child in order.
func (g *Group) Update(dt float64) {
	g.updateTransform()
	for _, c := range g.children {
		c.Update(dt)
	}
}

// Dispose detaches the group and recursively disposes all descendants.
func (g *Group) Dispose() {
	if g.disposed {
		return
	}
	g.detachFromParent()
	disposeChildren(g.children)
	g.children = nil
	g.dispose()
}

func (g *Group) childNodes() []Node { return g.children }

func (g *Group) removeChild(child *Base) {
	g.children = removeNode(g.children, child)
}

// --- Switch ---

// Switch holds several children of which exactly one is active. Only the
// active child is traversed. A switch with no children is visited as empty.
type Switch struct {
	Base
	children []Node
	active   int
}

// NewSwitch creates an empty visible switch.
func NewSwitch(name string) *Switch {
	s := &Switch{}
	nodeDefaults(&s.Base, name)
	return s
}

// Attach appends child and returns its index. The first attached child
// becomes the active one.
func (s *Switch) Attach(child Node) int {
	cb := prepareAttach(s, child, "Attach")
	cb.detachFromParent()
	cb.parent = s
	s.children = append(s.children, child)
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(cb)
		debugCheckChildCount(&s.Base, len(s.children))
	}
	return len(s.children) - 1
}

// Detach removes child from this switch without disposing it. The active
// index keeps pointing at the same child when possible.
func (s *Switch) Detach(child Node) bool {
	if child == nil {
		return false
	}
	cb := child.base()
	if cb.parent != container(s) {
		return false
	}
	s.removeChild(cb)
	cb.parent = nil
	markSubtreeDirty(child)
	return true
}

// SetActive selects the active child. Out of range indices are clamped.
func (s *Switch) SetActive(index int) {
	s.active = index
	s.clampActive()
}

// Active returns the index of the active child (0 when empty).
func (s *Switch) Active() int {
	return s.active
}

// ActiveChild returns the active child, or nil if the switch is empty.
func (s *Switch) ActiveChild() Node {
	if len(s.children) == 0 {
		return nil
	}
	return s.children[s.active]
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (s *Switch) Children() []Node {
	return s.children
}

// NumChildren returns the number of children.
func (s *Switch) NumChildren() int {
	return len(s.children)
}

// Update recomputes this switch's transform and every child, active or not,
// so that switching does not expose stale transforms.
func (s *Switch) Update(dt float64) {
	s.updateTransform()
	for _, c := range s.children {
		c.Update(dt)
	}
}

// Dispose detaches the switch and recursively disposes all descendants.
func (s *Switch) Dispose() {
	if s.disposed {
		return
	}
	s.detachFromParent()
	disposeChildren(s.children)
	s.children = nil
	s.active = 0
	s.dispose()
}

func (s *Switch) childNodes() []Node { return s.children }

func (s *Switch) removeChild(child *Base) {
	idx := indexOfNode(s.children, child)
	if idx < 0 {
		return
	}
	s.children = removeNode(s.children, child)
	if idx < s.active {
		s.active--
	}
	s.clampActive()
}

func (s *Switch) clampActive() {
	if s.active >= len(s.children) {
		s.active = len(s.children) - 1
	}
	if s.active < 0 {
		s.active = 0
	}
}

// --- Helpers ---

// prepareAttach validates an attach operation and returns the child's base.
func prepareAttach(parent container, child Node, op string) *Base {
	if child == nil {
		panic("vmix: cannot attach nil child")
	}
	cb := child.base()
	if globalDebug {
		debugCheckDisposed(parent.base(), op+" (parent)")
		debugCheckDisposed(cb, op+" (child)")
	}
	if isAncestor(cb, parent.base()) {
		panic("vmix: attaching child would create a cycle")
	}
	return cb
}

// isAncestor reports whether candidate is n or one of its ancestors.
func isAncestor(candidate, n *Base) bool {
	for p := n; p != nil; p = p.parentBase() {
		if p == candidate {
			return true
		}
	}
	return false
}

func indexOfNode(nodes []Node, b *Base) int {
	for i, c := range nodes {
		if c.base() == b {
			return i
		}
	}
	return -1
}

// removeNode removes b from nodes keeping order.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func removeNode(nodes []Node, b *Base) []Node {
	i := indexOfNode(nodes, b)
	if i < 0 {
		return nodes
	}
	copy(nodes[i:], nodes[i+1:])
	nodes[len(nodes)-1] = nil
	return nodes[:len(nodes)-1]
}

func disposeChildren(children []Node) {
	for _, c := range children {
		// Clear the link first so the child does not edit the slice we iterate.
		c.base().parent = nil
		c.Dispose()
	}
}

// markSubtreeDirty flags n and all its descendants for transform recomputation.
func markSubtreeDirty(n Node) {
	n.base().dirty = true
	if c, ok := n.(container); ok {
		for _, child := range c.childNodes() {
			markSubtreeDirty(child)
		}
	}
}
