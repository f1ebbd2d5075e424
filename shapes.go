package vmix

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// unitSquare is the local bounding box shared by surfaces: [-1,1]² at z = 0.
var unitSquare = AABB{{-1, -1, 0}, {1, 1, 0}}

// Primitive is a leaf holding an arbitrary triangle mesh in local space.
// Plain primitives are not interactive: picking never reports them.
type Primitive struct {
	Base
	Points    []mgl32.Vec3
	Indices   []uint16
	Color     Color
	BlendMode BlendMode
}

// NewPrimitive creates a mesh leaf. Indices address Points by triangle.
func NewPrimitive(name string, points []mgl32.Vec3, indices []uint16) *Primitive {
	p := &Primitive{Points: points, Indices: indices, Color: ColorWhite}
	nodeDefaults(&p.Base, name)
	return p
}

// BBox returns the local bounding box of the mesh points.
func (p *Primitive) BBox() AABB {
	box := EmptyAABB()
	for _, pt := range p.Points {
		box.Extend(pt)
	}
	return box
}

// Surface is a rectangular content leaf covering the local unit square.
// When Image is nil the surface is drawn as a solid Color.
type Surface struct {
	Base
	Image     *ebiten.Image
	Color     Color
	BlendMode BlendMode
	bbox      AABB
}

// NewSurface creates a surface over the unit square [-1,1]².
func NewSurface(name string) *Surface {
	s := &Surface{Color: ColorWhite, bbox: unitSquare}
	nodeDefaults(&s.Base, name)
	return s
}

// BBox returns the local bounding box used for picking.
func (s *Surface) BBox() AABB {
	return s.bbox
}

// SetImage sets the texture displayed on the surface. nil reverts to a solid color.
func (s *Surface) SetImage(img *ebiten.Image) {
	s.Image = img
}

// Disk is a filled unit disk centered on the local origin.
type Disk struct {
	Base
	Color Color
}

// NewDisk creates a unit disk.
func NewDisk(name string) *Disk {
	d := &Disk{Color: ColorWhite}
	nodeDefaults(&d.Base, name)
	return d
}

// HandleType selects the manipulation handle drawn and picked by Handles.
type HandleType uint8

const (
	HandleResize  HandleType = iota // four corners (±1, ±1)
	HandleResizeH                   // left and right edges (±1, 0)
	HandleResizeV                   // top and bottom edges (0, ±1)
	HandleRotate                    // icon diagonally outside the top right corner
)

// String returns the handle type name.
func (t HandleType) String() string {
	switch t {
	case HandleResize:
		return "resize"
	case HandleResizeH:
		return "resize_h"
	case HandleResizeV:
		return "resize_v"
	case HandleRotate:
		return "rotate"
	default:
		return "invalid"
	}
}

// Handles draws the manipulation handles of a unit square. Their hit radius is
// constant on screen regardless of the scale of the handled node.
type Handles struct {
	Base
	Type  HandleType
	Color Color
}

// NewHandles creates handles of the given type.
func NewHandles(name string, typ HandleType) *Handles {
	h := &Handles{Type: typ, Color: ColorHighlight}
	nodeDefaults(&h.Base, name)
	return h
}

// SymbolType selects the icon drawn by a Symbol.
type SymbolType uint8

const (
	SymbolPoint SymbolType = iota
	SymbolImage
	SymbolVideo
	SymbolSession
	SymbolClone
	SymbolRender
	SymbolDots
	SymbolCircles
	SymbolEmpty
)

// Symbol is a small icon identifying a source kind in the mixing view.
type Symbol struct {
	Base
	Type  SymbolType
	Color Color
}

// NewSymbol creates a symbol of the given type at pos.
func NewSymbol(name string, typ SymbolType, pos mgl32.Vec3) *Symbol {
	s := &Symbol{Type: typ, Color: ColorWhite}
	nodeDefaults(&s.Base, name)
	s.Translation = pos
	return s
}

// CornerType selects rounded or sharp frame corners.
type CornerType uint8

const (
	CornerRound CornerType = iota
	CornerSharp
)

// BorderType selects the frame line width.
type BorderType uint8

const (
	BorderThin BorderType = iota
	BorderLarge
)

// ShadowType selects the frame shadow decoration.
type ShadowType uint8

const (
	ShadowNone ShadowType = iota
	ShadowGlow
	ShadowDrop
	ShadowPerspective
)

// Frame outlines the unit square. It is a decoration and is never picked.
type Frame struct {
	Base
	Corner CornerType
	Border BorderType
	Shadow ShadowType
	Color  Color
}

// NewFrame creates a frame decoration.
func NewFrame(name string, corner CornerType, border BorderType, shadow ShadowType) *Frame {
	f := &Frame{Corner: corner, Border: border, Shadow: shadow, Color: ColorWhite}
	nodeDefaults(&f.Base, name)
	return f
}

// lineWidth returns the border thickness in local units.
func (f *Frame) lineWidth() float32 {
	if f.Border == BorderLarge {
		return 0.04
	}
	return 0.015
}
