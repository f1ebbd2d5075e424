package vmix

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandImage     CommandType = iota // DrawImage of a surface texture
	CommandTriangles                    // DrawTriangles of solid geometry
)

// Pixel sizes of decorations that keep a constant size on screen.
const (
	handleSizePx = 6.0
	symbolSizePx = 8.0
	diskSegments = 48
)

// unitCircle holds diskSegments points on the unit circle.
var unitCircle = func() []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, diskSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / diskSegments
		pts[i] = mgl32.Vec3{float32(math.Cos(a)), float32(math.Sin(a)), 0}
	}
	return pts
}()

// RenderCommand is a single draw instruction emitted during scene traversal.
type RenderCommand struct {
	Type      CommandType
	Node      Node
	Color     Color
	BlendMode BlendMode

	// CommandImage: the image and the matrix mapping its pixels to the target.
	Image *ebiten.Image
	GeoM  ebiten.GeoM

	// CommandTriangles: target-space vertices.
	Vertices []ebiten.Vertex
	Indices  []uint16
}

// DrawVisitor walks a scene and records render commands in draw order.
// The projection maps scene units to target pixels.
type DrawVisitor struct {
	NopVisitor
	projection mgl32.Mat4
	commands   []RenderCommand
}

// NewDrawVisitor creates a visitor drawing through the given projection.
func NewDrawVisitor(projection mgl32.Mat4) *DrawVisitor {
	return &DrawVisitor{projection: projection}
}

// Reset clears recorded commands and sets a new projection.
func (v *DrawVisitor) Reset(projection mgl32.Mat4) {
	v.projection = projection
	clear(v.commands)
	v.commands = v.commands[:0]
}

// Commands returns the recorded commands. The slice is reused by Reset.
func (v *DrawVisitor) Commands() []RenderCommand {
	return v.commands
}

func (v *DrawVisitor) VisitScene(s *Scene) {
	s.root.Accept(v, v.projection)
}

func (v *DrawVisitor) VisitGroup(n *Group, modelview mgl32.Mat4) {
	VisitChildren(v, n, modelview)
}

func (v *DrawVisitor) VisitSwitch(n *Switch, modelview mgl32.Mat4) {
	VisitActiveChild(v, n, modelview)
}

func (v *DrawVisitor) VisitPrimitive(n *Primitive, modelview mgl32.Mat4) {
	if !n.Visible || len(n.Points) == 0 || len(n.Indices) == 0 {
		return
	}
	pts := make([]mgl32.Vec3, len(n.Points))
	for i, p := range n.Points {
		pts[i] = transformPoint(modelview, p)
	}
	v.triangles(n, pts, n.Indices, n.Color, n.BlendMode)
}

func (v *DrawVisitor) VisitSurface(n *Surface, modelview mgl32.Mat4) {
	if !n.Visible {
		return
	}
	img := n.Image
	if img == nil {
		img = WhitePixel
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w == 0 || h == 0 {
		return
	}
	// Image pixels to the local unit square, top row at y = +1.
	var geom ebiten.GeoM
	geom.Scale(2/w, -2/h)
	geom.Translate(-1, 1)
	geom.Concat(geoMFromMat4(modelview))

	v.commands = append(v.commands, RenderCommand{
		Type:      CommandImage,
		Node:      n,
		Color:     n.Color,
		BlendMode: n.BlendMode,
		Image:     img,
		GeoM:      geom,
	})
}

func (v *DrawVisitor) VisitDisk(n *Disk, modelview mgl32.Mat4) {
	if !n.Visible {
		return
	}
	pts := make([]mgl32.Vec3, 0, diskSegments+1)
	pts = append(pts, transformPoint(modelview, mgl32.Vec3{}))
	for _, p := range unitCircle {
		pts = append(pts, transformPoint(modelview, p))
	}
	inds := make([]uint16, 0, diskSegments*3)
	for i := 1; i <= diskSegments; i++ {
		next := i%diskSegments + 1
		inds = append(inds, 0, uint16(i), uint16(next))
	}
	v.triangles(n, pts, inds, n.Color, BlendNormal)
}

func (v *DrawVisitor) VisitHandles(n *Handles, modelview mgl32.Mat4) {
	if !n.Visible {
		return
	}
	var anchors []mgl32.Vec3
	switch n.Type {
	case HandleResize:
		anchors = []mgl32.Vec3{{1, 1, 0}, {1, -1, 0}, {-1, 1, 0}, {-1, -1, 0}}
	case HandleResizeH:
		anchors = []mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}}
	case HandleResizeV:
		anchors = []mgl32.Vec3{{0, 1, 0}, {0, -1, 0}}
	case HandleRotate:
		inv, ok := invertTransform(modelview)
		if !ok {
			return
		}
		l := transformVector(inv, v.projection.Mul4x1(rotateIconOffset.Vec4(0)).Vec3()).Vec2().Len()
		anchors = []mgl32.Vec3{{1 + l, 1 + l, 0}}
	}
	var pts []mgl32.Vec3
	var inds []uint16
	for _, a := range anchors {
		c := transformPoint(modelview, a)
		pts, inds = appendSquare(pts, inds, c, handleSizePx)
	}
	v.triangles(n, pts, inds, n.Color, BlendNormal)
}

func (v *DrawVisitor) VisitSymbol(n *Symbol, modelview mgl32.Mat4) {
	if !n.Visible || n.Type == SymbolEmpty {
		return
	}
	c := transformPoint(modelview, mgl32.Vec3{})
	pts, inds := appendSquare(nil, nil, c, symbolSizePx)
	v.triangles(n, pts, inds, n.Color, BlendNormal)
}

func (v *DrawVisitor) VisitFrame(n *Frame, modelview mgl32.Mat4) {
	if !n.Visible {
		return
	}
	w := n.lineWidth()
	// Four strips around the unit square, in local space.
	strips := [4][2]mgl32.Vec2{
		{{-1 - w, 1 - w}, {1 + w, 1 + w}},   // top
		{{-1 - w, -1 - w}, {1 + w, -1 + w}}, // bottom
		{{-1 - w, -1 + w}, {-1 + w, 1 - w}}, // left
		{{1 - w, -1 + w}, {1 + w, 1 - w}},   // right
	}
	pts := make([]mgl32.Vec3, 0, 16)
	inds := make([]uint16, 0, 24)
	for _, s := range strips {
		base := uint16(len(pts))
		pts = append(pts,
			transformPoint(modelview, mgl32.Vec3{s[0].X(), s[0].Y(), 0}),
			transformPoint(modelview, mgl32.Vec3{s[1].X(), s[0].Y(), 0}),
			transformPoint(modelview, mgl32.Vec3{s[1].X(), s[1].Y(), 0}),
			transformPoint(modelview, mgl32.Vec3{s[0].X(), s[1].Y(), 0}),
		)
		inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	}
	if n.Shadow != ShadowNone {
		shadow := n.Color
		shadow.R, shadow.G, shadow.B, shadow.A = 0, 0, 0, 0.3*n.Color.A
		offset := mgl32.Vec3{0.03, -0.03, 0}
		sp := []mgl32.Vec3{
			transformPoint(modelview, mgl32.Vec3{-1, -1, 0}.Add(offset)),
			transformPoint(modelview, mgl32.Vec3{1, -1, 0}.Add(offset)),
			transformPoint(modelview, mgl32.Vec3{1, 1, 0}.Add(offset)),
			transformPoint(modelview, mgl32.Vec3{-1, 1, 0}.Add(offset)),
		}
		v.triangles(n, sp, []uint16{0, 1, 2, 0, 2, 3}, shadow, BlendNormal)
	}
	v.triangles(n, pts, inds, n.Color, BlendNormal)
}

// triangles records a solid-color triangle command with target-space points.
func (v *DrawVisitor) triangles(n Node, pts []mgl32.Vec3, inds []uint16, c Color, blend BlendMode) {
	verts := make([]ebiten.Vertex, len(pts))
	r, g, b, a := float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A)
	for i, p := range pts {
		verts[i] = ebiten.Vertex{
			DstX: p.X(), DstY: p.Y(),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		}
	}
	v.commands = append(v.commands, RenderCommand{
		Type:      CommandTriangles,
		Node:      n,
		Color:     c,
		BlendMode: blend,
		Vertices:  verts,
		Indices:   inds,
	})
}

// appendSquare appends a target-space square of side px centered on c.
func appendSquare(pts []mgl32.Vec3, inds []uint16, c mgl32.Vec3, px float32) ([]mgl32.Vec3, []uint16) {
	h := px / 2
	base := uint16(len(pts))
	pts = append(pts,
		mgl32.Vec3{c.X() - h, c.Y() - h, 0},
		mgl32.Vec3{c.X() + h, c.Y() - h, 0},
		mgl32.Vec3{c.X() + h, c.Y() + h, 0},
		mgl32.Vec3{c.X() - h, c.Y() + h, 0},
	)
	inds = append(inds, base, base+1, base+2, base, base+2, base+3)
	return pts, inds
}

// Submit draws the recorded commands onto target in order.
func (v *DrawVisitor) Submit(target *ebiten.Image) {
	var op ebiten.DrawImageOptions
	var triOp ebiten.DrawTrianglesOptions
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	for i := range v.commands {
		cmd := &v.commands[i]
		switch cmd.Type {
		case CommandImage:
			op.GeoM = cmd.GeoM
			op.ColorScale.Reset()
			a := float32(cmd.Color.A)
			op.ColorScale.Scale(float32(cmd.Color.R)*a, float32(cmd.Color.G)*a, float32(cmd.Color.B)*a, a)
			op.Blend = cmd.BlendMode.EbitenBlend()
			target.DrawImage(cmd.Image, &op)
		case CommandTriangles:
			if len(cmd.Vertices) == 0 || len(cmd.Indices) == 0 {
				continue
			}
			triOp.Blend = cmd.BlendMode.EbitenBlend()
			target.DrawTriangles(cmd.Vertices, cmd.Indices, WhitePixel, &triOp)
		}
	}
}

// geoMFromMat4 keeps the 2D affine part of m (X/Y rows, ignoring depth).
func geoMFromMat4(m mgl32.Mat4) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, float64(m.At(0, 0)))
	g.SetElement(0, 1, float64(m.At(0, 1)))
	g.SetElement(0, 2, float64(m.At(0, 3)))
	g.SetElement(1, 0, float64(m.At(1, 0)))
	g.SetElement(1, 1, float64(m.At(1, 1)))
	g.SetElement(1, 2, float64(m.At(1, 3)))
	return g
}

// PixelProjection maps scene units to a w×h pixel target: x in
// [-aspect, aspect] and y in [-1, 1] (y up) cover the target.
func PixelProjection(w, h int) mgl32.Mat4 {
	half := float32(h) / 2
	m := mgl32.Translate3D(float32(w)/2, half, 0)
	return m.Mul4(mgl32.Scale3D(half, -half, 1))
}
