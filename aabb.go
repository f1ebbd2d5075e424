package vmix

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box stored as {min, max}.
type AABB [2]mgl32.Vec3

// EmptyAABB returns a box that contains nothing; extending it with a point
// yields a degenerate box around that point.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{{inf, inf, inf}, {-inf, -inf, -inf}}
}

// NewAABB returns the smallest box containing every given point.
func NewAABB(points ...mgl32.Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box.Extend(p)
	}
	return box
}

// Empty reports whether the box contains no point.
func (box AABB) Empty() bool {
	return box[0].X() > box[1].X() || box[0].Y() > box[1].Y() || box[0].Z() > box[1].Z()
}

// Extend grows the box to include pos.
func (box *AABB) Extend(pos mgl32.Vec3) {
	for i, coord := range pos {
		if coord < box[0][i] {
			box[0][i] = coord
		}
		if coord > box[1][i] {
			box[1][i] = coord
		}
	}
}

// Center returns the middle of the box.
func (box AABB) Center() mgl32.Vec3 {
	return box[0].Add(box[1]).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (box AABB) Size() mgl32.Vec3 {
	return box[1].Sub(box[0])
}

// Contains2D reports whether p lies inside the box on the X and Y axes.
// Points on the edge are considered inside.
func (box AABB) Contains2D(p mgl32.Vec3) bool {
	return p.X() >= box[0].X() && p.X() <= box[1].X() &&
		p.Y() >= box[0].Y() && p.Y() <= box[1].Y()
}

// Intersects2D reports whether the boxes overlap on the X and Y axes.
// Boxes sharing only an edge are considered intersecting.
func (box AABB) Intersects2D(other AABB) bool {
	if box.Empty() || other.Empty() {
		return false
	}
	return box[0].X() <= other[1].X() && box[1].X() >= other[0].X() &&
		box[0].Y() <= other[1].Y() && box[1].Y() >= other[0].Y()
}

// Transformed returns the box enclosing all eight corners of box mapped by m.
func (box AABB) Transformed(m mgl32.Mat4) AABB {
	if box.Empty() {
		return box
	}
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{
			box[i&1].X(),
			box[(i>>1)&1].Y(),
			box[(i>>2)&1].Z(),
		}
		out.Extend(transformPoint(m, corner))
	}
	return out
}
