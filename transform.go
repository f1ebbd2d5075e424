package vmix

import "github.com/go-gl/mathgl/mgl32"

// computeLocalTransform computes the local matrix from the node's transform
// properties.
//
// Composition order:
//
//	Translate * RotateZ * RotateY * RotateX * Scale
func computeLocalTransform(b *Base) mgl32.Mat4 {
	t := b.Translation
	m := mgl32.Translate3D(t.X(), t.Y(), t.Z())
	if r := b.Rotation; r != (mgl32.Vec3{}) {
		if r.Z() != 0 {
			m = m.Mul4(mgl32.HomogRotate3DZ(r.Z()))
		}
		if r.Y() != 0 {
			m = m.Mul4(mgl32.HomogRotate3DY(r.Y()))
		}
		if r.X() != 0 {
			m = m.Mul4(mgl32.HomogRotate3DX(r.X()))
		}
	}
	s := b.Scale
	return m.Mul4(mgl32.Scale3D(s.X(), s.Y(), s.Z()))
}

// updateTransform recomputes the local and world matrices when this node
// or its parent changed since the previous Update. Parents always update
// before their children, so the parent's recomputed flag is current.
func (b *Base) updateTransform() {
	parentWorld := mgl32.Ident4()
	parentRecomputed := false
	if p := b.parentBase(); p != nil {
		parentWorld = p.world
		parentRecomputed = p.recomputed
	}
	b.recomputed = b.dirty || parentRecomputed
	if !b.recomputed {
		return
	}
	b.transform = computeLocalTransform(b)
	b.world = parentWorld.Mul4(b.transform)
	b.dirty = false
}

// invertTransform inverts m. The second result is false when m is singular
// (e.g. a zero scale), in which case nothing can be picked through it.
func invertTransform(m mgl32.Mat4) (mgl32.Mat4, bool) {
	det := m.Det()
	if det > -1e-12 && det < 1e-12 {
		return mgl32.Ident4(), false
	}
	return m.Inv(), true
}

// transformPoint applies m to the point p (w = 1).
func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// transformVector applies m to the direction v (w = 0); translation is ignored.
func transformVector(m mgl32.Mat4, v mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(v.Vec4(0)).Vec3()
}

// --- Transform property setters ---

// SetTranslation sets the node's translation and marks it dirty.
func (b *Base) SetTranslation(v mgl32.Vec3) {
	b.Translation = v
	b.dirty = true
}

// SetRotation sets the node's Euler rotation (radians) and marks it dirty.
func (b *Base) SetRotation(v mgl32.Vec3) {
	b.Rotation = v
	b.dirty = true
}

// SetScale sets the node's scale and marks it dirty.
func (b *Base) SetScale(v mgl32.Vec3) {
	b.Scale = v
	b.dirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next Update. Useful after bulk-setting fields directly.
func (b *Base) MarkDirty() {
	b.dirty = true
}

// Transform returns the local matrix computed by the most recent Update.
func (b *Base) Transform() mgl32.Mat4 {
	return b.transform
}

// WorldTransform returns the accumulated matrix computed by the most recent Update.
func (b *Base) WorldTransform() mgl32.Mat4 {
	return b.world
}

// --- Coordinate conversion ---

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (b *Base) WorldToLocal(p mgl32.Vec3) mgl32.Vec3 {
	inv, _ := invertTransform(b.world)
	return transformPoint(inv, p)
}

// LocalToWorld converts a local-space point to world-space.
func (b *Base) LocalToWorld(p mgl32.Vec3) mgl32.Vec3 {
	return transformPoint(b.world, p)
}
