package vmix

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-5

func assertNear(t *testing.T, name string, got, want float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec3(t *testing.T, name string, got, want mgl32.Vec3) {
	t.Helper()
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > epsilon {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
	}
}

func assertMatrix(t *testing.T, name string, got, want mgl32.Mat4) {
	t.Helper()
	for i := range got {
		if math.Abs(float64(got[i]-want[i])) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
			return
		}
	}
}

// --- computeLocalTransform ---

func TestLocalTransformIdentity(t *testing.T) {
	g := NewGroup("test")
	assertMatrix(t, "identity", computeLocalTransform(&g.Base), mgl32.Ident4())
}

func TestLocalTransformTranslation(t *testing.T) {
	g := NewGroup("test")
	g.Translation = mgl32.Vec3{10, 20, 1}
	assertMatrix(t, "translation", computeLocalTransform(&g.Base), mgl32.Translate3D(10, 20, 1))
}

func TestLocalTransformScale(t *testing.T) {
	g := NewGroup("test")
	g.Scale = mgl32.Vec3{2, 3, 1}
	assertMatrix(t, "scale", computeLocalTransform(&g.Base), mgl32.Scale3D(2, 3, 1))
}

func TestLocalTransformRotationZ(t *testing.T) {
	g := NewGroup("test")
	g.Rotation = mgl32.Vec3{0, 0, math.Pi / 2}
	m := computeLocalTransform(&g.Base)
	assertVec3(t, "x axis", transformVector(m, mgl32.Vec3{1, 0, 0}), mgl32.Vec3{0, 1, 0})
}

func TestLocalTransformCombinedOrder(t *testing.T) {
	g := NewGroup("test")
	g.Translation = mgl32.Vec3{5, 0, 0}
	g.Rotation = mgl32.Vec3{0, 0, math.Pi / 2}
	g.Scale = mgl32.Vec3{2, 2, 1}
	m := computeLocalTransform(&g.Base)
	// Scale first, then rotate, then translate: (1,0) -> (2,0) -> (0,2) -> (5,2).
	assertVec3(t, "point", transformPoint(m, mgl32.Vec3{1, 0, 0}), mgl32.Vec3{5, 2, 0})
}

// --- updateTransform ---

func TestWorldTransformComposesParent(t *testing.T) {
	root := NewGroup("root")
	child := NewGroup("child")
	root.Attach(child)
	root.SetTranslation(mgl32.Vec3{10, 0, 0})
	root.SetScale(mgl32.Vec3{2, 2, 1})
	child.SetTranslation(mgl32.Vec3{1, 1, 0})
	root.Update(0)

	assertVec3(t, "origin", child.LocalToWorld(mgl32.Vec3{}), mgl32.Vec3{12, 2, 0})
	assertMatrix(t, "local", child.Transform(), mgl32.Translate3D(1, 1, 0))
}

func TestUpdateSkipsCleanSubtree(t *testing.T) {
	root := NewGroup("root")
	child := NewGroup("child")
	root.Attach(child)
	root.Update(0)

	child.Translation = mgl32.Vec3{3, 0, 0} // no MarkDirty
	root.Update(0)
	assertMatrix(t, "stale", child.Transform(), mgl32.Ident4())

	child.MarkDirty()
	root.Update(0)
	assertMatrix(t, "fresh", child.Transform(), mgl32.Translate3D(3, 0, 0))
}

func TestParentChangePropagates(t *testing.T) {
	root := NewGroup("root")
	child := NewGroup("child")
	leaf := NewSurface("leaf")
	root.Attach(child)
	child.Attach(leaf)
	root.Update(0)

	root.SetTranslation(mgl32.Vec3{0, 4, 0})
	root.Update(0)
	assertVec3(t, "leaf world", leaf.LocalToWorld(mgl32.Vec3{}), mgl32.Vec3{0, 4, 0})
}

func TestWorldToLocalRoundTrip(t *testing.T) {
	root := NewGroup("root")
	leaf := NewSurface("leaf")
	root.Attach(leaf)
	leaf.SetTranslation(mgl32.Vec3{1, -2, 0})
	leaf.SetRotation(mgl32.Vec3{0, 0, 0.7})
	leaf.SetScale(mgl32.Vec3{0.5, 3, 1})
	root.Update(0)

	p := mgl32.Vec3{0.3, 0.9, 0}
	assertVec3(t, "round trip", leaf.WorldToLocal(leaf.LocalToWorld(p)), p)
}

func TestInvertTransformSingular(t *testing.T) {
	if _, ok := invertTransform(mgl32.Scale3D(0, 1, 1)); ok {
		t.Error("zero scale should not be invertible")
	}
	inv, ok := invertTransform(mgl32.Translate3D(1, 2, 3))
	if !ok {
		t.Fatal("translation should be invertible")
	}
	assertMatrix(t, "inverse", inv, mgl32.Translate3D(-1, -2, -3))
}
