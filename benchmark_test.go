package vmix

import (
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// setupBenchScene creates a scene with n surfaces laid out on a grid.
func setupBenchScene(n int) *Scene {
	s := NewScene()
	for i := 0; i < n; i++ {
		surf := NewSurface("surf")
		surf.SetTranslation(mgl32.Vec3{float32(i%100) * 2.5, float32(i/100) * 2.5, 0})
		s.WS().Attach(surf)
	}
	s.Update(0)
	return s
}

func BenchmarkUpdate_10000Surfaces_Static(b *testing.B) {
	s := setupBenchScene(10000)

	b.ReportAllocs()
	for b.Loop() {
		s.Update(1.0 / 60)
	}
}

func BenchmarkUpdate_10000Surfaces_Moving(b *testing.B) {
	s := setupBenchScene(10000)
	children := s.WS().Children()

	b.ReportAllocs()
	for b.Loop() {
		for _, c := range children {
			BaseOf(c).Rotation[2] += 0.01
			BaseOf(c).MarkDirty()
		}
		s.Update(1.0 / 60)
	}
}

func BenchmarkPick_10000Surfaces(b *testing.B) {
	s := setupBenchScene(10000)
	v := NewPickingVisitor(mgl32.Vec3{50, 50, 0})

	b.ReportAllocs()
	for b.Loop() {
		v.Reset()
		s.Accept(v)
	}
}

func BenchmarkDrawVisitor_1000Surfaces(b *testing.B) {
	s := setupBenchScene(1000)
	v := NewDrawVisitor(PixelProjection(1280, 720))

	b.ReportAllocs()
	for b.Loop() {
		v.Reset(PixelProjection(1280, 720))
		s.Accept(v)
	}
}

func BenchmarkSessionUpdate_100Sources(b *testing.B) {
	s, _ := newTestSession()
	for i := 0; i < 100; i++ {
		s.AddSource(newTestSource(fmt.Sprintf("src%d", i)))
	}
	s.Update(0)

	b.ReportAllocs()
	for b.Loop() {
		s.Update(1.0 / 60)
	}
}

func BenchmarkFindByNode_100Sources(b *testing.B) {
	s, _ := newTestSession()
	for i := 0; i < 100; i++ {
		s.AddSource(newTestSource(fmt.Sprintf("src%d", i)))
	}
	// The first added source is at the back of the list.
	target := s.At(s.NumSources() - 1).Group(ViewMixing)

	b.ReportAllocs()
	for b.Loop() {
		_ = s.FindByNode(target)
	}
}
