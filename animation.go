package vmix

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 fields of a node simultaneously. Create one
// with TweenTranslation, TweenScale, TweenRotation or TweenColor and call
// Update(dt) each frame. The group writes values, marks the node dirty and
// stops as soon as the node is disposed.
type TweenGroup struct {
	tweens [4]*gween.Tween
	apply  [4]func(float32)
	count  int
	target *Base
	Done   bool
}

// Update advances all tweens by dt seconds.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.apply[i](val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone

	if g.target != nil {
		g.target.MarkDirty()
	}
}

// tweenVec3 animates the three components of *field from its current value.
func tweenVec3(b *Base, field *mgl32.Vec3, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 3, target: b}
	for i := 0; i < 3; i++ {
		g.tweens[i] = gween.New(field[i], to[i], duration, fn)
		g.apply[i] = func(v float32) { field[i] = v }
	}
	return g
}

// TweenTranslation animates the translation of n to the given position.
func TweenTranslation(n Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := n.base()
	return tweenVec3(b, &b.Translation, to, duration, fn)
}

// TweenScale animates the scale of n.
func TweenScale(n Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := n.base()
	return tweenVec3(b, &b.Scale, to, duration, fn)
}

// TweenRotation animates the Euler angles of n, in radians.
func TweenRotation(n Node, to mgl32.Vec3, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := n.base()
	return tweenVec3(b, &b.Rotation, to, duration, fn)
}

// TweenColor animates the four components of the color of a surface.
func TweenColor(s *Surface, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{count: 4, target: &s.Base}
	fields := [4]*float64{&s.Color.R, &s.Color.G, &s.Color.B, &s.Color.A}
	targets := [4]float64{to.R, to.G, to.B, to.A}
	for i, f := range fields {
		g.tweens[i] = gween.New(float32(*f), float32(targets[i]), duration, fn)
		g.apply[i] = func(v float32) { *f = float64(v) }
	}
	return g
}
