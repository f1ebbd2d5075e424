package vmix

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer composites the rendering view of a session into a frame buffer.
// RenderView is the ebiten implementation; sessions accept any Renderer.
type Renderer interface {
	// Scene returns the scene whose workspace receives the sources.
	Scene() *Scene
	Update(dt float64)
	Draw()
	Frame() *FrameBuffer
	Fading() float64
	SetFading(f float64)
	SetResolution(res mgl32.Vec3)
}

// RenderView draws its scene into an offscreen FrameBuffer, then darkens the
// result by the fading amount (0 = untouched, 1 = black).
type RenderView struct {
	// ClearColor fills the frame before the scene is drawn.
	ClearColor Color

	scene  *Scene
	frame  *FrameBuffer
	fading float64
	drawer *DrawVisitor
}

// NewRenderView creates a render view with a w×h pixel frame buffer.
func NewRenderView(w, h int) *RenderView {
	fb := NewFrameBuffer(w, h)
	return &RenderView{
		ClearColor: ColorBlack,
		scene:      NewScene(),
		frame:      fb,
		drawer:     NewDrawVisitor(PixelProjection(fb.w, fb.h)),
	}
}

// Scene returns the rendered scene.
func (r *RenderView) Scene() *Scene {
	return r.scene
}

// Frame returns the frame buffer holding the last drawn frame.
func (r *RenderView) Frame() *FrameBuffer {
	return r.frame
}

// Fading returns the live fading amount.
func (r *RenderView) Fading() float64 {
	return r.fading
}

// SetFading sets the live fading amount used by the next Draw.
func (r *RenderView) SetFading(f float64) {
	r.fading = f
}

// SetResolution resizes the frame buffer when the size changes.
func (r *RenderView) SetResolution(res mgl32.Vec3) {
	w, h := int(res.X()), int(res.Y())
	if w < 1 || h < 1 || (w == r.frame.w && h == r.frame.h) {
		return
	}
	r.frame.Dispose()
	r.frame = NewFrameBuffer(w, h)
}

// Update refreshes the transforms of the scene.
func (r *RenderView) Update(dt float64) {
	r.scene.Update(dt)
}

// Draw composites the scene into the frame buffer.
func (r *RenderView) Draw() {
	r.frame.Fill(r.ClearColor)
	r.drawer.Reset(PixelProjection(r.frame.w, r.frame.h))
	r.scene.Accept(r.drawer)
	r.drawer.Submit(r.frame.image)

	if f := clamp01(r.fading); f > 0 {
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(float64(r.frame.w), float64(r.frame.h))
		op.ColorScale.Scale(0, 0, 0, float32(f))
		r.frame.image.DrawImage(WhitePixel, &op)
	}
}

// Commands returns the commands recorded by the last Draw.
func (r *RenderView) Commands() []RenderCommand {
	return r.drawer.Commands()
}

// Dispose releases the frame buffer and the scene.
func (r *RenderView) Dispose() {
	r.scene.Root().Dispose()
	r.frame.Dispose()
}
