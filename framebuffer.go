package vmix

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// FrameBuffer is an offscreen canvas receiving the composited output of a
// render view. It is owned by its RenderView and is NOT recycled between
// frames: recorders and sources read the same image every frame.
type FrameBuffer struct {
	image *ebiten.Image
	w, h  int
}

// NewFrameBuffer creates an offscreen canvas of the given size in pixels.
// Sizes below one pixel are raised to one.
func NewFrameBuffer(w, h int) *FrameBuffer {
	w, h = max(w, 1), max(h, 1)
	return &FrameBuffer{
		image: ebiten.NewImage(w, h),
		w:     w,
		h:     h,
	}
}

// Image returns the underlying *ebiten.Image for direct manipulation.
func (fb *FrameBuffer) Image() *ebiten.Image {
	return fb.image
}

// Width returns the buffer width in pixels.
func (fb *FrameBuffer) Width() int {
	return fb.w
}

// Height returns the buffer height in pixels.
func (fb *FrameBuffer) Height() int {
	return fb.h
}

// AspectRatio returns width / height.
func (fb *FrameBuffer) AspectRatio() float32 {
	return float32(fb.w) / float32(fb.h)
}

// Resolution returns the size as a vector (width, height, 0).
func (fb *FrameBuffer) Resolution() mgl32.Vec3 {
	return mgl32.Vec3{float32(fb.w), float32(fb.h), 0}
}

// Clear fills the buffer with transparent black.
func (fb *FrameBuffer) Clear() {
	fb.image.Clear()
}

// Fill fills the entire buffer with the given color.
func (fb *FrameBuffer) Fill(c Color) {
	fb.image.Fill(c.toRGBA())
}

// Dispose releases the GPU image. The buffer must not be used afterwards.
func (fb *FrameBuffer) Dispose() {
	if fb.image != nil {
		fb.image.Deallocate()
		fb.image = nil
	}
}

// Snapshot reads the buffer back into a straight-alpha image. It can only be
// called while the game loop is running.
func (fb *FrameBuffer) Snapshot() *image.NRGBA {
	pixels := make([]byte, 4*fb.w*fb.h)
	fb.image.ReadPixels(pixels)
	return unpremultiply(pixels, fb.w, fb.h)
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}
