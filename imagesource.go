package vmix

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type imageResult struct {
	img image.Image
	err error
}

// ImageSource displays a still picture decoded in the background. PNG, JPEG,
// GIF, BMP, TIFF and WebP files are supported.
type ImageSource struct {
	SourceBase

	path    string
	failed  atomic.Bool
	loading chan imageResult
	texture *ebiten.Image
}

// NewImageSource creates a source and starts decoding path.
func NewImageSource(name, path string) *ImageSource {
	s := &ImageSource{path: path}
	s.init(name, SymbolImage)

	ch := make(chan imageResult, 1)
	s.loading = ch
	go func() {
		img, err := DecodeImageFile(path)
		ch <- imageResult{img: img, err: err}
	}()
	return s
}

// DecodeImageFile decodes the picture stored at path.
func DecodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Path returns the picture file.
func (s *ImageSource) Path() string {
	return s.path
}

// Loaded reports whether the picture is decoded and displayed.
func (s *ImageSource) Loaded() bool {
	return s.texture != nil
}

// Texture returns the decoded picture, nil until loaded.
func (s *ImageSource) Texture() *ebiten.Image {
	return s.texture
}

// Failed reports whether the picture could not be decoded.
func (s *ImageSource) Failed() bool {
	return s.failed.Load()
}

// Update uploads the picture once decoding completes.
func (s *ImageSource) Update(dt float64) {
	if s.loading == nil {
		return
	}
	select {
	case r := <-s.loading:
		s.loading = nil
		if r.err != nil {
			Logger().Warn("image source load failed", "source", s.name, "error", r.err)
			s.failed.Store(true)
			return
		}
		s.texture = ebiten.NewImageFromImage(r.img)
		s.SetTexture(s.texture)
		b := r.img.Bounds()
		if b.Dy() > 0 {
			s.SetAspectRatio(float32(b.Dx()) / float32(b.Dy()))
		}
	default:
	}
}

// Dispose releases the texture.
func (s *ImageSource) Dispose() {
	if s.texture != nil {
		s.texture.Deallocate()
		s.texture = nil
	}
	s.SourceBase.Dispose()
}
