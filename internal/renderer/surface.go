package renderer

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/ivlev/scrollseq/internal/system"
)

// ImageSurface is an in-memory Surface backed by an *image.RGBA. Buffers are
// recycled through the system image pool when the size changes.
type ImageSurface struct {
	buf         *image.RGBA
	allocations int
}

func NewImageSurface(w, h int) *ImageSurface {
	return &ImageSurface{buf: system.GetImage(w, h), allocations: 1}
}

// Context implements Canvas.
func (s *ImageSurface) Context() (Surface, error) {
	return s, nil
}

func (s *ImageSurface) Size() (int, int) {
	return s.buf.Rect.Dx(), s.buf.Rect.Dy()
}

func (s *ImageSurface) Resize(w, h int) {
	system.PutImage(s.buf)
	s.buf = system.GetImage(w, h)
	s.allocations++
}

func (s *ImageSurface) Clear() {
	clear(s.buf.Pix)
}

func (s *ImageSurface) Draw(img image.Image) {
	b := img.Bounds()
	draw.Draw(s.buf, image.Rect(0, 0, b.Dx(), b.Dy()), img, b.Min, draw.Over)
}

// Image exposes the backing buffer. It is replaced on Resize.
func (s *ImageSurface) Image() *image.RGBA {
	return s.buf
}

// Allocations counts backing buffers taken so far, including the initial one.
func (s *ImageSurface) Allocations() int {
	return s.allocations
}

// Release returns the backing buffer to the pool.
func (s *ImageSurface) Release() {
	system.PutImage(s.buf)
	s.buf = image.NewRGBA(image.Rectangle{})
}
