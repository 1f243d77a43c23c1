package viewer

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ivlev/scrollseq/internal/renderer"
)

// Surface is a renderer.Surface backed by an offscreen ebiten image. Frames
// are uploaded to the GPU once and reused on every paint.
type Surface struct {
	img     *ebiten.Image
	w, h    int
	texture map[image.Image]*ebiten.Image
}

func NewSurface() *Surface {
	return &Surface{texture: make(map[image.Image]*ebiten.Image)}
}

func (s *Surface) Context() (renderer.Surface, error) {
	return s, nil
}

func (s *Surface) Size() (int, int) {
	return s.w, s.h
}

func (s *Surface) Resize(w, h int) {
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.w, s.h = w, h
	if w > 0 && h > 0 {
		s.img = ebiten.NewImage(w, h)
	}
}

func (s *Surface) Clear() {
	if s.img != nil {
		s.img.Clear()
	}
}

func (s *Surface) Draw(img image.Image) {
	if s.img == nil {
		return
	}
	s.img.DrawImage(s.upload(img), nil)
}

func (s *Surface) upload(img image.Image) *ebiten.Image {
	if t, ok := s.texture[img]; ok {
		return t
	}
	t := ebiten.NewImageFromImage(img)
	s.texture[img] = t
	return t
}

// Image is the painted canvas, nil before the first paint.
func (s *Surface) Image() *ebiten.Image {
	return s.img
}

// Dispose frees the canvas and every uploaded frame.
func (s *Surface) Dispose() {
	for k, t := range s.texture {
		t.Deallocate()
		delete(s.texture, k)
	}
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.w, s.h = 0, 0
}
