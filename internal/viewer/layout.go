package viewer

import (
	"image"

	"github.com/ivlev/scrollseq/internal/pin"
)

// container is the pinned area: full window width, pin height tall, clamped
// to the window.
func container(windowW, windowH int, height pin.Length) image.Rectangle {
	h := int(height.Resolve(float64(windowH)))
	h = min(max(h, 0), windowH)
	return image.Rect(0, 0, windowW, h)
}

// fitWidth scales a w×h canvas to the width of box and centres it vertically.
// It returns the scale and the top-left corner of the scaled canvas.
func fitWidth(w, h int, box image.Rectangle) (scale float64, at image.Point) {
	if w <= 0 || h <= 0 {
		return 0, box.Min
	}
	scale = float64(box.Dx()) / float64(w)
	scaledH := int(float64(h) * scale)
	return scale, image.Pt(box.Min.X, box.Min.Y+(box.Dy()-scaledH)/2)
}

// overlayOrigin places a card of the given size at the bottom-left of box with
// a margin. The reveal offset is added on top of it by the caller.
func overlayOrigin(card image.Point, box image.Rectangle, margin int) image.Point {
	return image.Pt(box.Min.X+margin, box.Max.Y-margin-card.Y)
}
