package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"golang.org/x/image/draw"

	"github.com/ivlev/scrollseq/internal/animation"
	"github.com/ivlev/scrollseq/internal/overlay"
	"github.com/ivlev/scrollseq/internal/pin"
	"github.com/ivlev/scrollseq/internal/renderer"
)

var ErrNotBound = errors.New("animation did not bind")

const overlayMargin = 32

var background = color.RGBA{18, 18, 22, 255}

// Exporter scrubs a mounted animation from start to end and writes a
// composited preview of every sample.
type Exporter struct {
	Width, Height int
	Samples       int
	Logger        *slog.Logger
}

// Run waits for anim to settle, binds it and scrolls pinner through Samples
// evenly spaced offsets. surface must be the canvas anim was created with.
func (e *Exporter) Run(ctx context.Context, anim *animation.Animation, pinner *pin.ScrollPinner,
	surface *renderer.ImageSurface, box *overlay.TextBox, sink Sink) (int, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if e.Width <= 0 || e.Height <= 0 {
		return 0, fmt.Errorf("invalid export size %dx%d", e.Width, e.Height)
	}
	samples := max(e.Samples, 1)

	if err := anim.Wait(ctx); err != nil {
		return 0, err
	}
	anim.Poll()
	if !anim.Bound() {
		return 0, ErrNotBound
	}

	start := time.Now()
	dst := image.NewRGBA(image.Rect(0, 0, e.Width, e.Height))
	budget := anim.Budget()
	for i := 0; i < samples; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		progress := 1.0
		if samples > 1 {
			progress = float64(i) / float64(samples-1)
		}
		pinner.ScrollTo(progress * budget)

		e.Compose(dst, surface.Image(), box)
		if err := sink.WriteFrame(i, dst); err != nil {
			return i, fmt.Errorf("sample %d: %w", i, err)
		}
		logger.Debug("sample written", "index", i, "progress", progress,
			"frame", anim.Renderer().CurrentFrame())
	}

	logger.Info("preview exported", "samples", samples, "size", fmt.Sprintf("%dx%d", e.Width, e.Height),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return samples, nil
}

// Compose draws canvas scaled to the full width, centred vertically, then the
// overlay at the bottom-left.
func (e *Exporter) Compose(dst *image.RGBA, canvas image.Image, box *overlay.TextBox) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	if canvas != nil {
		if b := canvas.Bounds(); !b.Empty() {
			h := b.Dy() * dst.Rect.Dx() / b.Dx()
			y := (dst.Rect.Dy() - h) / 2
			draw.ApproxBiLinear.Scale(dst, image.Rect(0, y, dst.Rect.Dx(), y+h), canvas, b, draw.Over, nil)
		}
	}

	if box != nil {
		card := box.Card().Bounds().Size()
		box.Compose(dst, image.Pt(overlayMargin, dst.Rect.Dy()-overlayMargin-card.Y))
	}
}
