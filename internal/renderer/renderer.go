package renderer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/tanema/gween/ease"

	"github.com/ivlev/scrollseq/internal/loader"
	"github.com/ivlev/scrollseq/internal/pin"
	"github.com/ivlev/scrollseq/internal/source"
	"github.com/ivlev/scrollseq/internal/timeline"
)

var (
	ErrSurfaceUnavailable = errors.New("drawing surface unavailable")
	ErrNoFrames           = errors.New("frame set does not cover the sequence")
	ErrAlreadyBound       = errors.New("renderer already bound")
)

// Surface is a drawing context with a resizable backing buffer.
type Surface interface {
	Size() (w, h int)
	Resize(w, h int)
	Clear()
	// Draw paints img at the origin at its native size.
	Draw(img image.Image)
}

// Canvas hands out its drawing context, or an error when none can be acquired.
type Canvas interface {
	Context() (Surface, error)
}

// TextBox receives the overlay transform on every progress update.
type TextBox interface {
	Apply(state timeline.TextBoxState)
}

// Pinner is the pinning capability the renderer drives.
type Pinner interface {
	Pin(target string, opts pin.Options) (pin.Handle, error)
}

type Options struct {
	TotalFrames       int
	ScrollSensitivity float64
	RevealStartFrame  int
	PinHeight         pin.Length
	Ease              ease.TweenFunc
}

// Budget is the scroll distance of the whole sequence.
func (o Options) Budget() float64 {
	return float64(o.TotalFrames) * o.ScrollSensitivity
}

// Renderer paints the frame that matches the scroll progress of a pinned container.
type Renderer struct {
	pinner Pinner
	opts   Options
	logger *slog.Logger

	frames   *loader.FrameSet
	surface  Surface
	box      TextBox
	timeline *timeline.Timeline
	handle   pin.Handle
	bound    bool

	progress float64
	current  int
}

func New(pinner Pinner, opts Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{pinner: pinner, opts: opts, logger: logger}
}

// Bind attaches the renderer to container. It requires a frame set that
// addresses every position of the sequence, acquires the drawing context,
// hides the text box, paints frame 0 and then registers the pin.
func (r *Renderer) Bind(container string, canvas Canvas, box TextBox, frames *loader.FrameSet) error {
	if r.bound {
		return ErrAlreadyBound
	}
	if frames.Len() == 0 || frames.Len() != r.opts.TotalFrames {
		return fmt.Errorf("%w: %d of %d addressable", ErrNoFrames, frames.Len(), r.opts.TotalFrames)
	}
	if canvas == nil {
		return ErrSurfaceUnavailable
	}
	surface, err := canvas.Context()
	if err != nil || surface == nil {
		return fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}

	r.frames = frames
	r.surface = surface
	r.box = box
	r.timeline = timeline.NewReveal(frames.Len(), r.opts.RevealStartFrame, r.opts.Ease)
	r.progress = 0
	r.bound = true

	if r.box != nil {
		r.box.Apply(timeline.HiddenTextBox())
	}
	r.DrawFrame(0)

	handle, err := r.pinner.Pin(container, pin.Options{
		Height:     r.opts.PinHeight,
		Duration:   r.opts.Budget(),
		OnProgress: r.onProgress,
	})
	if err != nil {
		r.release()
		return fmt.Errorf("pin %s: %w", container, err)
	}
	r.handle = handle

	r.logger.Debug("renderer bound", "container", container, "frames", frames.Len(),
		"loaded", frames.Loaded(), "budget", r.opts.Budget())
	return nil
}

func (r *Renderer) onProgress(progress float64) {
	if !r.bound {
		return
	}
	st := r.timeline.Evaluate(progress)
	r.progress = st.Progress
	r.DrawFrame(st.Frame)
	if r.box != nil {
		r.box.Apply(st.TextBox)
	}
}

// DrawFrame paints the frame at position index. Positions are clamped to the
// loaded set.
func (r *Renderer) DrawFrame(index int) {
	if !r.bound {
		return
	}
	frame := r.frames.At(index)
	if frame == nil {
		return
	}
	r.current = min(max(index, 0), r.frames.Len()-1)
	Paint(r.surface, frame)
}

// Unbind releases the pin and the timeline. It is safe to call repeatedly and
// before Bind.
func (r *Renderer) Unbind() {
	if r.handle != nil {
		r.handle.Destroy()
		r.handle = nil
	}
	if r.bound {
		r.logger.Debug("renderer unbound")
	}
	r.release()
}

func (r *Renderer) release() {
	r.bound = false
	r.timeline = nil
	r.frames = nil
	r.surface = nil
	r.box = nil
}

func (r *Renderer) Bound() bool {
	return r.bound
}

func (r *Renderer) Progress() float64 {
	return r.progress
}

func (r *Renderer) CurrentFrame() int {
	return r.current
}

// Paint resizes the surface only when the frame's natural size differs from
// the current one, then clears it and draws the frame at the origin.
func Paint(s Surface, f *source.Frame) {
	if w, h := s.Size(); w != f.Width || h != f.Height {
		s.Resize(f.Width, f.Height)
	}
	s.Clear()
	s.Draw(f.Image)
}
