package animation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/loader"
	"github.com/ivlev/scrollseq/internal/pin"
	"github.com/ivlev/scrollseq/internal/renderer"
	"github.com/ivlev/scrollseq/internal/source"
	"github.com/ivlev/scrollseq/internal/system"
	"github.com/ivlev/scrollseq/internal/timeline"
)

var ErrAlreadyMounted = errors.New("animation already mounted")

// Animation is one mounted scroll sequence: it preloads the frames off the host
// goroutine, exposes the first frame as a placeholder while loading and binds
// the renderer once the load settles.
type Animation struct {
	ID        string
	Container string

	cfg      *config.Config
	loader   *loader.Loader
	renderer *renderer.Renderer
	canvas   renderer.Canvas
	box      renderer.TextBox
	logger   *slog.Logger

	mu          sync.Mutex
	placeholder *source.Frame
	state       loader.State
	frames      *loader.FrameSet
	mounted     bool
	unmounted   bool

	result chan loadResult
	done   chan struct{}
}

type loadResult struct {
	frames *loader.FrameSet
	state  loader.State
}

// New prepares an animation for cfg. Nothing is fetched until Mount.
func New(cfg *config.Config, fetcher source.Fetcher, pinner renderer.Pinner,
	canvas renderer.Canvas, box renderer.TextBox, logger *slog.Logger) (*Animation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	height, err := pin.ParseLength(cfg.PinHeight)
	if err != nil {
		return nil, fmt.Errorf("pin_height: %w", err)
	}
	fn, err := timeline.Easing(cfg.RevealEase)
	if err != nil {
		return nil, fmt.Errorf("reveal_ease: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	logger = logger.With("animation", id[:8])

	l := loader.New(fetcher, logger)
	l.MaxConcurrent = cfg.MaxConcurrent

	a := &Animation{
		ID:        id,
		Container: "scrollseq-" + id,
		cfg:       cfg,
		loader:    l,
		canvas:    canvas,
		box:       box,
		logger:    logger,
		result:    make(chan loadResult, 1),
		done:      make(chan struct{}),
	}
	a.renderer = renderer.New(pinner, renderer.Options{
		TotalFrames:       cfg.TotalFrames,
		ScrollSensitivity: cfg.ScrollSensitivity,
		RevealStartFrame:  cfg.RevealStartFrame,
		PinHeight:         height,
		Ease:              fn,
	}, logger)
	return a, nil
}

// Mount starts the preload in its own goroutine and returns immediately.
func (a *Animation) Mount(ctx context.Context) error {
	a.mu.Lock()
	if a.mounted {
		a.mu.Unlock()
		return ErrAlreadyMounted
	}
	a.mounted = true
	a.state = loader.Loading
	a.mu.Unlock()

	a.loader.OnFirstFrame = func(f *source.Frame) {
		if f == nil {
			a.logger.Warn("first frame unavailable, no placeholder")
			return
		}
		a.mu.Lock()
		if !a.unmounted {
			a.placeholder = f
		}
		a.mu.Unlock()
		system.CheckSequenceMemory(ctx, a.logger, f.Width, f.Height, a.cfg.TotalFrames)
	}

	spec := a.cfg.FrameSpec()
	a.logger.Info("loading frame sequence", "frames", spec.TotalFrames, "first", spec.FirstFrameRef)
	start := time.Now()
	go func() {
		defer close(a.done)
		set, st := a.loader.Load(ctx, spec)
		a.logger.Info("frame sequence loaded", "state", st.String(), "loaded", set.Loaded(),
			"total", set.Target(), "elapsed", time.Since(start).Round(time.Millisecond))
		a.result <- loadResult{frames: set, state: st}
	}()
	return nil
}

// Poll picks up a settled load and binds the renderer. It must be called from
// the goroutine that drives scrolling and painting. It never blocks.
func (a *Animation) Poll() loader.State {
	var res loadResult
	select {
	case res = <-a.result:
	default:
		return a.State()
	}

	a.mu.Lock()
	if a.unmounted {
		a.mu.Unlock()
		return a.state
	}
	a.frames = res.frames
	a.state = res.state
	a.mu.Unlock()

	a.bind(res.frames)
	return res.state
}

func (a *Animation) bind(frames *loader.FrameSet) {
	if frames.Len() == 0 {
		a.logger.Error("no frames loaded, sequence stays static", "total", frames.Target())
		return
	}
	err := a.renderer.Bind(a.Container, a.canvas, a.box, frames)
	switch {
	case err == nil:
	case errors.Is(err, renderer.ErrSurfaceUnavailable):
		a.logger.Error("drawing surface unavailable, sequence stays static", "err", err)
	default:
		a.logger.Error("bind failed", "err", err)
	}
}

// Wait blocks until the load settles or ctx is done.
func (a *Animation) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unmount tears the animation down. It is idempotent and safe while the load
// is still in flight; a late result is discarded.
func (a *Animation) Unmount() {
	a.mu.Lock()
	if a.unmounted {
		a.mu.Unlock()
		return
	}
	a.unmounted = true
	a.placeholder = nil
	a.frames = nil
	a.mu.Unlock()

	a.renderer.Unbind()
	a.logger.Debug("animation unmounted")
}

func (a *Animation) State() loader.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Placeholder is the first frame once it has resolved, nil before.
func (a *Animation) Placeholder() *source.Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.placeholder
}

func (a *Animation) Frames() *loader.FrameSet {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frames
}

// Bound reports whether the renderer is driving the canvas.
func (a *Animation) Bound() bool {
	return a.renderer.Bound()
}

func (a *Animation) Renderer() *renderer.Renderer {
	return a.renderer
}

// Budget is the scroll distance consumed by the sequence.
func (a *Animation) Budget() float64 {
	return a.cfg.ScrollBudget()
}
