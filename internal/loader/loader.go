package loader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrollseq/internal/config"
	"github.com/ivlev/scrollseq/internal/source"
)

type State int

const (
	Loading State = iota
	Ready
	PartiallyReady
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case PartiallyReady:
		return "partially-ready"
	}
	return "unknown"
}

// Terminal reports whether the load has settled.
func (s State) Terminal() bool {
	return s == Ready || s == PartiallyReady
}

// Loader preloads a whole frame sequence.
type Loader struct {
	Fetcher source.Fetcher
	Logger  *slog.Logger

	// MaxConcurrent caps in-flight fetches. Zero issues every fetch at once.
	MaxConcurrent int

	// OnFirstFrame is called once, as soon as the fetch for index 1 resolves.
	// The frame is nil when that fetch failed.
	OnFirstFrame func(*source.Frame)
}

func New(fetcher source.Fetcher, logger *slog.Logger) *Loader {
	return &Loader{Fetcher: fetcher, Logger: logger}
}

// Load fetches every frame of spec concurrently and returns once all fetches
// have resolved. Individual failures are logged and leave an empty slot; Load
// itself never fails.
func (l *Loader) Load(ctx context.Context, spec config.FrameSpec) (*FrameSet, State) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	total := spec.TotalFrames
	if total < 1 {
		total = 1
	}

	set := &FrameSet{frames: make([]*source.Frame, total)}
	start := time.Now()

	var g errgroup.Group
	if l.MaxConcurrent > 0 {
		g.SetLimit(l.MaxConcurrent)
	}

	var firstOnce sync.Once
	for i := 1; i <= total; i++ {
		index := i
		ref := spec.Ref(index)
		g.Go(func() error {
			frame, err := l.Fetcher.Fetch(ctx, ref)
			if err != nil {
				logger.Warn("frame load failed", "index", index, "ref", ref, "err", err)
				frame = nil
			} else {
				set.frames[index-1] = frame
			}
			if index == 1 && l.OnFirstFrame != nil {
				firstOnce.Do(func() { l.OnFirstFrame(frame) })
			}
			return nil
		})
	}
	g.Wait()

	for _, f := range set.frames {
		if f != nil {
			set.loaded++
		}
	}

	state := Ready
	if set.loaded < total {
		state = PartiallyReady
		logger.Warn("incomplete frame sequence", "loaded", set.loaded, "total", total)
	}
	logger.Debug("frame sequence settled", "state", state.String(), "loaded", set.loaded,
		"total", total, "elapsed", time.Since(start).Round(time.Millisecond))

	return set, state
}
