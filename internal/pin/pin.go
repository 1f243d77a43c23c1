package pin

import (
	"errors"
	"sync"
)

var ErrNoDuration = errors.New("pin duration must be positive")

// Options configures one pinned element.
type Options struct {
	// Start is the scroll offset at which pinning begins.
	Start float64
	// Height is the pinned element's height while pinned.
	Height Length
	// Duration is the scroll distance over which progress runs from 0 to 1.
	Duration float64
	// OnProgress is called synchronously whenever progress changes.
	OnProgress func(progress float64)
}

// Handle releases a pin registration.
type Handle interface {
	Destroy()
}

// ScrollPinner turns a scroll offset into per-element progress. It is driven
// by the host's input loop; callbacks run on the goroutine that scrolls.
type ScrollPinner struct {
	mu       sync.Mutex
	viewport float64
	offset   float64
	pins     []*Pin
}

func NewScrollPinner(viewportHeight float64) *ScrollPinner {
	return &ScrollPinner{viewport: viewportHeight}
}

// Pin is an active registration.
type Pin struct {
	owner    *ScrollPinner
	Target   string
	opts     Options
	progress float64
	dead     bool
}

// Pin registers target. The current progress is recorded without a callback;
// OnProgress fires on the next scroll that changes it.
func (s *ScrollPinner) Pin(target string, opts Options) (Handle, error) {
	if opts.Duration <= 0 {
		return nil, ErrNoDuration
	}
	p := &Pin{owner: s, Target: target, opts: opts}

	s.mu.Lock()
	defer s.mu.Unlock()
	p.progress = Progress(s.offset, opts.Start, opts.Duration)
	s.pins = append(s.pins, p)
	return p, nil
}

func (p *Pin) Destroy() {
	s := p.owner
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.dead {
		return
	}
	p.dead = true
	for i, q := range s.pins {
		if q == p {
			s.pins = append(s.pins[:i], s.pins[i+1:]...)
			break
		}
	}
}

// Progress is the last progress reported to the pin.
func (p *Pin) Progress() float64 {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.progress
}

// PinnedHeight resolves the pin height against the pinner's viewport.
func (p *Pin) PinnedHeight() float64 {
	p.owner.mu.Lock()
	defer p.owner.mu.Unlock()
	return p.opts.Height.Resolve(p.owner.viewport)
}

// Scroll moves the offset by delta (positive scrolls down).
func (s *ScrollPinner) Scroll(delta float64) {
	s.mu.Lock()
	to := s.offset + delta
	s.mu.Unlock()
	s.ScrollTo(to)
}

// ScrollTo moves to an absolute offset, clamped to the scrollable extent.
func (s *ScrollPinner) ScrollTo(offset float64) {
	s.mu.Lock()
	s.offset = min(max(offset, 0), s.extentLocked())
	offset = s.offset
	pins := append([]*Pin(nil), s.pins...)
	s.mu.Unlock()

	s.notify(pins, offset)
}

func (s *ScrollPinner) notify(pins []*Pin, offset float64) {
	for _, p := range pins {
		progress := Progress(offset, p.opts.Start, p.opts.Duration)

		s.mu.Lock()
		changed := !p.dead && progress != p.progress
		if changed {
			p.progress = progress
		}
		s.mu.Unlock()

		if changed && p.opts.OnProgress != nil {
			p.opts.OnProgress(progress)
		}
	}
}

func (s *ScrollPinner) Offset() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Extent is the furthest offset any active pin can use.
func (s *ScrollPinner) Extent() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.extentLocked()
}

func (s *ScrollPinner) extentLocked() float64 {
	var ext float64
	for _, p := range s.pins {
		ext = max(ext, p.opts.Start+p.opts.Duration)
	}
	return ext
}

// SetViewport updates the viewport height used to resolve pinned heights.
func (s *ScrollPinner) SetViewport(h float64) {
	s.mu.Lock()
	s.viewport = h
	s.mu.Unlock()
}

func (s *ScrollPinner) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pins)
}

// Progress converts a scroll offset to the [0,1] progress of a pin.
func Progress(offset, start, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	p := (offset - start) / duration
	return min(max(p, 0), 1)
}
