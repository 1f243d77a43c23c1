package timeline

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Text box resting positions: hidden below its slot, then fully visible.
const (
	HiddenOffset  = 100.0
	HiddenOpacity = 0.0
	ShownOffset   = 0.0
	ShownOpacity  = 1.0
)

// TextBoxState is the transform applied to the overlay.
type TextBoxState struct {
	OffsetY float64 // logical units below the resting position
	Opacity float64
}

func HiddenTextBox() TextBoxState {
	return TextBoxState{OffsetY: HiddenOffset, Opacity: HiddenOpacity}
}

// State is everything the renderer needs for one progress value.
type State struct {
	Progress float64
	Frame    int
	TextBox  TextBoxState
}

// FrameForProgress maps a progress value in [0,1] to a frame index in
// [0, frameCount-1]. Values outside [0,1] are clamped.
func FrameForProgress(progress float64, frameCount int) int {
	if frameCount <= 1 || math.IsNaN(progress) {
		return 0
	}
	last := frameCount - 1
	idx := int(math.Floor(clamp01(progress) * float64(last)))
	return min(max(idx, 0), last)
}

// RevealStart is the normalized time at which the text reveal begins.
func RevealStart(startFrame, totalFrames int) float64 {
	if totalFrames <= 1 {
		return 0
	}
	return clamp01(float64(startFrame) / float64(totalFrames-1))
}

// property is a single tweened value of a track.
type property struct {
	name  string
	tween *gween.Tween
}

// Track animates a set of properties over [Start, Start+Duration] of the
// shared normalized clock.
type Track struct {
	Name     string
	Start    float64
	Duration float64
	props    []property
}

func NewTrack(name string, start, duration float64) *Track {
	return &Track{Name: name, Start: start, Duration: duration}
}

// Tween adds a property going from begin to end with the given easing.
func (t *Track) Tween(name string, begin, end float64, fn ease.TweenFunc) *Track {
	d := float32(t.Duration)
	if d <= 0 {
		d = 1
	}
	t.props = append(t.props, property{name: name, tween: gween.New(float32(begin), float32(end), d, fn)})
	return t
}

// seek positions every property at clock time p and returns their values.
// Tween.Set is absolute, so seeking backwards reverses the animation.
func (t *Track) seek(p float64) map[string]float64 {
	local := p - t.Start
	out := make(map[string]float64, len(t.props))
	for _, prop := range t.props {
		var v float32
		if t.Duration <= 0 {
			// Zero-length track: jump to the end as soon as the clock reaches it.
			if local >= 0 {
				v, _ = prop.tween.Set(float32(math.MaxFloat32))
			} else {
				v, _ = prop.tween.Set(0)
			}
		} else {
			v, _ = prop.tween.Set(float32(local))
		}
		out[prop.name] = float64(v)
	}
	return out
}

// Timeline is a named group of tracks driven by one progress clock.
type Timeline struct {
	Name   string
	frames int
	tracks []*Track
}

func New(name string, frames int) *Timeline {
	return &Timeline{Name: name, frames: max(frames, 1)}
}

func (tl *Timeline) Add(track *Track) *Timeline {
	tl.tracks = append(tl.tracks, track)
	return tl
}

func (tl *Timeline) Track(name string) *Track {
	for _, t := range tl.tracks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Values seeks every track and returns the values keyed by "track.property".
func (tl *Timeline) Values(progress float64) map[string]float64 {
	p := clamp01(progress)
	out := make(map[string]float64)
	for _, t := range tl.tracks {
		for k, v := range t.seek(p) {
			out[t.Name+"."+k] = v
		}
	}
	return out
}

// Evaluate maps progress to the frame index and overlay transform.
func (tl *Timeline) Evaluate(progress float64) State {
	p := clamp01(progress)
	st := State{
		Progress: p,
		Frame:    FrameForProgress(p, tl.frames),
		TextBox:  HiddenTextBox(),
	}
	if reveal := tl.Track(RevealTrack); reveal != nil {
		v := reveal.seek(p)
		st.TextBox = TextBoxState{OffsetY: v["y"], Opacity: v["opacity"]}
	}
	return st
}

const (
	FrameTrack  = "frame"
	RevealTrack = "reveal"
)

// NewReveal builds the two-track timeline: the frame index advancing linearly
// over the whole budget, and the text box sliding up and fading in from
// revealStartFrame to the end.
func NewReveal(totalFrames, revealStartFrame int, fn ease.TweenFunc) *Timeline {
	if fn == nil {
		fn = ease.OutQuad
	}
	start := RevealStart(revealStartFrame, totalFrames)
	last := float64(max(totalFrames-1, 0))

	return New("scroll-reveal", totalFrames).
		Add(NewTrack(FrameTrack, 0, 1).Tween("index", 0, last, ease.Linear)).
		Add(NewTrack(RevealTrack, start, 1-start).
			Tween("y", HiddenOffset, ShownOffset, fn).
			Tween("opacity", HiddenOpacity, ShownOpacity, fn))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
