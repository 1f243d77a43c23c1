package loader

import "github.com/ivlev/scrollseq/internal/source"

// FrameSet is the ordered result of a load. Position k holds source index k+1.
// Slots whose fetch failed stay empty instead of being compacted, so positions
// never shift; At substitutes the nearest loaded frame for them.
type FrameSet struct {
	frames []*source.Frame
	loaded int
}

// NewFrameSet builds a set from frames indexed by position; nil marks a gap.
func NewFrameSet(frames []*source.Frame) *FrameSet {
	s := &FrameSet{frames: frames}
	for _, f := range frames {
		if f != nil {
			s.loaded++
		}
	}
	return s
}

// Target is the configured number of frames.
func (s *FrameSet) Target() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// Loaded is the number of frames that were fetched successfully.
func (s *FrameSet) Loaded() int {
	if s == nil {
		return 0
	}
	return s.loaded
}

// Len is the number of addressable positions: the target length when at least
// one frame loaded, zero otherwise.
func (s *FrameSet) Len() int {
	if s.Loaded() == 0 {
		return 0
	}
	return len(s.frames)
}

// Has reports whether the slot at pos holds its own frame.
func (s *FrameSet) Has(pos int) bool {
	return s != nil && pos >= 0 && pos < len(s.frames) && s.frames[pos] != nil
}

// At returns the frame for pos, or the nearest loaded one when the slot is
// empty. The earlier neighbour wins a tie. Out-of-range positions are clamped.
func (s *FrameSet) At(pos int) *source.Frame {
	n := s.Len()
	if n == 0 {
		return nil
	}
	pos = min(max(pos, 0), n-1)
	if s.frames[pos] != nil {
		return s.frames[pos]
	}
	for d := 1; d < n; d++ {
		if p := pos - d; p >= 0 && s.frames[p] != nil {
			return s.frames[p]
		}
		if p := pos + d; p < n && s.frames[p] != nil {
			return s.frames[p]
		}
	}
	return nil
}

// First is the frame for source index 1, if it loaded.
func (s *FrameSet) First() *source.Frame {
	if !s.Has(0) {
		return nil
	}
	return s.frames[0]
}

// Missing lists the 1-based source indices that failed to load.
func (s *FrameSet) Missing() []int {
	var out []int
	if s == nil {
		return out
	}
	for i, f := range s.frames {
		if f == nil {
			out = append(out, i+1)
		}
	}
	return out
}
