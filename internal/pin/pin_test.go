package pin

import (
	"errors"
	"testing"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		in      string
		want    Length
		wantErr bool
	}{
		{"100vh", Length{100, ViewportHeight}, false},
		{" 80% ", Length{80, Percent}, false},
		{"600px", Length{600, Pixels}, false},
		{"450", Length{450, Pixels}, false},
		{"", FullViewport, false},
		{"tall", Length{}, true},
		{"-5px", Length{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLength(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLengthResolve(t *testing.T) {
	tests := []struct {
		l    Length
		want float64
	}{
		{FullViewport, 720},
		{Length{50, Percent}, 360},
		{Length{300, Pixels}, 300},
	}
	for _, tt := range tests {
		if got := tt.l.Resolve(720); got != tt.want {
			t.Errorf("%s.Resolve(720) = %g, want %g", tt.l, got, tt.want)
		}
	}
	if FullViewport.String() != "100vh" {
		t.Errorf("Unexpected string %s", FullViewport.String())
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		offset, start, duration, want float64
	}{
		{0, 0, 720, 0},
		{360, 0, 720, 0.5},
		{720, 0, 720, 1},
		{900, 0, 720, 1},
		{50, 100, 720, 0},
		{10, 0, 0, 1},
	}
	for _, tt := range tests {
		if got := Progress(tt.offset, tt.start, tt.duration); got != tt.want {
			t.Errorf("Progress(%g, %g, %g) = %g, want %g", tt.offset, tt.start, tt.duration, got, tt.want)
		}
	}
}

func TestScrollPinner(t *testing.T) {
	s := NewScrollPinner(720)
	var seen []float64
	h, err := s.Pin("hero", Options{
		Height:     FullViewport,
		Duration:   720,
		OnProgress: func(p float64) { seen = append(seen, p) },
	})
	if err != nil {
		t.Fatalf("Pin failed: %v", err)
	}
	if len(seen) != 0 {
		t.Fatalf("Pin must not report progress before a scroll, got %v", seen)
	}

	s.Scroll(360)
	s.Scroll(0) // unchanged progress is not reported again
	s.Scroll(10000)
	s.Scroll(-720)

	want := []float64{0.5, 1, 0}
	if len(seen) != len(want) {
		t.Fatalf("Expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Callback %d: got %g, want %g", i, seen[i], want[i])
		}
	}

	p := h.(*Pin)
	if p.PinnedHeight() != 720 {
		t.Errorf("Expected pinned height 720, got %g", p.PinnedHeight())
	}
	if s.Extent() != 720 {
		t.Errorf("Expected extent 720, got %g", s.Extent())
	}

	h.Destroy()
	h.Destroy()
	s.ScrollTo(500)
	if len(seen) != len(want) {
		t.Errorf("No callbacks expected after Destroy, got %v", seen)
	}
	if s.Active() != 0 {
		t.Errorf("Expected no active pins, got %d", s.Active())
	}
}

func TestPinRejectsZeroDuration(t *testing.T) {
	s := NewScrollPinner(720)
	if _, err := s.Pin("x", Options{}); !errors.Is(err, ErrNoDuration) {
		t.Errorf("Expected ErrNoDuration, got %v", err)
	}
}

func TestDestroyInsideCallback(t *testing.T) {
	s := NewScrollPinner(720)
	calls := 0
	var h Handle
	h, _ = s.Pin("hero", Options{Duration: 100, OnProgress: func(p float64) {
		calls++
		if p > 0.4 {
			h.Destroy()
		}
	}})
	s.ScrollTo(30)
	s.ScrollTo(50)
	s.ScrollTo(20)
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}
