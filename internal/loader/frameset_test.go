package loader

import (
	"image"
	"testing"

	"github.com/ivlev/scrollseq/internal/source"
)

func frame(ref string) *source.Frame {
	return source.NewFrame(ref, image.NewRGBA(image.Rect(0, 0, 2, 2)))
}

func TestFrameSetNearestSubstitution(t *testing.T) {
	set := NewFrameSet([]*source.Frame{
		nil,
		frame("2"),
		nil,
		nil,
		frame("5"),
		nil,
	})

	tests := []struct {
		pos  int
		want string
	}{
		{0, "2"}, // only a later neighbour
		{1, "2"}, // own frame
		{2, "2"}, // previous is closer
		{3, "5"}, // next is closer
		{4, "5"},
		{5, "5"},
		{-3, "2"}, // clamped
		{99, "5"}, // clamped
	}
	for _, tt := range tests {
		if got := set.At(tt.pos); got == nil || got.Ref != tt.want {
			t.Errorf("At(%d) = %v, want %s", tt.pos, got, tt.want)
		}
	}

	if set.Len() != 6 || set.Loaded() != 2 {
		t.Errorf("Expected len 6 loaded 2, got %d/%d", set.Len(), set.Loaded())
	}
	if set.Has(0) || !set.Has(1) {
		t.Error("Has should report own frames only")
	}
	if set.First() != nil {
		t.Error("First should be nil when index 1 failed")
	}
}

func TestFrameSetTie(t *testing.T) {
	set := NewFrameSet([]*source.Frame{frame("1"), nil, frame("3")})
	if got := set.At(1).Ref; got != "1" {
		t.Errorf("Tie should prefer the earlier frame, got %s", got)
	}
}

func TestNilFrameSet(t *testing.T) {
	var set *FrameSet
	if set.Len() != 0 || set.Loaded() != 0 || set.Target() != 0 || set.At(0) != nil {
		t.Error("Nil set should be empty")
	}
	if len(set.Missing()) != 0 {
		t.Error("Nil set has nothing missing")
	}
}
