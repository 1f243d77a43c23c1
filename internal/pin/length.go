package pin

import (
	"fmt"
	"strconv"
	"strings"
)

type Unit int

const (
	Pixels Unit = iota
	ViewportHeight
	Percent
)

// Length is a CSS-style length: "100vh", "80%", "600px" or a bare number of pixels.
type Length struct {
	Value float64
	Unit  Unit
}

// FullViewport is the default pinned height.
var FullViewport = Length{Value: 100, Unit: ViewportHeight}

func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return FullViewport, nil
	}

	unit := Pixels
	num := s
	switch {
	case strings.HasSuffix(s, "vh"):
		unit, num = ViewportHeight, strings.TrimSuffix(s, "vh")
	case strings.HasSuffix(s, "%"):
		unit, num = Percent, strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		num = strings.TrimSuffix(s, "px")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || v < 0 {
		return Length{}, fmt.Errorf("invalid length %q", s)
	}
	return Length{Value: v, Unit: unit}, nil
}

// Resolve converts the length to pixels for a viewport of the given height.
// Percentages are taken relative to the viewport, since the pinned element
// fills it.
func (l Length) Resolve(viewportHeight float64) float64 {
	switch l.Unit {
	case ViewportHeight, Percent:
		return l.Value / 100 * viewportHeight
	default:
		return l.Value
	}
}

func (l Length) String() string {
	v := strconv.FormatFloat(l.Value, 'f', -1, 64)
	switch l.Unit {
	case ViewportHeight:
		return v + "vh"
	case Percent:
		return v + "%"
	default:
		return v + "px"
	}
}
