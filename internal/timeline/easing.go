package timeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":     ease.Linear,
	"inquad":     ease.InQuad,
	"outquad":    ease.OutQuad,
	"inoutquad":  ease.InOutQuad,
	"outcubic":   ease.OutCubic,
	"inoutcubic": ease.InOutCubic,
	"outquart":   ease.OutQuart,
	"outsine":    ease.OutSine,
	"inoutsine":  ease.InOutSine,
	"outexpo":    ease.OutExpo,
	"outcirc":    ease.OutCirc,
	"outback":    ease.OutBack,
}

// Easing resolves an easing function by name. Names are case-insensitive and
// ignore '-' and '_', so "out-quad", "OutQuad" and "outquad" are the same.
// An empty name selects OutQuad.
func Easing(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.OutQuad, nil
	}
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	fn, ok := easings[key]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (known: %s)", name, strings.Join(EasingNames(), ", "))
	}
	return fn, nil
}

func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for k := range easings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
