package dynamo

import (
	"fmt"
	"sort"
)

// Easing maps normalized time in [0, 1] to tilt progress in [0, 1]. Every
// registered curve is monotonic non-decreasing with e(0) = 0 and e(1) = 1.
type Easing func(t float64) float64

func Linear(t float64) float64 { return t }

// EaseOutCubic starts fast and settles onto the stop line: 1 - (1-t)^3.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// SmoothStep is the Hermite curve 3t^2 - 2t^3.
func SmoothStep(t float64) float64 {
	return t * t * (3 - 2*t)
}

const DefaultEasing = "ease-out"

var easings = map[string]Easing{
	"linear":      Linear,
	"ease-out":    EaseOutCubic,
	"ease-in-out": EaseInOutCubic,
	"smoothstep":  SmoothStep,
}

func LookupEasing(name string) (Easing, error) {
	e, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown easing %q (available: %v)", ErrConfig, name, EasingNames())
	}
	return e, nil
}

func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
