package chart

import "fmt"

// Resolution selects the circular time axis of a page.
type Resolution string

const (
	ResolutionHour   Resolution = "hour"
	ResolutionMinute Resolution = "minute"
)

// Modulus returns the length of the circular axis: 24 hours or 60 minutes.
func (r Resolution) Modulus() (int, error) {
	switch r {
	case ResolutionHour:
		return 24, nil
	case ResolutionMinute:
		return 60, nil
	default:
		return 0, fmt.Errorf("%w: unknown resolution %q", ErrMalformedInput, r)
	}
}

// Align labels the length samples of a window whose last sample was taken at
// windowEnd on a circular axis of the given modulus. Windows longer than the
// modulus repeat labels.
func Align(windowEnd, length, modulus int) ([]int, error) {
	if modulus <= 0 {
		return nil, fmt.Errorf("%w: modulus %d", ErrMalformedInput, modulus)
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative window length %d", ErrMalformedInput, length)
	}
	if windowEnd < 0 || windowEnd >= modulus {
		return nil, fmt.Errorf("%w: window end %d outside 0..%d", ErrMalformedInput, windowEnd, modulus-1)
	}

	start := (windowEnd + 1 - length%modulus + modulus) % modulus
	labels := make([]int, length)
	for i := range labels {
		labels[i] = (start + i) % modulus
	}
	return labels, nil
}
