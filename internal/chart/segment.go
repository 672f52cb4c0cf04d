package chart

import "math"

// segment accumulates one watering-to-watering run. members counts positions,
// count only the positions that carried a sample.
type segment struct {
	sum     float64
	count   int
	members int
}

func (s *segment) add(v float64) {
	s.members++
	if !math.IsNaN(v) {
		s.sum += v
		s.count++
	}
}

// close appends the segment average once per member and resets the segment.
func (s *segment) close(out []float64) []float64 {
	if s.members == 0 {
		panic(ErrDivisionDegenerate)
	}
	avg := math.NaN()
	if s.count > 0 {
		avg = s.sum / float64(s.count)
	}
	for j := 0; j < s.members; j++ {
		out = append(out, avg)
	}
	*s = segment{}
	return out
}

// Average replaces every sample with the mean of its segment. A positive
// pulse closes the current segment after its own sample; the trailing open
// segment is closed after the last index. Slices shorter than length are
// aligned to the newest sample, missing positions count as absent (NaN):
// absent values are left out of the mean, absent pulses are no watering.
func Average(values, pulses []float64, length int) []float64 {
	return AverageChannels([][]float64{values}, [][]float64{pulses}, length)[0]
}

// AverageChannels runs Average for several channels in lock-step. Each
// channel keeps its own running state; pulses[ch] closes segments of
// values[ch] only.
func AverageChannels(values, pulses [][]float64, length int) [][]float64 {
	if length < 0 {
		length = 0
	}
	segs := make([]segment, len(values))
	out := make([][]float64, len(values))
	for ch := range out {
		out[ch] = make([]float64, 0, length)
	}

	for i := 0; i < length; i++ {
		for ch := range values {
			segs[ch].add(sampleAt(values[ch], length, i))
			var p []float64
			if ch < len(pulses) {
				p = pulses[ch]
			}
			if sampleAt(p, length, i) > 0 {
				out[ch] = segs[ch].close(out[ch])
			}
		}
	}

	for ch := range segs {
		if segs[ch].members > 0 {
			out[ch] = segs[ch].close(out[ch])
		}
	}
	return out
}

// sampleAt reads position i of a window of the given length from s, which is
// right-aligned so that its last element is the newest sample.
func sampleAt(s []float64, length, i int) float64 {
	j := i - (length - len(s))
	if j < 0 || j >= len(s) {
		return math.NaN()
	}
	return s[j]
}
