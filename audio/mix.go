package audio

import "math"

// Mix combines two normalized tracks into one. The shorter track is
// padded with silence, then the channels are averaged to avoid clipping.
// Either input may be nil (failed track), in which case the other is
// returned as-is.
func Mix(a, b []int16) []int16 {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int16, n)
	for i := range out {
		var sa, sb int32
		if i < len(a) {
			sa = int32(a[i])
		}
		if i < len(b) {
			sb = int32(b[i])
		}
		out[i] = int16((sa + sb) / 2)
	}
	return out
}

// RMS of a sample window, normalized to [0, 1].
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		normalized := float64(s) / 32768.0
		sumSquares += normalized * normalized
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}
