package stats

import "math"

// Bin is one histogram bucket covering [Lower, Upper); the last bin also
// includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits the non-NaN values into equal-width bins over their range.
// A constant sample gets bins centered on the value.
func Histogram(values []float64, bins int) []Bin {
	xs := dropNaN(values)
	if len(xs) == 0 {
		return nil
	}
	if bins < 1 {
		bins = 1
	}

	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range xs {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		if i < 0 {
			i = 0
		}
		out[i].Count++
	}
	return out
}
