package signals

import (
	"math"
	"sort"
)

// quantile returns the q-th quantile of the non-NaN values using linear
// interpolation between closest ranks. NaN is returned when no values remain.
func quantile(values []float64, q float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)

	pos := q * float64(len(clean)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return clean[lo]
	}
	frac := pos - float64(lo)
	return clean[lo] + (clean[hi]-clean[lo])*frac
}

// median is the 0.5 quantile.
func median(values []float64) float64 {
	return quantile(values, 0.5)
}

// pearson computes the correlation of x and y over the positions where both
// are present. NaN is returned for fewer than two observations or zero variance.
func pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}

	var xs, ys []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	mx, my := mean(xs), mean(ys)
	var sxx, syy, sxy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}

	c := sxy / math.Sqrt(sxx*syy)
	// Rounding can push a perfect fit just past ±1.
	return math.Max(-1, math.Min(1, c))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// lessNaNLast orders a before b for a sort in the given direction,
// always placing NaN after real values.
func lessNaNLast(a, b float64, descending bool) bool {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return false
	case aNaN:
		return false
	case bNaN:
		return true
	case descending:
		return a > b
	default:
		return a < b
	}
}
