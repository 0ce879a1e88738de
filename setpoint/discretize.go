package setpoint

import "math"

// Discretize maps every value to a bucket in [0, divisions].
//
// Values inside (min, max) use round((x-min)*divisions/max). The denominator is max, not max-min;
// charts with a non-zero min depend on this, so it must not be "fixed" here.
func Discretize(divisions, max, min float64, values []float64) []int {
	divs := int(math.Round(divisions))
	if divs < 0 {
		divs = 0
	}

	out := make([]int, len(values))

	for idx, x := range values {
		out[idx] = bucketOf(divs, max, min, x)
	}

	return out
}

func bucketOf(divs int, max, min, x float64) int {
	if x >= max {
		return divs
	}

	if x <= min {
		return 0
	}

	v := math.Round((x - min) * float64(divs) / max)

	// min < 0 or max <= 0 can push the formula outside the bucket range
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	if v > float64(divs) {
		return divs
	}

	return int(v)
}

func (axis Axis) Bucket(x float64) int {
	divs := int(math.Round(axis.Divisions))
	if divs < 0 {
		divs = 0
	}

	return bucketOf(divs, axis.Max, axis.Min, x)
}

func (axis Axis) Buckets(xs []float64) []int {
	return Discretize(axis.Divisions, axis.Max, axis.Min, xs)
}
