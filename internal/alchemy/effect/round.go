package effect

import "math"

// Round converts x to an integer count. Integral values are kept; a
// fractional part of at most 0.5 floors and anything larger ceils. The
// fraction is measured from floor(x), so -2.5 rounds to -3 and -2.4 to -2.
func Round(x float64) int {
	floor := math.Floor(x)
	fraction := x - floor
	switch {
	case fraction == 0:
		return int(x)
	case fraction <= 0.5:
		return int(floor)
	default:
		return int(math.Ceil(x))
	}
}
