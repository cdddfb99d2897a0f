package util

import "math"

// Percent returns round(100*part/total), or 0 when total is 0.
// Halves round away from zero.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
