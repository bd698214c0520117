package util

// Coerce returns the given value, limited to the range [min, max].
func Coerce(value int, min int, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
