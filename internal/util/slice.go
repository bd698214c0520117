package util

import (
	"golang.org/x/exp/constraints"
)

// IsStrictlyIncreasing reports whether each element of values is strictly
// greater than the one before it. Empty and single-element slices qualify.
func IsStrictlyIncreasing[T constraints.Ordered](values []T) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] >= values[i] {
			return false
		}
	}
	return true
}
