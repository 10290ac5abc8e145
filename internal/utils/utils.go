package utils

import (
	"math/bits"

	"golang.org/x/exp/slices"
)

// IsEqual - Returns true if a and b are equal both in size and contents
func IsEqual(a, b []byte) bool {
	return slices.Equal(a, b)
}

// Compare - Compares two records starting from the lowest addressed byte.
// The first differing byte decides, compared as unsigned values. If one is a prefix of the other the shorter
// one is less.
// It returns -1 if a is less than b, 1 if a is greater than b and 0 if they are equal
func Compare(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if a[i] > b[i] {
			return 1
		} else if a[i] < b[i] {
			return -1
		}
	}

	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// IsPowerOf2 - Returns true if a is a positive power of 2
func IsPowerOf2(a int64) bool {
	return a > 0 && a&(a-1) == 0
}

// Log2 - Returns the base 2 logarithm of a power of 2
func Log2(a int64) int64 {
	return int64(bits.TrailingZeros64(uint64(a)))
}
