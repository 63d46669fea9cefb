// Package sizing provides safe offset arithmetic and conversions to prevent overflow.
package sizing

import (
	"errors"
	"math"
)

// ErrOverflow is returned when an offset or length computation overflows.
var ErrOverflow = errors.New("sizing: overflow")

// ToInt converts an int64 length to int, returning ErrOverflow if it doesn't fit.
func ToInt(n int64) (int, error) {
	if n < 0 || n > int64(math.MaxInt) {
		return 0, ErrOverflow
	}
	return int(n), nil
}

// MulInt64 multiplies two non-negative int64 values, returning (result, false) on overflow.
func MulInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, false
	}
	return a * b, true
}

// AddInt64 adds two non-negative int64 values, returning (result, false) on overflow.
func AddInt64(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
