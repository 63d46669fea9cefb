package filearray

import "fmt"

// Key addresses either a single byte (Offset) or a contiguous range (Range).
// It is implemented only by Offset and Range.
type Key interface {
	isKey()
}

// Offset addresses the single byte at a zero-based position.
type Offset int64

func (Offset) isKey() {}

// Range addresses the bytes in [Start, Stop).
//
// Step is part of the request so callers can express a stride, but only unit
// stride is implemented: Step 0 and 1 both mean contiguous, and any other
// value is rejected with ErrUnsupportedStep.
type Range struct {
	Start int64
	Stop  int64
	Step  int64
}

func (Range) isKey() {}

// Len returns the number of bytes the range covers, or 0 if it is malformed.
func (r Range) Len() int64 {
	if r.Stop < r.Start {
		return 0
	}
	return r.Stop - r.Start
}

func (r Range) String() string {
	if r.Step == 0 || r.Step == 1 {
		return fmt.Sprintf("[%d:%d]", r.Start, r.Stop)
	}
	return fmt.Sprintf("[%d:%d:%d]", r.Start, r.Stop, r.Step)
}

// validate checks step, then shape, then the tracked length bound.
func (r Range) validate(length int64, tracked bool) error {
	if r.Step != 0 && r.Step != 1 {
		return fmt.Errorf("%w: %s", ErrUnsupportedStep, r)
	}
	if r.Start < 0 || r.Stop < r.Start {
		return fmt.Errorf("%w: range %s", ErrInvalidKey, r)
	}
	if tracked && r.Stop > length {
		return fmt.Errorf("%w: %s (length %d)", ErrOutOfRange, r, length)
	}
	return nil
}
