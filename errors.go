package filearray

import (
	"errors"

	"github.com/meigma/filearray/cache"
)

var (
	// ErrInvalidKey is returned when a key is nil or not a well-formed range.
	ErrInvalidKey = errors.New("filearray: invalid key")

	// ErrUnsupportedStep is returned when a range requests a non-unit stride.
	ErrUnsupportedStep = errors.New("filearray: range step not supported")

	// ErrLengthMismatch is returned when the data for a write does not match
	// the length of the addressed range.
	ErrLengthMismatch = errors.New("filearray: length mismatch")

	// ErrBinaryMode is returned when a text accessor is used on an Array
	// opened in binary mode.
	ErrBinaryMode = errors.New("filearray: text access on binary array")

	// ErrInvalidText is returned when text read or written is not valid UTF-8.
	ErrInvalidText = errors.New("filearray: invalid UTF-8 text")
)

// Errors re-exported from cache.
var (
	// ErrOutOfRange is returned when an offset lies outside the tracked file length.
	ErrOutOfRange = cache.ErrOutOfRange

	// ErrInvalidBlockSize is returned when a block size is not positive.
	ErrInvalidBlockSize = cache.ErrInvalidBlockSize

	// ErrInvalidCacheSize is returned when a cache size is not positive.
	ErrInvalidCacheSize = cache.ErrInvalidCacheSize
)
