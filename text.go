package filearray

import (
	"fmt"
	"unicode/utf8"
)

// GetText returns [start, stop) as a string. The Array must be in ModeText
// and the bytes must be valid UTF-8.
func (a *Array) GetText(start, stop int64) (string, error) {
	if a.mode != ModeText {
		return "", ErrBinaryMode
	}
	data, err := a.GetRange(start, stop)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: [%d:%d]", ErrInvalidText, start, stop)
	}
	return string(data), nil
}

// SetText writes s starting at start. The Array must be in ModeText and s
// must be valid UTF-8; both are checked before any write.
func (a *Array) SetText(start int64, s string) error {
	if a.mode != ModeText {
		return ErrBinaryMode
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: write at %d", ErrInvalidText, start)
	}
	return a.SetRange(start, start+int64(len(s)), []byte(s))
}
