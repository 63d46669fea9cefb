package filearray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/filearray/internal/testutil"
)

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()

	path := testutil.TempFile(t, []byte("hello, world"))
	a, err := Open(path, WithMode(ModeText), WithBlockSize(4))
	require.NoError(t, err)
	assert.Equal(t, ModeText, a.Mode())

	require.NoError(t, a.SetText(7, "wörl"))
	got, err := a.GetText(0, 12)
	require.NoError(t, err)
	assert.Equal(t, "hello, wörl", got)
}

func TestTextRejectsInvalidUTF8(t *testing.T) {
	t.Parallel()

	path := testutil.TempFile(t, []byte("ab\xffcd"))
	a, err := OpenBytes(path, WithMode(ModeText))
	require.NoError(t, err)

	_, err = a.GetText(0, 5)
	require.ErrorIs(t, err, ErrInvalidText)

	text, err := a.GetText(3, 5)
	require.NoError(t, err)
	assert.Equal(t, "cd", text)

	err = a.SetText(0, "\xfe")
	require.ErrorIs(t, err, ErrInvalidText)
	assert.Equal(t, []byte("ab\xffcd"), testutil.ReadFile(t, path))
}

func TestTextRequiresTextMode(t *testing.T) {
	t.Parallel()

	a, _ := openDigits(t, Open)
	assert.Equal(t, ModeBinary, a.Mode())

	_, err := a.GetText(0, 2)
	require.ErrorIs(t, err, ErrBinaryMode)
	require.ErrorIs(t, a.SetText(0, "ab"), ErrBinaryMode)
}

func TestModeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "binary", ModeBinary.String())
	assert.Equal(t, "text", ModeText.String())
	assert.Equal(t, "unknown", Mode(9).String())
}
