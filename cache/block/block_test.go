package block

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/filearray/cache"
	"github.com/meigma/filearray/internal/testutil"
)

func newDigits(t *testing.T, opts ...Option) (*Cache, string) {
	t.Helper()

	path := testutil.TempFile(t, []byte(testutil.Digits))
	c, err := New(path, append([]Option{WithBlockSize(4)}, opts...)...)
	require.NoError(t, err)
	return c, path
}

func TestTenByteScenario(t *testing.T) {
	t.Parallel()

	c, path := newDigits(t)

	b, err := c.Get(5)
	require.NoError(t, err)
	assert.Equal(t, byte('5'), b)
	assert.Equal(t, []byte("4567"), c.blocks[1])

	require.NoError(t, c.Set(5, 'X'))
	assert.Equal(t, []byte("45X7"), c.blocks[1])
	assert.Equal(t, []byte("012345X789"), testutil.ReadFile(t, path))

	b, err = c.Get(4)
	require.NoError(t, err)
	assert.Equal(t, byte('4'), b)

	b, err = c.Get(6)
	require.NoError(t, err)
	assert.Equal(t, byte('7'), b)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(3), stats.Hits)
	assert.Equal(t, 1, stats.Entries)
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	c, err := New(testutil.TempFile(t, []byte(testutil.Digits)))
	require.NoError(t, err)
	assert.Equal(t, cache.DefaultBlockSize, c.BlockSize())
	assert.Equal(t, cache.DefaultWarmConcurrency, c.WarmConcurrency())

	length, ok := c.Len()
	require.True(t, ok)
	assert.Equal(t, int64(10), length)

	// A single block covers the whole file.
	b, err := c.Get(9)
	require.NoError(t, err)
	assert.Equal(t, byte('9'), b)
	assert.Len(t, c.blocks[0], 10)
}

func TestFinalBlockIsShort(t *testing.T) {
	t.Parallel()

	c, _ := newDigits(t)

	b, err := c.Get(9)
	require.NoError(t, err)
	assert.Equal(t, byte('9'), b)
	assert.Equal(t, []byte("89"), c.blocks[2])
}

func TestOutOfRange(t *testing.T) {
	t.Parallel()

	c, _ := newDigits(t)

	_, err := c.Get(10)
	require.ErrorIs(t, err, cache.ErrOutOfRange)
	_, err = c.Get(-1)
	require.ErrorIs(t, err, cache.ErrOutOfRange)
	require.ErrorIs(t, c.Set(10, 'x'), cache.ErrOutOfRange)
	_, err = c.GetRange(8, 11)
	require.ErrorIs(t, err, cache.ErrOutOfRange)
	require.ErrorIs(t, c.SetRange(9, []byte("ab")), cache.ErrOutOfRange)
	assert.Zero(t, c.Stats().Entries, "no block should load for rejected offsets")
}

func TestWriteReadCoherence(t *testing.T) {
	t.Parallel()

	path := testutil.TempFile(t, testutil.Pattern(100))
	c, err := New(path, WithBlockSize(7))
	require.NoError(t, err)

	for off := range int64(100) {
		want := byte(255 - off)
		require.NoError(t, c.Set(off, want))
		got, err := c.Get(off)
		require.NoError(t, err)
		assert.Equal(t, want, got, "offset %d", off)
	}
}

func TestWriteIsolation(t *testing.T) {
	t.Parallel()

	original := testutil.Pattern(64)
	path := testutil.TempFile(t, original)
	c, err := New(path, WithBlockSize(8))
	require.NoError(t, err)

	for _, off := range []int64{0, 7, 8, 31, 63} {
		require.NoError(t, c.Set(off, 0xEE))

		want := bytes.Clone(original)
		want[off] = 0xEE
		assert.Equal(t, want, testutil.ReadFile(t, path), "file after writing offset %d", off)

		got, err := c.GetRange(0, 64)
		require.NoError(t, err)
		assert.Equal(t, want, got, "cache after writing offset %d", off)

		// Restore so the next iteration checks a single change.
		require.NoError(t, c.Set(off, original[off]))
	}
}

func TestRangeRoundTrip(t *testing.T) {
	t.Parallel()

	c, path := newDigits(t)

	require.NoError(t, c.SetRange(2, []byte("abcdef")))
	got, err := c.GetRange(2, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), got)
	assert.Equal(t, []byte("01abcdef89"), testutil.ReadFile(t, path))

	empty, err := c.GetRange(3, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWriteFailureKeepsCachedBlock(t *testing.T) {
	t.Parallel()

	c, path := newDigits(t)

	_, err := c.Get(1)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	err = c.Set(1, 'Z')
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, []byte("0123"), c.blocks[0])
}

func TestSetRangeFailureKeepsWrittenPrefix(t *testing.T) {
	t.Parallel()

	c, path := newDigits(t)

	_, err := c.Get(0)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, 4))

	err = c.SetRange(2, []byte("abcd"))
	require.Error(t, err, "block 1 is no longer in the file")
	assert.Equal(t, []byte("01ab"), testutil.ReadFile(t, path))
	assert.Equal(t, []byte("01ab"), c.blocks[0])
}

func TestReadFailureLeavesCacheUnchanged(t *testing.T) {
	t.Parallel()

	c, path := newDigits(t)
	require.NoError(t, os.Remove(path))

	_, err := c.Get(0)
	require.ErrorIs(t, err, fs.ErrNotExist)
	assert.Zero(t, c.Stats().Entries)
}

func TestUnboundedByDefault(t *testing.T) {
	t.Parallel()

	path := testutil.TempFile(t, testutil.Pattern(256))
	c, err := New(path, WithBlockSize(2))
	require.NoError(t, err)

	for off := int64(0); off < 256; off += 2 {
		_, err := c.Get(off)
		require.NoError(t, err)
	}
	stats := c.Stats()
	assert.Equal(t, 128, stats.Entries)
	assert.Zero(t, stats.Evictions)
}

func TestMaxBlocksEvictsOldestInserted(t *testing.T) {
	t.Parallel()

	c, _ := newDigits(t, WithMaxBlocks(2))

	for _, off := range []int64{0, 4, 1, 8} {
		_, err := c.Get(off)
		require.NoError(t, err)
	}

	assert.NotContains(t, c.blocks, int64(0), "block 0 was inserted first")
	assert.Contains(t, c.blocks, int64(1))
	assert.Contains(t, c.blocks, int64(2))
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestExternalWritesNotObservedUntilReset(t *testing.T) {
	t.Parallel()

	c, path := newDigits(t)

	b, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, byte('0'), b)

	require.NoError(t, os.WriteFile(path, []byte("abcdefghij"), 0o600))

	b, err = c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, byte('0'), b, "stale cached block is served")

	c.Reset()
	b, err = c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, byte('a'), b)
}

func TestWarm(t *testing.T) {
	t.Parallel()

	c, _ := newDigits(t, WithWarmConcurrency(2))

	_, err := c.Get(0)
	require.NoError(t, err)

	n, err := c.Warm(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "block 0 was already cached")
	assert.Equal(t, []byte("4567"), c.blocks[1])
	assert.Equal(t, []byte("89"), c.blocks[2])

	before := c.Stats().Misses
	_, err = c.GetRange(0, 10)
	require.NoError(t, err)
	assert.Equal(t, before, c.Stats().Misses)

	n, err = c.Warm(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWarmRespectsMaxBlocks(t *testing.T) {
	t.Parallel()

	path := testutil.TempFile(t, testutil.Pattern(64))
	c, err := New(path, WithBlockSize(4), WithMaxBlocks(2))
	require.NoError(t, err)

	n, err := c.Warm(context.Background(), 0, 64)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Zero(t, stats.Evictions)
	assert.Contains(t, c.blocks, int64(0))
	assert.Contains(t, c.blocks, int64(1))

	n, err = c.Warm(context.Background(), 0, 64)
	require.NoError(t, err)
	assert.Zero(t, n, "the first blocks of the range are already cached")

	n, err = c.Warm(context.Background(), 40, 64)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, c.blocks, int64(10))
	assert.Contains(t, c.blocks, int64(11))
	assert.Equal(t, uint64(2), c.Stats().Evictions)
}

func TestWarmConcurrencyClamped(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -3} {
		c, _ := newDigits(t, WithWarmConcurrency(n))
		assert.Equal(t, 1, c.WarmConcurrency(), n)
	}
}

func TestWarmCanceledInstallsNothing(t *testing.T) {
	t.Parallel()

	c, _ := newDigits(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Warm(ctx, 0, 10)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, c.Stats().Entries)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	path := testutil.TempFile(t, []byte(testutil.Digits))

	_, err := New(path, WithBlockSize(0))
	require.ErrorIs(t, err, cache.ErrInvalidBlockSize)

	_, err = New(path + ".missing")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestEmptyFile(t *testing.T) {
	t.Parallel()

	c, err := New(testutil.TempFile(t, nil), WithBlockSize(4))
	require.NoError(t, err)

	_, err = c.Get(0)
	require.ErrorIs(t, err, cache.ErrOutOfRange)

	got, err := c.GetRange(0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
