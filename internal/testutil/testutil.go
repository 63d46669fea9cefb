// Package testutil provides shared fixtures for filearray tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Digits is the ten-byte fixture used by most scenario tests.
const Digits = "0123456789"

// TempFile writes content to a new file under tb.TempDir and returns its path.
func TempFile(tb testing.TB, content []byte) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "data.bin")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		tb.Fatalf("write fixture: %v", err)
	}
	return path
}

// ReadFile returns the current content of path, failing the test on error.
func ReadFile(tb testing.TB, path string) []byte {
	tb.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	if err != nil {
		tb.Fatalf("read fixture: %v", err)
	}
	return data
}

// Pattern returns n bytes cycling through 0..255.
func Pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}
