// Package fileio provides scoped, positioned access to a file on disk.
//
// No handle is held between calls: every operation opens the file, seeks,
// reads or writes, and closes it again before returning, including on error
// paths.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// File addresses an existing file by path.
type File struct {
	path string
}

// New returns a File for path. The file must already exist and be a regular file.
func New(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("fileio: path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, &os.PathError{Op: "open", Path: path, Err: errors.New("not a regular file")}
	}
	return &File{path: path}, nil
}

// Path returns the path the File was created with.
func (f *File) Path() string {
	return f.path
}

// Size returns the current length of the file by seeking to its end.
func (f *File) Size() (int64, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return 0, err
	}
	defer fh.Close()

	size, err := fh.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek end: %w", err)
	}
	return size, nil
}

// ReadAt reads exactly n bytes starting at off.
//
// If the file ends before off, ReadAt returns io.EOF. If it ends after off but
// before off+n, the bytes that were available are returned together with
// io.ErrUnexpectedEOF.
func (f *File) ReadAt(off int64, n int) ([]byte, error) {
	if off < 0 {
		return nil, fmt.Errorf("read at %d: negative offset", off)
	}
	if n < 0 {
		return nil, fmt.Errorf("read length %d: negative length", n)
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	if _, err := fh.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %d: %w", off, err)
	}
	// n is caller-supplied and may far exceed the file, so the buffer grows
	// with what is actually read instead of being allocated up front.
	buf, err := io.ReadAll(io.LimitReader(fh, int64(n)))
	if err != nil {
		return buf, err
	}
	switch {
	case len(buf) == n:
		return buf, nil
	case len(buf) == 0:
		return buf, io.EOF
	default:
		return buf, io.ErrUnexpectedEOF
	}
}

// WriteAt writes data in place starting at off. The file is never created,
// truncated, or opened for append.
func (f *File) WriteAt(off int64, data []byte) (err error) {
	if off < 0 {
		return fmt.Errorf("write at %d: negative offset", off)
	}
	fh, err := os.OpenFile(f.path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := fh.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	if _, err := fh.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("seek %d: %w", off, err)
	}
	if _, err := fh.Write(data); err != nil {
		return err
	}
	return nil
}
