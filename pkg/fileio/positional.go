// Package fileio provides the offset-addressed read/write primitives the
// rest of huginn is built on: read_at and write_at over an already-open
// file handle, plus a buffered reader that amortizes syscalls during
// sequential iteration.
package fileio

import "os"

// ReadAt reads into buf starting at the given absolute file offset,
// returning the number of bytes actually read. It does not move any
// shared cursor — concurrent ReadAt/WriteAt calls against the same file
// are independent of each other.
func ReadAt(f *os.File, buf []byte, offset int64) (int, error) {
	return f.ReadAt(buf, offset)
}

// WriteAt writes buf at the given absolute file offset.
func WriteAt(f *os.File, buf []byte, offset int64) (int, error) {
	return f.WriteAt(buf, offset)
}
