package heap

import (
	"fmt"
	"os"
)

// File is a Region backed by a file on disk. On linux and darwin the file is
// mapped read/write and shared, so every write lands in the page cache
// directly; elsewhere the contents are held in memory and written back on
// Sync and Close.
type File struct {
	f     *os.File
	path  string
	data  []byte
	size  int64
	limit int64
}

// Path returns the backing file path.
func (fr *File) Path() string { return fr.path }

// Bytes returns the mapped contents.
func (fr *File) Bytes() []byte { return fr.data }

// Size returns the current region length.
func (fr *File) Size() int64 { return fr.size }

// Limit returns the configured size cap (0 = unlimited).
func (fr *File) Limit() int64 { return fr.limit }

// FD returns the backing file descriptor, or -1 once closed.
func (fr *File) FD() int {
	if fr == nil || fr.f == nil {
		return -1
	}
	return int(fr.f.Fd())
}

// Create creates (or truncates) the file at path and returns an empty region
// backed by it. limit caps the region size; 0 means only MaxRegionSize applies.
func Create(path string, limit int64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	return &File{f: f, path: path, limit: limit}, nil
}

// Open opens an existing heap file. The base block must validate and its data
// size must match the file size.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.Size() == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("%w: empty heap file: %s", ErrBadBaseBlock, path)
	}

	fr := &File{f: f, path: path}
	if err := fr.load(st.Size()); err != nil {
		_ = f.Close()
		return nil, err
	}

	bb, err := ParseBaseBlock(fr.data)
	if err != nil {
		_ = fr.Close()
		return nil, err
	}
	if err := bb.ValidateSanity(len(fr.data)); err != nil {
		_ = fr.Close()
		return nil, err
	}
	return fr, nil
}
