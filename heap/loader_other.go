//go:build !linux && !darwin

package heap

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// load reads the first size bytes of the file into memory.
func (fr *File) load(size int64) error {
	data := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(fr.f, 0, size), data); err != nil {
		return err
	}
	fr.data = data
	fr.size = size
	return nil
}

// Grow extends the file by n zeroed bytes.
func (fr *File) Grow(n int64) (int64, error) {
	if fr == nil || fr.f == nil {
		return 0, ErrClosed
	}
	base := fr.size
	if err := checkGrow(base, n, fr.limit); err != nil {
		return 0, err
	}
	if err := fr.f.Truncate(base + n); err != nil {
		return 0, fmt.Errorf("%w: truncate file: %w", ErrGrowFail, err)
	}
	fr.data = append(fr.data, make([]byte, n)...)
	fr.size = base + n
	return base, nil
}

// WriteBack writes data[off:off+n] to the backing file.
func (fr *File) WriteBack(off, n int64) error {
	if fr == nil || fr.f == nil {
		return ErrClosed
	}
	if off < 0 || n < 0 || off+n > fr.size {
		return fmt.Errorf("heap: write back [%d,+%d) outside region of %d bytes", off, n, fr.size)
	}
	_, err := fr.f.WriteAt(fr.data[off:off+n], off)
	return err
}

// Sync writes the whole region back and syncs the file.
func (fr *File) Sync(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fr.WriteBack(0, fr.size); err != nil {
		return err
	}
	return fr.f.Sync()
}

// Close writes the region back and closes the file.
func (fr *File) Close() error {
	if fr == nil || fr.f == nil {
		return nil
	}
	err := fr.WriteBack(0, fr.size)
	err = errors.Join(err, fr.f.Close())
	fr.f = nil
	fr.data = nil
	return err
}
