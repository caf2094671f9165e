//go:build linux || darwin

package heap

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func mapFile(fd int, size int64) ([]byte, error) {
	return unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// load maps the first size bytes of the file.
func (fr *File) load(size int64) error {
	data, err := mapFile(fr.FD(), size)
	if err != nil {
		return fmt.Errorf("mmap failed: %w", err)
	}
	fr.data = data
	fr.size = size
	return nil
}

// Grow extends the file by n bytes and remaps it. The kernel zero-fills the
// new bytes.
func (fr *File) Grow(n int64) (int64, error) {
	if fr == nil || fr.f == nil {
		return 0, ErrClosed
	}
	base := fr.size
	if err := checkGrow(base, n, fr.limit); err != nil {
		return 0, err
	}
	newSize := base + n

	if fr.data != nil {
		if err := unix.Munmap(fr.data); err != nil {
			return 0, fmt.Errorf("%w: unmap before grow: %w", ErrGrowFail, err)
		}
		fr.data = nil
	}

	if err := fr.f.Truncate(newSize); err != nil {
		fr.remapOld()
		return 0, fmt.Errorf("%w: truncate file: %w", ErrGrowFail, err)
	}

	data, err := mapFile(fr.FD(), newSize)
	if err != nil {
		// put the file back the way it was so the region really is unchanged
		_ = fr.f.Truncate(base)
		fr.remapOld()
		return 0, fmt.Errorf("%w: remap after grow: %w", ErrGrowFail, err)
	}
	fr.data = data
	fr.size = newSize
	return base, nil
}

// remapOld restores the mapping at the current size after a failed grow.
func (fr *File) remapOld() {
	if fr.size == 0 {
		return
	}
	data, _ := mapFile(fr.FD(), fr.size)
	fr.data = data
}

// Sync flushes the whole mapping and the file metadata to disk.
func (fr *File) Sync(ctx context.Context) error {
	if fr == nil || fr.f == nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fr.data) > 0 {
		if err := unix.Msync(fr.data, unix.MS_SYNC); err != nil {
			return fmt.Errorf("heap: msync: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fr.f.Sync()
}

// Close unmaps and closes the file.
func (fr *File) Close() error {
	if fr == nil || fr.f == nil {
		return nil
	}
	var errs []error
	if fr.data != nil {
		if err := unix.Munmap(fr.data); err != nil && !errors.Is(err, unix.EINVAL) {
			errs = append(errs, err)
		}
		fr.data = nil
	}
	errs = append(errs, fr.f.Close())
	fr.f = nil
	return errors.Join(errs...)
}
