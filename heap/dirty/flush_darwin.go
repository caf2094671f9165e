//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges flushes the whole mapping. On macOS msync() requires the
// address the mapping was created with, so sub-slices are rejected; the
// kernel only writes pages that are actually dirty anyway.
func (t *Tracker) flushRanges(ctx context.Context, data []byte, ranges []Range) error {
	if len(ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return unix.Msync(data, unix.MS_SYNC)
}

func (t *Tracker) flushRange(data []byte, _ Range) error {
	return unix.Msync(data, unix.MS_SYNC)
}

// fdatasync uses F_FULLFSYNC when fullfsync is set, plain fsync otherwise.
// macOS has no fdatasync.
func fdatasync(fd int, fullfsync bool) error {
	if fullfsync {
		_, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(fd)
}
