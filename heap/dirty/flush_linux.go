//go:build linux

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges msyncs each merged range. Linux accepts sub-slices of a
// mapping as long as they start on a page boundary.
func (t *Tracker) flushRanges(ctx context.Context, data []byte, ranges []Range) error {
	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.flushRange(data, r); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) flushRange(data []byte, r Range) error {
	r, ok := clip(r, int64(len(data)))
	if !ok {
		return nil
	}
	return unix.Msync(data[r.Off:r.End()], unix.MS_SYNC)
}

// fdatasync syncs file data. fullfsync is a macOS notion and is ignored here.
func fdatasync(fd int, _ bool) error {
	return unix.Fdatasync(fd)
}
