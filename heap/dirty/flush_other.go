//go:build !linux && !darwin

package dirty

import "context"

// flushRanges writes each merged range back through the region. Regions on
// these platforms are not mapped, so nothing reaches the file otherwise.
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
	wb, ok := t.t.(writeBacker)
	if !ok {
		return nil
	}
	r, ok = clip(r, int64(len(data)))
	if !ok {
		return nil
	}
	return wb.WriteBack(r.Off, r.Len)
}

// fdatasync is a no-op here; the region's Sync owns durability.
func fdatasync(int, bool) error { return nil }
