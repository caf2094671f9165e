package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/verify"
)

var (
	// ErrNoSlot indicates a write or check of a slot that holds no allocation.
	ErrNoSlot = errors.New("trace: slot not allocated")

	// ErrMismatch indicates a check found an unexpected byte.
	ErrMismatch = errors.New("trace: content mismatch")
)

// Options controls Replay.
type Options struct {
	// VerifyEach runs verify.AllInvariants on the region after every op.
	VerifyEach bool
	Logger     *slog.Logger
}

// Result summarizes a replay.
type Result struct {
	Ops      int
	Allocs   int
	Frees    int
	Reallocs int
	Writes   int
	Checks   int
	Live     int // slots holding an allocation at the end
}

// Replay runs ops against a in order. It stops at the first failing op; the
// returned error names its line. Slots that never held an allocation act as
// Nil, so "f x" of an unknown x frees Nil and "r x n" allocates.
func Replay(ctx context.Context, a *alloc.Allocator, ops []Op, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	slots := map[string]alloc.Ptr{}
	var res Result

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := apply(a, slots, op, &res); err != nil {
			log.Debug("replay stopped", "line", op.Line, "op", op.Kind.String(), "err", err)
			return res, fmt.Errorf("line %d: %s %s: %w", op.Line, op.Kind, op.ID, err)
		}
		res.Ops++
		if opts.VerifyEach {
			if err := verify.AllInvariants(a.Region().Bytes()); err != nil {
				return res, fmt.Errorf("line %d: after %s %s: %w", op.Line, op.Kind, op.ID, err)
			}
		}
	}

	for _, p := range slots {
		if !p.IsNil() {
			res.Live++
		}
	}
	log.Debug("replay done", "ops", res.Ops, "live", res.Live)
	return res, nil
}

func apply(a *alloc.Allocator, slots map[string]alloc.Ptr, op Op, res *Result) error {
	switch op.Kind {
	case Alloc:
		res.Allocs++
		p, err := a.Malloc(op.Size)
		if err != nil {
			return err
		}
		slots[op.ID] = p

	case Free:
		res.Frees++
		if err := a.Free(slots[op.ID]); err != nil {
			return err
		}
		delete(slots, op.ID)

	case Realloc:
		res.Reallocs++
		p, err := a.Realloc(slots[op.ID], op.Size)
		if err != nil {
			return err
		}
		slots[op.ID] = p

	case Write, Check:
		p := slots[op.ID]
		if p.IsNil() {
			return ErrNoSlot
		}
		payload, err := a.Payload(p)
		if err != nil {
			return err
		}
		if op.Kind == Write {
			res.Writes++
			for i := range payload {
				payload[i] = op.Byte
			}
			return nil
		}
		res.Checks++
		for i, b := range payload {
			if b != op.Byte {
				return fmt.Errorf("%w: byte %d is 0x%02X, want 0x%02X", ErrMismatch, i, b, op.Byte)
			}
		}

	default:
		return fmt.Errorf("unknown operation %s", op.Kind)
	}
	return nil
}
