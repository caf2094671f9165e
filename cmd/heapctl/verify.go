package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/verify"
	"github.com/joshuapare/heapkit/internal/logger"
)

// ErrInvalidHeap is returned by verify when a check fails, so the process
// exits non-zero after the report is printed.
var ErrInvalidHeap = errors.New("heap failed verification")

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <heap.bin>",
		Short: "Check the structural invariants of a heap file",
		Long: `The verify command checks the base block (signature, version, checksum),
the recorded data size, and the block list: address order, prev/next links,
head and tail, block count, alignment, and that no two neighbouring blocks
are both free.

Example:
  heapctl verify heap.bin
  heapctl verify heap.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
}

// VerifyResult is the JSON form of a verification.
type VerifyResult struct {
	Path    string         `json:"path"`
	Valid   bool           `json:"valid"`
	Type    string         `json:"type,omitempty"`
	Offset  int64          `json:"offset,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func runVerify(args []string) error {
	path := args[0]
	return withHeapFile(path, func(data []byte) error {
		res := VerifyResult{Path: path, Valid: true}
		if err := verify.AllInvariants(data); err != nil {
			res.Valid = false
			res.Message = err.Error()
			var verr *verify.ValidationError
			if errors.As(err, &verr) {
				res.Type, res.Offset, res.Message, res.Details = verr.Type, verr.Offset, verr.Message, verr.Details
			}
			logger.Warn("verify failed", "path", path, "err", err)
		}

		if jsonOut {
			if err := printJSON(res); err != nil {
				return err
			}
		} else if res.Valid {
			printInfo("%s: OK (%s)\n", path, formatBytes(int64(len(data))))
		} else {
			printInfo("%s: INVALID\n", path)
			printInfo("  %s\n", res.Message)
		}

		if !res.Valid {
			return fmt.Errorf("%s: %w", path, ErrInvalidHeap)
		}
		return nil
	})
}
