package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/internal/config"
	"github.com/joshuapare/heapkit/internal/logger"
	"github.com/joshuapare/heapkit/internal/trace"
)

var (
	runFile       string
	runLimit      string
	runStrict     bool
	runInPlace    bool
	runVerifyEach bool
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace>",
		Short: "Replay an allocation trace",
		Long: `The run command replays an allocation trace script against a fresh heap
and prints a summary of the operations, growth and final block usage.

Example:
  heapctl run workload.trace
  heapctl run workload.trace --file heap.bin --limit 64MiB
  heapctl run workload.trace --in-place --verify-each --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyRunFlags(cmd.Flags(), &cfg.Heap)
			return runRun(cmd.Context(), cfg.Heap, args)
		},
	}
	cmd.Flags().StringVar(&runFile, "file", "", "Back the heap with this file (created or truncated)")
	cmd.Flags().StringVar(&runLimit, "limit", "", "Cap the heap size, e.g. 64MiB")
	cmd.Flags().BoolVar(&runStrict, "strict", false, "Fail on frees of unknown pointers")
	cmd.Flags().BoolVar(&runInPlace, "in-place", false, "Resize blocks in place when possible")
	cmd.Flags().BoolVar(&runVerifyEach, "verify-each", false, "Check heap invariants after every operation")
	return cmd
}

// applyRunFlags copies explicitly set flags over the configured values.
func applyRunFlags(fs *pflag.FlagSet, h *config.Heap) {
	if fs.Changed("file") {
		h.File = runFile
	}
	if fs.Changed("limit") {
		h.Limit = runLimit
	}
	if fs.Changed("strict") {
		h.Strict = runStrict
	}
	if fs.Changed("in-place") {
		h.InPlace = runInPlace
	}
	if fs.Changed("verify-each") {
		h.VerifyEach = runVerifyEach
	}
}

// RunSummary is the JSON form of a run.
type RunSummary struct {
	Trace    string        `json:"trace"`
	File     string        `json:"file,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Replay   trace.Result  `json:"replay"`
	Stats    alloc.Stats   `json:"stats"`
	Usage    alloc.Usage   `json:"usage"`
	Complete bool          `json:"complete"`
	Error    string        `json:"error,omitempty"`
}

func runRun(ctx context.Context, h config.Heap, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	tracePath := args[0]
	limit, err := h.LimitBytes()
	if err != nil {
		return err
	}

	printVerbose("Parsing trace: %s\n", tracePath)
	ops, err := trace.ParseFile(tracePath)
	if err != nil {
		return err
	}

	var (
		region heap.Region
		file   *heap.File
		opts   = []alloc.Option{alloc.WithLogger(logger.L)}
	)
	if h.File != "" {
		printVerbose("Creating heap file: %s\n", h.File)
		if file, err = heap.Create(h.File, limit); err != nil {
			return err
		}
		defer file.Close()
		region = file
	} else {
		region = heap.NewMemory(limit)
	}
	var tracker *dirty.Tracker
	if file != nil {
		tracker = dirty.NewTracker(file)
		opts = append(opts, alloc.WithDirtyTracker(tracker))
	}
	if h.Strict {
		opts = append(opts, alloc.WithStrict())
	}
	if h.InPlace {
		opts = append(opts, alloc.WithInPlaceResize())
	}

	a, err := alloc.New(region, opts...)
	if err != nil {
		return err
	}

	start := time.Now()
	res, replayErr := trace.Replay(ctx, a, ops, trace.Options{
		VerifyEach: h.VerifyEach,
		Logger:     logger.L,
	})
	elapsed := time.Since(start)
	logger.Info("replay", "trace", tracePath, "ops", res.Ops, "elapsed", elapsed, "err", replayErr)

	if tracker != nil {
		if err := tracker.Flush(ctx, dirty.FlushAuto); err != nil {
			return errors.Join(replayErr, fmt.Errorf("flush %s: %w", h.File, err))
		}
	}

	usage, err := a.Usage()
	if err != nil {
		return errors.Join(replayErr, err)
	}

	summary := RunSummary{
		Trace:    tracePath,
		File:     h.File,
		Elapsed:  elapsed,
		Replay:   res,
		Stats:    a.Stats(),
		Usage:    usage,
		Complete: replayErr == nil,
	}
	if replayErr != nil {
		summary.Error = replayErr.Error()
	}

	if jsonOut {
		if err := printJSON(summary); err != nil {
			return err
		}
		return replayErr
	}

	printRunSummary(summary)
	return replayErr
}

func printRunSummary(s RunSummary) {
	printInfo("Trace: %s\n", s.Trace)
	if s.File != "" {
		printInfo("Heap file: %s\n", s.File)
	}
	printInfo("Operations: %s in %s\n", formatNumber(int64(s.Replay.Ops)), s.Elapsed.Round(time.Microsecond))
	printInfo("  malloc %s  free %s  realloc %s  write %s  check %s\n",
		formatNumber(int64(s.Replay.Allocs)), formatNumber(int64(s.Replay.Frees)),
		formatNumber(int64(s.Replay.Reallocs)), formatNumber(int64(s.Replay.Writes)),
		formatNumber(int64(s.Replay.Checks)))
	printInfo("Growth: %s calls, %s\n", formatNumber(int64(s.Stats.GrowCalls)), formatBytes(s.Stats.GrowBytes))
	printVerbose("  reuse %d  split %d  coalesce fwd %d / back %d  in-place %d  ignored frees %d\n",
		s.Stats.ReuseCount, s.Stats.SplitCount, s.Stats.CoalesceForward,
		s.Stats.CoalesceBackward, s.Stats.InPlaceResizes, s.Stats.IgnoredFrees)
	printUsage(s.Usage)
	printInfo("Live slots: %d\n", s.Replay.Live)
}

func printUsage(u alloc.Usage) {
	printInfo("Region: %s (%s bytes)\n", formatBytes(u.RegionBytes), formatNumber(u.RegionBytes))
	printInfo("Blocks: %s (%s free)\n", formatNumber(int64(u.Blocks)), formatNumber(int64(u.FreeBlocks)))
	printInfo("  used %s  free %s  headers %s\n",
		formatBytes(u.UsedBytes), formatBytes(u.FreeBytes), formatBytes(u.HeaderBytes))
	printInfo("  largest free %s  fragmentation %.1f%%\n", formatBytes(u.LargestFree), u.Fragmentation*100)
}
