package main

import (
	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <heap.bin>",
		Short: "Show usage and block size distribution",
		Long: `The stats command summarizes a heap file: region size, block counts,
used and free bytes, fragmentation, and the distribution of payload sizes
for allocated and free blocks.

Example:
  heapctl stats heap.bin
  heapctl stats heap.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
}

// SizeDistribution summarizes a set of payload sizes.
type SizeDistribution struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// HeapStats is the JSON form of the stats command.
type HeapStats struct {
	Path  string           `json:"path"`
	Usage alloc.Usage      `json:"usage"`
	Used  SizeDistribution `json:"used"`
	Free  SizeDistribution `json:"free"`
}

func runStats(args []string) error {
	path := args[0]
	return withHeapFile(path, func(data []byte) error {
		if _, err := heap.ParseBaseBlock(data); err != nil {
			return err
		}
		usage, err := alloc.UsageOf(data)
		if err != nil {
			return err
		}

		var used, free stats.Float64Data
		err = alloc.WalkData(data, func(b alloc.Block) error {
			if b.Free {
				free = append(free, float64(b.Size))
			} else {
				used = append(used, float64(b.Size))
			}
			return nil
		})
		if err != nil {
			return err
		}

		hs := HeapStats{Path: path, Usage: usage}
		if hs.Used, err = distribution(used); err != nil {
			return err
		}
		if hs.Free, err = distribution(free); err != nil {
			return err
		}

		if jsonOut {
			return printJSON(hs)
		}

		printInfo("Heap: %s\n", path)
		printUsage(usage)
		printDistribution("Allocated", hs.Used)
		printDistribution("Free", hs.Free)
		return nil
	})
}

// distribution computes summary statistics; an empty set is all zeroes.
func distribution(data stats.Float64Data) (SizeDistribution, error) {
	d := SizeDistribution{Count: data.Len()}
	if d.Count == 0 {
		return d, nil
	}
	var err error
	if d.Min, err = stats.Min(data); err != nil {
		return d, err
	}
	if d.Max, err = stats.Max(data); err != nil {
		return d, err
	}
	if d.Mean, err = stats.Mean(data); err != nil {
		return d, err
	}
	if d.Median, err = stats.Median(data); err != nil {
		return d, err
	}
	if d.P90, err = stats.Percentile(data, 90); err != nil {
		return d, err
	}
	if d.P99, err = stats.Percentile(data, 99); err != nil {
		return d, err
	}
	return d, nil
}

func printDistribution(label string, d SizeDistribution) {
	printInfo("%s block sizes (%s):\n", label, formatNumber(int64(d.Count)))
	if d.Count == 0 {
		printInfo("  none\n")
		return
	}
	printInfo("  min %s  median %s  mean %s  p90 %s  p99 %s  max %s\n",
		formatBytes(int64(d.Min)), formatBytes(int64(d.Median)), formatBytes(int64(d.Mean)),
		formatBytes(int64(d.P90)), formatBytes(int64(d.P99)), formatBytes(int64(d.Max)))
}
