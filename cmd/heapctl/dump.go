package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
)

var dumpFreeOnly bool

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpFreeOnly, "free-only", false, "List only free blocks")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <heap.bin>",
		Short: "List the blocks of a heap file",
		Long: `The dump command walks the block list of a heap file in address order
and prints each block's header offset, payload address, payload size and state.

Example:
  heapctl dump heap.bin
  heapctl dump heap.bin --free-only --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
}

// DumpBlock is the JSON form of one block.
type DumpBlock struct {
	Offset int64 `json:"offset"`
	Ptr    int64 `json:"ptr"`
	Size   int64 `json:"size"`
	Free   bool  `json:"free"`
}

func runDump(args []string) error {
	path := args[0]
	return withHeapFile(path, func(data []byte) error {
		bb, err := heap.ParseBaseBlock(data)
		if err != nil {
			return err
		}

		var blocks []DumpBlock
		err = alloc.WalkData(data, func(b alloc.Block) error {
			if dumpFreeOnly && !b.Free {
				return nil
			}
			blocks = append(blocks, DumpBlock{Offset: b.Offset, Ptr: int64(b.Ptr), Size: b.Size, Free: b.Free})
			return nil
		})
		if err != nil {
			return err
		}

		if jsonOut {
			if blocks == nil {
				blocks = []DumpBlock{}
			}
			return printJSON(blocks)
		}

		printVerbose("Base block: head 0x%X  tail 0x%X  data %s  blocks %d\n",
			bb.Head(), bb.Tail(), formatBytes(bb.DataSize()), bb.BlockCount())
		printInfo("%-12s %-12s %12s  %s\n", "HEADER", "PTR", "SIZE", "STATE")
		for _, b := range blocks {
			state := "used"
			if b.Free {
				state = "free"
			}
			printInfo("0x%-10X 0x%-10X %12s  %s\n", b.Offset, b.Ptr, formatNumber(b.Size), state)
		}
		return nil
	})
}
