package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printInfo("heapctl %s\n", version)
		printInfo("  commit: %s\n", commit)
		printInfo("  built: %s\n", date)
		printInfo("  heap format: v%d\n", format.BaseVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
