package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// (potentially) injected by the linker
var (
	version   = "dev"
	builddate = "unknown"
	githash   = "unknown"
)

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information of docxmerge",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "docxmerge version %s\n", version)
			fmt.Fprintf(out, "Built at %s\n", builddate)
			fmt.Fprintf(out, "Version control hash: %s\n", githash)
		},
	}
}
