// Command quakemap serves a web map of recent earthquakes and tectonic plate
// boundaries.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "quakemap",
		Short:        "Web map of recent earthquakes and fault lines",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newSnapshotCmd())
	return root
}
