// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "loadmeasure",
	Short: "Loader timing analyzer for build pipeline event logs",
	Long: `loadmeasure analyzes the start/end events recorded from instrumented build loaders.
It can view event logs (CBOR) or CSV exports, aggregate several of them and make a JSON report.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
