// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"loadmeasure/internal"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Long:  `Show software version.`,
		Run: func(cmd *cobra.Command, _ []string) {
			stdout := cmd.OutOrStdout()

			fmt.Fprintf(stdout, "loadmeasure %s\n", internal.Version)
		},
	}

	return versionCmd
}

var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
