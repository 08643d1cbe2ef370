// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"loadmeasure/internal"

	"github.com/spf13/cobra"
)

func newViewCmd() *cobra.Command {
	viewCmd := &cobra.Command{
		Use:   "view <input-file>",
		Short: "View loader statistics from an event log",
		Long:  `View per-loader and per-module timing statistics from a previously saved event log (or CSV export) and display them.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			var (
				verbose    bool
				json       bool
				filetype   string
				configFile string
			)

			parseFlags(cmd, map[string]any{
				"verbose":  &verbose,
				"json":     &json,
				"filetype": &filetype,
				"config":   &configFile,
			})

			if verbose && json {
				return fmt.Errorf("--verbose and --json are mutually exclusive")
			}

			config, err := loadConfig(cmd, configFile)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}

			loaded, err := loadRecords(args, filetype, cmd.InOrStdin(), stdout, verbose)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}

			analysis := internal.Analyse(loaded.records, internal.AnalyseOptions{
				Top:     config.Top,
				Exclude: config.Exclude,
			})

			if json {
				if err := internal.OutputAnalysisJSON(stdout, analysis); err != nil {
					cmd.SilenceUsage = true
					return err
				}
				return nil
			}

			if date := loaded.date(); date != "" {
				fmt.Fprintf(stdout, "Statistics for %s (%s):\n\n", args[0], date)
			} else {
				fmt.Fprintf(stdout, "Statistics for %s:\n\n", args[0])
			}

			if err := internal.OutputAnalysis(stdout, analysis, verbose); err != nil {
				cmd.SilenceUsage = true
				return err
			}

			return nil
		},
	}

	viewCmd.Flags().BoolP("verbose", "v", false, "Verbose output, includes statistics per loader chain")
	viewCmd.Flags().BoolP("json", "j", false, "JSON output")
	viewCmd.Flags().IntP("top", "n", internal.DefaultGroupCount, "Number of top loaders to display (0 for all)")
	viewCmd.Flags().StringP("filetype", "f", "cbor", "Input file type (cbor or csv)")
	viewCmd.Flags().StringP("config", "c", "", "Configuration file (YAML)")

	return viewCmd
}

var viewCmd = newViewCmd()

func init() {
	rootCmd.AddCommand(viewCmd)
}
