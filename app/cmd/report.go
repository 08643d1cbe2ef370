// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"encoding/json"
	"fmt"
	"loadmeasure/internal"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report <input-file>",
		Short: "Generate a JSON report from an event log",
		Long:  `Generate a JSON report with per-loader and per-module statistics from an event log (or CSV export).`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			var (
				source     string
				output     string
				filetype   string
				configFile string
				verbose    bool
			)

			parseFlags(cmd, map[string]any{
				"source":   &source,
				"output":   &output,
				"filetype": &filetype,
				"config":   &configFile,
				"verbose":  &verbose,
			})

			config, err := loadConfig(cmd, configFile)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}

			loaded, err := loadRecords(args, filetype, cmd.InOrStdin(), stderr, verbose)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}

			if source == "" {
				source = args[0]
			}
			date := loaded.date()
			if date == "" {
				date = time.Now().UTC().Format(time.DateOnly)
			}

			analysis := internal.Analyse(loaded.records, internal.AnalyseOptions{
				Top:     config.Top,
				Exclude: config.Exclude,
			})
			report := internal.GenerateReport(analysis, date, source)

			jsonData, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				cmd.SilenceUsage = true
				return fmt.Errorf("failed to generate JSON report: %w", err)
			}

			// Write the report to the specified output file or stdout
			if output != "" && output != "-" {
				err = os.WriteFile(output, jsonData, 0o644) // #nosec G306
				if err != nil {
					cmd.SilenceUsage = true
					return fmt.Errorf("failed to write report to %s: %w", output, err)
				}
				if verbose {
					fmt.Fprintf(stderr, "Report written to %s\n", output)
				}
			} else {
				fmt.Fprintln(stdout, string(jsonData))
				if verbose {
					fmt.Fprintf(stderr, "Report written to STDOUT\n")
				}
			}

			return nil
		},
	}

	reportCmd.Flags().StringP("source", "s", "", "Name of the build the events were recorded from (defaults to the input file name)")
	reportCmd.Flags().StringP("output", "o", "", "Output file (optional, defaults to stdout)")
	reportCmd.Flags().IntP("top", "n", internal.DefaultGroupCount, "Number of top loaders to report (0 for all)")
	reportCmd.Flags().StringP("filetype", "f", "cbor", "Input file type (cbor or csv)")
	reportCmd.Flags().StringP("config", "c", "", "Configuration file (YAML)")
	reportCmd.Flags().BoolP("verbose", "v", false, "Verbose output")

	return reportCmd
}

var reportCmd = newReportCmd()

func init() {
	rootCmd.AddCommand(reportCmd)
}
