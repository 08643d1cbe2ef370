// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"loadmeasure/internal"
	"time"

	"github.com/spf13/cobra"
)

func newCollectCmd() *cobra.Command {
	collectCmd := &cobra.Command{
		Use:   "collect <csv-file> [csv-file2] [csv-file3...]",
		Short: "Collect CSV timing exports into an event log",
		Long: `Parse one or more CSV files with loader invocations (loader, resource, start, end) and
show their statistics. Save them to an event log (CBOR format).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			timing := internal.NewTimingStats()

			var (
				output  string
				dateStr string
				verbose bool
				quiet   bool
			)

			parseFlags(cmd, map[string]any{
				"output":  &output,
				"date":    &dateStr,
				"verbose": &verbose,
				"quiet":   &quiet,
			})

			if quiet && verbose {
				cmd.SilenceUsage = true
				return fmt.Errorf("conflicting flags: cannot use both --quiet and --verbose")
			}

			var date *time.Time
			if dateStr != "" {
				parsed, err := time.Parse(time.DateOnly, dateStr)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", dateStr, err)
				}
				date = &parsed
			}

			config, err := loadConfig(cmd, "")
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}

			timing.Loading.Start()
			loaded, err := loadRecords(args, "csv", cmd.InOrStdin(), stderr, verbose)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}
			timing.Loading.Stop()

			if output != "" {
				log := internal.NewEventLog(date)
				log.Events = internal.EventsFromRecords(loaded.records)
				if _, err := internal.WriteEventLog(log, output); err != nil {
					cmd.SilenceUsage = true
					return fmt.Errorf("failed to write event log to %s: %w", output, err)
				}
				if verbose {
					fmt.Fprintf(stderr, "Saved %d events to %s\n", len(log.Events), output)
				}
			}

			if quiet {
				return nil
			}

			if len(args) == 1 {
				fmt.Fprintf(stdout, "Statistics for %s:\n", args[0])
			} else {
				fmt.Fprintf(stdout, "Aggregated statistics for %d files:\n", len(args))
			}
			fmt.Fprintln(stdout)

			timing.Analysis.Start()
			analysis := internal.Analyse(loaded.records, internal.AnalyseOptions{
				Top:     config.Top,
				Exclude: config.Exclude,
			})
			timing.Analysis.Stop()
			timing.Finish()

			if err := internal.OutputAnalysis(stdout, analysis, verbose); err != nil {
				cmd.SilenceUsage = true
				return err
			}

			fmt.Fprintln(stdout)
			return internal.OutputTimingStats(stdout, timing, len(loaded.records))
		},
	}

	collectCmd.Flags().StringP("output", "o", "", "Output file to save the event log (optional, only shows stats if not specified)")
	collectCmd.Flags().StringP("date", "d", "", "Date of the recording (YYYY-MM-DD, defaults to today)")
	collectCmd.Flags().IntP("top", "n", internal.DefaultGroupCount, "Number of top loaders to display (0 for all)")
	collectCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	collectCmd.Flags().BoolP("quiet", "q", false, "Quiet mode")

	return collectCmd
}

var collectCmd = newCollectCmd()

func init() {
	rootCmd.AddCommand(collectCmd)
}
