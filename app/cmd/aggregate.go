// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"loadmeasure/internal"

	"github.com/spf13/cobra"
)

func newAggregateCmd() *cobra.Command {
	aggregateCmd := &cobra.Command{
		Use:   "aggregate <input-file1> <input-file2> [input-file3...]",
		Short: "Aggregate multiple event logs into combined statistics",
		Long:  `Aggregate loader timings from multiple event logs (or CSV exports) into a single combined event log and statistics.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			timing := internal.NewTimingStats()

			var (
				verbose    bool
				quiet      bool
				output     string
				filetype   string
				configFile string
			)

			parseFlags(cmd, map[string]any{
				"verbose":  &verbose,
				"quiet":    &quiet,
				"output":   &output,
				"filetype": &filetype,
				"config":   &configFile,
			})

			// Quiet and verbose flags are mutually exclusive
			if quiet && verbose {
				fmt.Fprintln(stderr, "Can't be both --quiet and --verbose at the same time")
				cmd.SilenceUsage = true
				return fmt.Errorf("conflicting flags: cannot use both --quiet and --verbose")
			}

			config, err := loadConfig(cmd, configFile)
			if err != nil {
				cmd.SilenceUsage = true
				return err
			}

			timing.Loading.Start()
			loaded, err := loadRecords(args, filetype, cmd.InOrStdin(), stdout, verbose)
			if err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				cmd.SilenceUsage = true
				return err
			}
			timing.Loading.Stop()

			if len(loaded.records) == 0 {
				cmd.SilenceUsage = true
				return fmt.Errorf("failed to aggregate: %w", internal.ErrNoRecords)
			}

			// Save the combined records as a new event log if requested
			if output != "" {
				log := internal.NewEventLog(nil)
				log.Events = internal.EventsFromRecords(loaded.records)
				outFilename, err := internal.WriteEventLog(log, output)
				if err != nil {
					fmt.Fprintf(stderr, "Failed to write aggregated event log to %s: %v\n", output, err)
					cmd.SilenceUsage = true
					return fmt.Errorf("failed to write aggregated event log to %s: %w", output, err)
				}
				if verbose {
					fmt.Fprintf(stdout, "Aggregated event log saved to %s\n", outFilename)
				}
			}

			timing.Analysis.Start()
			analysis := internal.Analyse(loaded.records, internal.AnalyseOptions{
				Top:     config.Top,
				Exclude: config.Exclude,
			})
			timing.Analysis.Stop()

			// Finish timing and print statistics
			timing.Finish()

			if quiet {
				return nil
			}

			fmt.Fprintf(stdout, "Aggregated statistics for %d files:\n", len(args))
			fmt.Fprintln(stdout)

			if err := internal.OutputAnalysis(stdout, analysis, verbose); err != nil {
				fmt.Fprintf(stderr, "%v\n", err)
				cmd.SilenceUsage = true
				return fmt.Errorf("failed to output statistics: %w", err)
			}

			fmt.Fprintln(stdout)

			if err := internal.OutputTimingStats(stdout, timing, len(loaded.records)); err != nil {
				fmt.Fprintf(stderr, "Failed to format timing statistics: %v\n", err)
				cmd.SilenceUsage = true
				return fmt.Errorf("failed to format timing statistics: %w", err)
			}

			return nil
		},
	}

	aggregateCmd.Flags().StringP("output", "o", "", "Output file to save the aggregated event log (optional)")
	aggregateCmd.Flags().IntP("top", "n", internal.DefaultGroupCount, "Number of top loaders to display (0 for all)")
	aggregateCmd.Flags().StringP("filetype", "f", "cbor", "Input file type (cbor or csv)")
	aggregateCmd.Flags().StringP("config", "c", "", "Configuration file (YAML)")
	aggregateCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
	aggregateCmd.Flags().BoolP("quiet", "q", false, "Quiet mode")

	return aggregateCmd
}

var aggregateCmd = newAggregateCmd()

func init() {
	rootCmd.AddCommand(aggregateCmd)
}
