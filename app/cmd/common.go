// Author: Fredrik Thulin <fredrik@ispik.se>

package cmd

import (
	"fmt"
	"io"
	"loadmeasure/internal"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// parseFlags parses command flags in a table-driven manner
func parseFlags(cmd *cobra.Command, flags map[string]any) {
	for name, dest := range flags {
		var err error
		switch v := dest.(type) {
		case *int:
			*v, err = cmd.Flags().GetInt(name)
		case *bool:
			*v, err = cmd.Flags().GetBool(name)
		case *string:
			*v, err = cmd.Flags().GetString(name)
		default:
			fmt.Fprintf(os.Stderr, "Unsupported flag type for %s\n", name)
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}
}

// loadConfig loads the configuration file if one was given, and applies the --top flag if set
func loadConfig(cmd *cobra.Command, path string) (internal.Config, error) {
	config := internal.DefaultConfig()
	if path != "" {
		var err error
		if config, err = internal.LoadConfig(path); err != nil {
			return config, err
		}
	}

	if flag := cmd.Flags().Lookup("top"); flag != nil && flag.Changed {
		top, err := cmd.Flags().GetInt("top")
		if err != nil {
			return config, fmt.Errorf("failed to get top flag: %w", err)
		}
		config.Top = top
	}

	return config, nil
}

// loadedRecords are the records of all inputs, and the event logs they came from (CSV files have none)
type loadedRecords struct {
	records []internal.Record
	logs    *internal.EventLogSequence
}

// date of the first event log, or an empty string if only CSV files were loaded
func (l loadedRecords) date() string {
	if l.logs.Count() == 0 {
		return ""
	}
	return l.logs.Logs[0].DateString()
}

// loadRecords loads invocation records from event logs (CBOR sequences) or CSV files, or if the
// filename "-" is used, from STDIN.
func loadRecords(args []string, filetype string, stdin io.Reader, stdout io.Writer, verbose bool) (loadedRecords, error) {
	res := loadedRecords{logs: internal.NewEventLogSequence()}
	var csvSets [][]internal.Record

	for _, filename := range args {
		isCSV := filetype == "csv" || strings.HasSuffix(filename, ".csv")

		if verbose {
			source := filename
			if filename == "-" {
				source = "STDIN"
			}
			fmt.Fprintf(stdout, "Loading records from %s\n", source)
		}

		var err error
		switch {
		case filename == "-" && isCSV:
			var records []internal.Record
			records, err = internal.LoadCSVFromReader(stdin)
			csvSets = append(csvSets, records)
		case filename == "-":
			err = res.logs.LoadEventLogFromReader(stdin, "<stdin#%d>")
		case isCSV:
			var records []internal.Record
			records, err = internal.LoadCSVFile(filename)
			csvSets = append(csvSets, records)
		default:
			err = res.logs.LoadEventLogFile(filename)
		}
		if err != nil {
			return res, fmt.Errorf("failed to load %s: %w", filename, err)
		}
	}

	res.records = internal.MergeRecords(append([][]internal.Record{res.logs.Records()}, csvSets...)...)
	return res, nil
}
