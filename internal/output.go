// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// TableRow represents a row in the output table with left and right columns
type TableRow struct {
	lhs string
	rhs string
}

// printTable prints a table with dynamic column widths
func printTable(w io.Writer, rows []TableRow) error {
	if len(rows) == 0 {
		return nil
	}

	maxLHSWidth := 0
	for _, row := range rows {
		if len(row.lhs) > maxLHSWidth {
			maxLHSWidth = len(row.lhs)
		}
	}

	for _, row := range rows {
		if row.lhs == "" {
			// separator
			fmt.Fprintln(w)
			continue
		}
		if _, err := fmt.Fprintf(w, "%-*s : %s\n", maxLHSWidth, row.lhs, row.rhs); err != nil {
			return err
		}
	}
	return nil
}

// formatMillis formats milliseconds the way time.Duration does, e.g. "1.5s"
func formatMillis(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

// FormatSummary builds the general statistics table rows of an analysis
func FormatSummary(analysis Analysis) []TableRow {
	var table []TableRow

	table = append(table, TableRow{"Invocation statistics", ""})
	table = append(table, TableRow{"Completed invocations", fmt.Sprintf("%d", analysis.Records)})
	if analysis.Open > 0 {
		table = append(table, TableRow{"Unfinished invocations", fmt.Sprintf("%d (excluded)", analysis.Open)})
	}
	table = append(table, TableRow{"Loaders", fmt.Sprintf("%d", len(analysis.Loaders))})
	table = append(table, TableRow{"Loader chains", fmt.Sprintf("%d", len(analysis.Chains))})
	table = append(table, TableRow{"Wall clock span", formatMillis(analysis.Range.End - analysis.Range.Start)})
	table = append(table, TableRow{"Total active time", formatMillis(analysis.TotalActiveTime)})

	return table
}

func statisticsColumns(s Statistics) []any {
	variance := "-"
	if s.Variance != nil {
		variance = fmt.Sprintf("%d", *s.Variance)
	}
	return []any{
		formatMillis(s.TotalActiveTime),
		s.DataPoints,
		s.UniqueResources,
		formatMillis(s.Mean),
		formatMillis(s.Median),
		variance,
		fmt.Sprintf("%s - %s", formatMillis(s.Range.Start), formatMillis(s.Range.End)),
	}
}

var statisticsHeader = []any{"Active", "Calls", "Resources", "Mean", "Median", "Variance (ms²)", "Range"}

// printLoaderTable prints per loader statistics
func printLoaderTable(w io.Writer, loaders []LoaderStats) error {
	table := tablewriter.NewWriter(w)
	table.Header(append([]any{"Loader"}, statisticsHeader...)...)

	for _, l := range loaders {
		name := l.Name
		if name == "" {
			name = "(unknown)"
		}
		if err := table.Append(append([]any{name}, statisticsColumns(l.Statistics)...)...); err != nil {
			return err
		}
	}

	return table.Render()
}

// printChainTable prints statistics per set of loaders applied to resources
func printChainTable(w io.Writer, chains []ChainStats) error {
	table := tablewriter.NewWriter(w)
	table.Header(append([]any{"Loaders"}, statisticsHeader...)...)

	for _, c := range chains {
		if err := table.Append(append([]any{strings.Join(c.Loaders, ", ")}, statisticsColumns(c.Statistics)...)...); err != nil {
			return err
		}
	}

	return table.Render()
}

// OutputAnalysis formats and prints an analysis
func OutputAnalysis(w io.Writer, analysis Analysis, verbose bool) error {
	if len(analysis.Loaders) > 0 {
		fmt.Fprintln(w, "Loaders:")
		if err := printLoaderTable(w, analysis.Loaders); err != nil {
			return fmt.Errorf("failed to print loader statistics: %w", err)
		}
		fmt.Fprintln(w)
	}

	if verbose && len(analysis.Chains) > 0 {
		fmt.Fprintln(w, "Modules by loaders:")
		if err := printChainTable(w, analysis.Chains); err != nil {
			return fmt.Errorf("failed to print module statistics: %w", err)
		}
		fmt.Fprintln(w)
	}

	return printTable(w, FormatSummary(analysis))
}

// OutputAnalysisJSON prints an analysis as JSON
func OutputAnalysisJSON(w io.Writer, analysis Analysis) error {
	jsonData, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// FormatTimingStats formats timing statistics as table rows. Throughput is counted in invocation
// records, each of which was stored as a start and an end event.
func FormatTimingStats(timing *TimingStats, recordCount int) []TableRow {
	var table []TableRow

	table = append(table, TableRow{"Timing statistics", ""})
	table = append(table, TableRow{"Total execution time", timing.TotalElapsed.Truncate(time.Millisecond).String()})
	if timing.Loading.Elapsed > 0 {
		table = append(table, TableRow{"Event log loading time", timing.Loading.Elapsed.Truncate(time.Millisecond).String()})
	}
	if timing.Analysis.Elapsed > 0 {
		table = append(table, TableRow{"Analysis time", timing.Analysis.Elapsed.Truncate(time.Millisecond).String()})
	}
	if recordCount > 0 && timing.TotalElapsed > 0 {
		recordsPerSecond := float64(recordCount) / timing.TotalElapsed.Seconds()
		table = append(table, TableRow{"Invocation records per second", fmt.Sprintf("%.0f", recordsPerSecond)})
	}

	return table
}

// OutputTimingStats formats and prints timing statistics
func OutputTimingStats(w io.Writer, timing *TimingStats, recordCount int) error {
	if timing == nil {
		return nil
	}

	table := FormatTimingStats(timing, recordCount)
	if err := printTable(w, table); err != nil {
		return fmt.Errorf("failed to print timing statistics: %w", err)
	}
	return nil
}
