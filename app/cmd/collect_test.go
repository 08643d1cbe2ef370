package cmd

import (
	"loadmeasure/internal"
	"path/filepath"
	"regexp"
	"testing"
)

func TestCollectCmd(t *testing.T) {
	csvFile := writeTestFile(t, "build.csv", testCSV)
	output := filepath.Join(t.TempDir(), "build.cbor")

	out, err := executeCmd(t, newCollectCmd(), csvFile, "--output", output, "--date", "2025-03-04", "--verbose")
	if err != nil {
		t.Fatalf("Collect command failed: %v\nOutput: %s", err, out)
	}

	expectedPatterns := []*regexp.Regexp{
		regexp.MustCompile(`Saved 7 events to .*build\.cbor`),
		regexp.MustCompile(`Statistics for .*build\.csv:`),
		regexp.MustCompile(`Completed invocations\s+:\s+3`),
		regexp.MustCompile(`Modules by loaders:`),
	}
	for _, pattern := range expectedPatterns {
		if !pattern.MatchString(out) {
			t.Errorf("Expected pattern %q not found in output:\n%s", pattern.String(), out)
		}
	}

	seq := internal.NewEventLogSequence()
	if err := seq.LoadEventLogFile(output); err != nil {
		t.Fatalf("Failed to load event log: %v", err)
	}
	if seq.Count() != 1 || seq.Logs[0].DateString() != "2025-03-04" {
		t.Errorf("Expected one log dated 2025-03-04")
	}
}

func TestCollectCmd_InvalidInput(t *testing.T) {
	csvFile := writeTestFile(t, "build.csv", testCSV)

	if _, err := executeCmd(t, newCollectCmd(), csvFile, "--date", "March 4th"); err == nil {
		t.Errorf("Expected an error for an invalid date")
	}

	broken := writeTestFile(t, "broken.csv", "babel-loader,a.js,soon,10\n")
	if _, err := executeCmd(t, newCollectCmd(), broken); err == nil {
		t.Errorf("Expected an error for an invalid CSV file")
	}
}
