package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestFormatSummary(t *testing.T) {
	a := Analyse(analysisRecords(), AnalyseOptions{Exclude: []string{DefaultExclude}})

	rows := FormatSummary(a)

	expected := map[string]string{
		"Completed invocations":  "3",
		"Unfinished invocations": "1 (excluded)",
		"Loaders":                "3",
		"Loader chains":          "3",
		"Wall clock span":        "34ms",
		"Total active time":      "24ms",
	}
	found := make(map[string]string)
	for _, row := range rows {
		found[row.lhs] = row.rhs
	}
	for lhs, rhs := range expected {
		if found[lhs] != rhs {
			t.Errorf("Expected %s to be %q, got %q", lhs, rhs, found[lhs])
		}
	}
}

func TestFormatSummary_NoOpenRecords(t *testing.T) {
	rows := FormatSummary(Analyse([]Record{rec(0, "a", "1.js", 0, 1)}, AnalyseOptions{}))
	for _, row := range rows {
		if row.lhs == "Unfinished invocations" {
			t.Errorf("Expected no unfinished invocations row")
		}
	}
}

func TestOutputAnalysis(t *testing.T) {
	a := Analyse(analysisRecords(), AnalyseOptions{Exclude: []string{DefaultExclude}})

	var buf bytes.Buffer
	if err := OutputAnalysis(&buf, a, false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := buf.String()
	for _, s := range []string{"Loaders:", "babel-loader", "eslint-loader", "Total active time"} {
		if !strings.Contains(out, s) {
			t.Errorf("Expected %q in output:\n%s", s, out)
		}
	}
	if strings.Contains(out, "Modules by loaders:") {
		t.Errorf("Expected no module table unless verbose")
	}

	buf.Reset()
	if err := OutputAnalysis(&buf, a, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Modules by loaders:") {
		t.Errorf("Expected a module table when verbose:\n%s", buf.String())
	}
}

func TestOutputAnalysisJSON(t *testing.T) {
	a := Analyse(analysisRecords(), AnalyseOptions{Exclude: []string{DefaultExclude}})

	var buf bytes.Buffer
	if err := OutputAnalysisJSON(&buf, a); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded Analysis
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded.Records != 3 || len(decoded.Loaders) != 3 || len(decoded.Chains) != 3 {
		t.Errorf("Unexpected decoded analysis %+v", decoded)
	}
	if !strings.Contains(buf.String(), `"modules"`) {
		t.Errorf("Expected loader chains under modules")
	}
}

func TestGenerateReport(t *testing.T) {
	report := GenerateReport(Analyse(nil, AnalyseOptions{}), "2025-03-04", "events.cbor")

	if report.Identifier == "" || report.Date != "2025-03-04" || report.Source != "events.cbor" {
		t.Errorf("Unexpected report header %+v", report)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"loaders":[]`) || !strings.Contains(string(data), `"modules":[]`) {
		t.Errorf("Expected empty lists, got %s", data)
	}
}

func TestFormatMillis(t *testing.T) {
	if got := formatMillis(1500); got != "1.5s" {
		t.Errorf("Expected 1.5s, got %s", got)
	}
	if got := formatMillis(0); got != "0s" {
		t.Errorf("Expected 0s, got %s", got)
	}
}

func TestFormatTimingStats(t *testing.T) {
	timing := &TimingStats{
		TotalElapsed: 2 * time.Second,
		Loading:      Phase{Elapsed: time.Second},
		Analysis:     Phase{Elapsed: 500 * time.Millisecond},
	}

	rows := FormatTimingStats(timing, 100)

	found := make(map[string]string)
	for _, row := range rows {
		found[row.lhs] = row.rhs
	}
	if found["Total execution time"] != "2s" || found["Event log loading time"] != "1s" || found["Analysis time"] != "500ms" {
		t.Errorf("Unexpected timing rows %+v", rows)
	}
	if found["Invocation records per second"] != "50" {
		t.Errorf("Expected 50 records per second, got %q", found["Invocation records per second"])
	}

	var buf bytes.Buffer
	if err := OutputTimingStats(&buf, nil, 0); err != nil || buf.Len() != 0 {
		t.Errorf("Expected nothing printed for nil timing stats")
	}
}

func TestPhase_Accumulates(t *testing.T) {
	var p Phase

	p.Stop()
	if p.Elapsed != 0 {
		t.Errorf("Expected a phase that never started to stay at 0, got %v", p.Elapsed)
	}

	p.Start()
	time.Sleep(2 * time.Millisecond)
	p.Stop()
	first := p.Elapsed

	p.Start()
	time.Sleep(2 * time.Millisecond)
	p.Stop()

	if first <= 0 || p.Elapsed <= first {
		t.Errorf("Expected the second part to add to %v, got %v", first, p.Elapsed)
	}

	// A second Stop adds nothing
	p.Stop()
	if p.Elapsed == 0 {
		t.Errorf("Expected elapsed time to be kept")
	}
}
