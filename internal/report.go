// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"github.com/google/uuid"
)

type Report struct {
	Identifier      string        `json:"id"`
	Date            string        `json:"date"`
	Source          string        `json:"source"`
	TotalRecords    int           `json:"totalRecords"`
	OpenRecords     int           `json:"openRecords"`
	Range           Range         `json:"range"`
	TotalActiveTime int64         `json:"totalActiveTime"`
	Loaders         []LoaderStats `json:"loaders"`
	Modules         []ChainStats  `json:"modules"`
}

// GenerateReport creates a JSON report from an Analysis
func GenerateReport(analysis Analysis, date, source string) Report {
	report := Report{
		Identifier:      uuid.New().String(),
		Date:            date,
		Source:          source,
		TotalRecords:    analysis.Records,
		OpenRecords:     analysis.Open,
		Range:           analysis.Range,
		TotalActiveTime: analysis.TotalActiveTime,
		Loaders:         analysis.Loaders,
		Modules:         analysis.Chains,
	}

	// Empty lists rather than null in the JSON
	if report.Loaders == nil {
		report.Loaders = []LoaderStats{}
	}
	if report.Modules == nil {
		report.Modules = []ChainStats{}
	}

	return report
}
