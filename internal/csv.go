// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSVFile loads invocation records from a CSV file
func LoadCSVFile(filename string) ([]Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	records, err := LoadCSVFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return records, nil
}

// LoadCSVFromReader loads invocation records with the fields loader, resource, start and end
// (unix milliseconds). An empty end is an invocation that never ended.
func LoadCSVFromReader(reader io.Reader) ([]Record, error) {
	var records []Record

	csvReader := csv.NewReader(reader)
	csvReader.Comment = '#'
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1 // allow either 3 or 4 fields per record

	for {
		fields, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := csvReader.FieldPos(0)
			return records, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		rec, err := parseCSVRecord(fields)
		if err != nil {
			line, _ := csvReader.FieldPos(0)
			return records, fmt.Errorf("failed to process CSV record at line %d: %w", line, err)
		}
		rec.ID = InvocationID(len(records))
		records = append(records, rec)
	}

	return records, nil
}

// parseCSVRecord processes a single CSV record
func parseCSVRecord(fields []string) (Record, error) {
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("CSV record must have at least three fields (loader, resource, start), got %d", len(fields))
	}

	rec := Record{
		GroupKey: strings.TrimSpace(fields[0]),
		Resource: strings.TrimSpace(fields[1]),
	}

	start, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid start '%s': %w", fields[2], err)
	}
	rec.Start = start

	// Field 4 is the end. Missing means the invocation never ended.
	if len(fields) >= 4 && strings.TrimSpace(fields[3]) != "" {
		end, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("invalid end '%s': %w", fields[3], err)
		}
		if end < start {
			return Record{}, fmt.Errorf("end %d before start %d", end, start)
		}
		rec.End = end
		rec.Done = true
	}

	return rec, nil
}
