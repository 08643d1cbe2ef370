// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// TimeWrapper wraps time.Time to provide custom CBOR marshaling as tag 1004
type TimeWrapper struct {
	time.Time
}

// EventLog is the raw event stream of one instrumentation session. This matches the structure of the
// CBOR files.
type EventLog struct {
	Version             uint16       `cbor:"version"`
	Identifier          string       `cbor:"id"`        // Unique identifier of the session
	Generator           string       `cbor:"generator"` // Generator identifier (e.g., the software creating the log)
	Date                *TimeWrapper `cbor:"date"`      // UTC date of recording
	Events              []Event      `cbor:"events"`
	extraSourceFilename string       // Source filename when loaded from file
}

// NewEventLog returns an empty event log dated date, or today if date is nil
func NewEventLog(date *time.Time) EventLog {
	log := EventLog{
		Version:    EventLogVersion,
		Identifier: uuid.New().String(),
		Generator:  fmt.Sprintf("loadmeasure %s", Version),
	}
	log.SetDate(date)
	return log
}

func (log *EventLog) SetDate(date *time.Time) {
	if date == nil {
		now := time.Now().UTC()
		date = &now
	}
	utc := date.UTC()
	var dateOnly = time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	log.Date = &TimeWrapper{Time: dateOnly}
}

func (log EventLog) DateString() string {
	if log.Date == nil {
		return ""
	}
	return log.Date.Format(time.DateOnly)
}

// SourceFilename is the file (and sequence number) the log was loaded from, if any
func (log EventLog) SourceFilename() string {
	return log.extraSourceFilename
}

// Records rebuilds the invocation records from the events
func (log EventLog) Records() []Record {
	return RecordsFromEvents(log.Events)
}

// Time is encoded as CBOR tag 1004 with string representation
func (tw TimeWrapper) MarshalCBOR() ([]byte, error) {
	tag := cbor.Tag{Number: 1004, Content: tw.Format(time.DateOnly)}
	return cbor.Marshal(tag)
}

func (tw *TimeWrapper) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number == 1004 {
		if dateStr, ok := tag.Content.(string); ok {
			if parsedDate, err := time.Parse(time.DateOnly, dateStr); err == nil {
				tw.Time = parsedDate
				return nil
			}
		}
	}

	return fmt.Errorf("unable to unmarshal TimeWrapper")
}

// WriteEventLog writes the event log to a file in CBOR format.
func WriteEventLog(log EventLog, filename string) (string, error) {
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	enc := cbor.NewEncoder(file)
	err = enc.Encode(log)
	return filename, err
}

// EventLogSequence collects the event logs found in a number of CBOR sequences
type EventLogSequence struct {
	Logs []EventLog
}

func NewEventLogSequence() *EventLogSequence {
	return &EventLogSequence{}
}

// Count is the number of logs loaded so far
func (seq *EventLogSequence) Count() int {
	return len(seq.Logs)
}

// Records returns the records of all loaded logs, renumbered
func (seq *EventLogSequence) Records() []Record {
	sets := make([][]Record, 0, len(seq.Logs))
	for _, log := range seq.Logs {
		sets = append(sets, log.Records())
	}
	return MergeRecords(sets...)
}

// LoadEventLogFile loads all event logs from a CBOR file.
func (seq *EventLogSequence) LoadEventLogFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	return seq.LoadEventLogFromReader(file, fmt.Sprintf("%s#%%d", filename))
}

// LoadEventLogFromReader loads all EventLogs from a CBOR sequence reader.
// Sets extraSourceFilename to the filename plus a sequence number suffix for each log.
func (seq *EventLogSequence) LoadEventLogFromReader(reader io.Reader, filenameFmt string) error {
	var buffer []byte
	readBuffer := make([]byte, 1024*1024) // 1MB read buffer to start with

	seqNum := 1
	for {
		// Try to read more data
		n, readErr := reader.Read(readBuffer)
		if n > 0 {
			buffer = append(buffer, readBuffer[:n]...)
		}

		// Try to unmarshal a log from the read buffer
		for len(buffer) > 0 {
			var this EventLog

			remaining, err := cbor.UnmarshalFirst(buffer, &this)
			if err != nil {
				// If we can't unmarshal and have reached EOF, we fail
				if readErr == io.EOF {
					return fmt.Errorf("failed to unmarshal CBOR: %w", err)
				}
				// If we can't unmarshal but haven't hit EOF, we should read more data
				break
			}

			this.extraSourceFilename = fmt.Sprintf(filenameFmt, seqNum)
			seqNum++

			if this.Version != EventLogVersion {
				return fmt.Errorf("%w: %s has version %d, expected %d", ErrUnsupportedLog, this.extraSourceFilename, this.Version, EventLogVersion)
			}

			seq.Logs = append(seq.Logs, this)
			buffer = remaining
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("failed to read data: %w", readErr)
		}
	}

	// Check if there's any remaining data that couldn't be parsed
	if len(buffer) > 0 {
		return fmt.Errorf("remaining %d bytes in buffer could not be parsed as CBOR", len(buffer))
	}

	return nil
}
