package internal

import (
	"bytes"
	"log/slog"
	"testing"
	"time"
)

// manualClock is a clock that only moves when told to
type manualClock struct {
	ms int64
}

func (c *manualClock) now() time.Time {
	return time.UnixMilli(c.ms)
}

func (c *manualClock) advance(ms int64) {
	c.ms += ms
}

// fakeContext is a host context. Async returns a callback recording its calls, unless async is disabled.
type fakeContext struct {
	resource   string
	loaders    []string
	noAsync    bool
	asyncCalls int
	onDone     func(err error, content []byte)
}

func (c *fakeContext) ResourcePath() string {
	return c.resource
}

func (c *fakeContext) Loaders() []string {
	return c.loaders
}

func (c *fakeContext) Async() Callback {
	if c.noAsync {
		return nil
	}
	c.asyncCalls++
	return func(err error, content []byte) {
		if c.onDone != nil {
			c.onDone(err, content)
		}
	}
}

// newTestRecorder returns a recorder using a manual clock and a logger writing to the returned buffer
func newTestRecorder() (*Recorder, *manualClock, *bytes.Buffer) {
	clock := &manualClock{ms: 1000}
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewRecorder(WithClock(clock.now), WithLogger(logger)), clock, &logBuf
}

// eventTypes returns the types of the events, e.g. ["start", "end"]
func eventTypes(events []Event) []EventType {
	var res []EventType
	for _, ev := range events {
		res = append(res, ev.Type)
	}
	return res
}

// rec returns a completed record
func rec(id int, group, resource string, start, end int64) Record {
	return Record{
		ID:       InvocationID(id),
		GroupKey: group,
		Resource: resource,
		Start:    start,
		End:      end,
		Done:     true,
	}
}

// validateStatistics is a helper function to validate the fields of Statistics
func validateStatistics(t *testing.T, got Statistics, expected Statistics) {
	t.Helper()

	if got.DataPoints != expected.DataPoints {
		t.Errorf("Expected %d data points, got %d", expected.DataPoints, got.DataPoints)
	}
	if got.Mean != expected.Mean {
		t.Errorf("Expected mean %d, got %d", expected.Mean, got.Mean)
	}
	if got.Median != expected.Median {
		t.Errorf("Expected median %d, got %d", expected.Median, got.Median)
	}
	switch {
	case expected.Variance == nil && got.Variance != nil:
		t.Errorf("Expected no variance, got %d", *got.Variance)
	case expected.Variance != nil && got.Variance == nil:
		t.Errorf("Expected variance %d, got none", *expected.Variance)
	case expected.Variance != nil && *got.Variance != *expected.Variance:
		t.Errorf("Expected variance %d, got %d", *expected.Variance, *got.Variance)
	}
	if got.Range != expected.Range {
		t.Errorf("Expected range %+v, got %+v", expected.Range, got.Range)
	}
	if got.TotalActiveTime != expected.TotalActiveTime {
		t.Errorf("Expected total active time %d, got %d", expected.TotalActiveTime, got.TotalActiveTime)
	}
	if got.Open != expected.Open {
		t.Errorf("Expected %d open records, got %d", expected.Open, got.Open)
	}
}

func ptr[T any](v T) *T {
	return &v
}
