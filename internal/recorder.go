package internal

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// InvocationID identifies a single invocation of a loader hook
type InvocationID uint64

type EventType string

const (
	EventStart EventType = "start"
	EventEnd   EventType = "end"
)

// Event is what instrumented loaders emit. End events only carry the ID and type.
// Time is the unix timestamp in milliseconds, set by the Recorder when the event is received.
type Event struct {
	ID       InvocationID `cbor:"id" json:"id"`
	GroupKey string       `cbor:"group,omitempty" json:"groupKey,omitempty"`
	Resource string       `cbor:"resource,omitempty" json:"resource,omitempty"`
	Type     EventType    `cbor:"type" json:"type"`
	Time     int64        `cbor:"time" json:"time"`
}

// EmitFunc is the event sink instrumented loaders report to
type EmitFunc func(Event)

// IDSource hands out invocation IDs, unique and increasing for the lifetime of the source
type IDSource struct {
	next atomic.Uint64
}

func (s *IDSource) Next() InvocationID {
	return InvocationID(s.next.Add(1) - 1)
}

// Record is one invocation, built from its start and end events.
type Record struct {
	ID       InvocationID `cbor:"id" json:"id"`
	GroupKey string       `cbor:"group" json:"groupKey"`
	Resource string       `cbor:"resource" json:"resource"`
	Start    int64        `cbor:"start" json:"start"`
	End      int64        `cbor:"end,omitempty" json:"end,omitempty"`
	Done     bool         `cbor:"done" json:"done"` // false while the invocation has not ended
}

// Duration of a completed record in milliseconds
func (r Record) Duration() int64 {
	return r.End - r.Start
}

// Range of a completed record in absolute milliseconds
func (r Record) Range() Range {
	return Range{Start: r.Start, End: r.End}
}

// Recorder is the event sink. It keeps the ordered event log and the invocation records.
type Recorder struct {
	mu      sync.Mutex
	opts    options
	events  []Event
	records []Record
	index   map[InvocationID]int
}

func NewRecorder(opts ...Option) *Recorder {
	return &Recorder{
		opts:  newOptions(opts),
		index: make(map[InvocationID]int),
	}
}

// Emit timestamps the event and applies it. It has the signature of an EmitFunc.
func (r *Recorder) Emit(ev Event) {
	ev.Time = r.opts.now().UnixMilli()
	r.apply(ev)
}

func (r *Recorder) apply(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case EventStart:
		if _, found := r.index[ev.ID]; found {
			r.opts.logger.Warn("duplicate start event ignored", slog.Uint64("id", uint64(ev.ID)))
			return
		}
		r.index[ev.ID] = len(r.records)
		r.records = append(r.records, Record{
			ID:       ev.ID,
			GroupKey: ev.GroupKey,
			Resource: ev.Resource,
			Start:    ev.Time,
		})
	case EventEnd:
		idx, found := r.index[ev.ID]
		if !found {
			r.opts.logger.Warn("end event without start ignored", slog.Uint64("id", uint64(ev.ID)))
			return
		}
		// An end, once set, is never revised
		if r.records[idx].Done {
			r.opts.logger.Debug("repeated end event ignored", slog.Uint64("id", uint64(ev.ID)))
			return
		}
		r.records[idx].End = ev.Time
		r.records[idx].Done = true
	default:
		r.opts.logger.Warn("unknown event type ignored", slog.String("type", string(ev.Type)))
		return
	}

	r.events = append(r.events, ev)
}

// Events returns a copy of the accepted events in the order they were received
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Records returns the completed records
func (r *Recorder) Records() []Record {
	return r.filter(func(rec Record) bool { return rec.Done })
}

// OpenRecords returns the records whose end has not been seen (yet)
func (r *Recorder) OpenRecords() []Record {
	return r.filter(func(rec Record) bool { return !rec.Done })
}

// AllRecords returns both completed and open records, in start order
func (r *Recorder) AllRecords() []Record {
	return r.filter(func(Record) bool { return true })
}

func (r *Recorder) filter(keep func(Record) bool) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Record
	for _, rec := range r.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// RecordsFromEvents rebuilds the records of a stored event log, keeping the stored timestamps.
func RecordsFromEvents(events []Event) []Record {
	r := NewRecorder(WithLogger(discardLogger()))
	for _, ev := range events {
		r.apply(ev)
	}
	return r.AllRecords()
}

// EventsFromRecords turns records back into the events they were built from, ordered by time.
// Open records only produce a start event.
func EventsFromRecords(records []Record) []Event {
	var events []Event
	for _, rec := range records {
		events = append(events, Event{ID: rec.ID, GroupKey: rec.GroupKey, Resource: rec.Resource, Type: EventStart, Time: rec.Start})
		if rec.Done {
			events = append(events, Event{ID: rec.ID, Type: EventEnd, Time: rec.End})
		}
	}
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return events
}
