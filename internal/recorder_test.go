package internal

import (
	"reflect"
	"strings"
	"testing"
)

func TestIDSource_Next(t *testing.T) {
	var ids IDSource
	for want := InvocationID(0); want < 5; want++ {
		if got := ids.Next(); got != want {
			t.Fatalf("Expected id %d, got %d", want, got)
		}
	}

	// Independent sources don't share a counter
	var other IDSource
	if got := other.Next(); got != 0 {
		t.Errorf("Expected a new source to start at 0, got %d", got)
	}
}

func TestRecorder_StartAndEnd(t *testing.T) {
	r, clock, _ := newTestRecorder()

	r.Emit(Event{ID: 0, GroupKey: "babel-loader", Resource: "a.js", Type: EventStart})
	clock.advance(5)
	r.Emit(Event{ID: 1, GroupKey: "css-loader", Resource: "b.css", Type: EventStart})
	clock.advance(10)
	r.Emit(Event{ID: 0, Type: EventEnd})

	records := r.Records()
	if len(records) != 1 {
		t.Fatalf("Expected 1 completed record, got %d", len(records))
	}
	expected := Record{ID: 0, GroupKey: "babel-loader", Resource: "a.js", Start: 1000, End: 1015, Done: true}
	if records[0] != expected {
		t.Errorf("Expected %+v, got %+v", expected, records[0])
	}

	open := r.OpenRecords()
	if len(open) != 1 || open[0].ID != 1 || open[0].Start != 1005 {
		t.Errorf("Expected record 1 started at 1005 to be open, got %+v", open)
	}

	if got := len(r.AllRecords()); got != 2 {
		t.Errorf("Expected 2 records in total, got %d", got)
	}

	if got := eventTypes(r.Events()); !reflect.DeepEqual(got, []EventType{EventStart, EventStart, EventEnd}) {
		t.Errorf("Unexpected event order %v", got)
	}
}

func TestRecorder_EndIsNeverRevised(t *testing.T) {
	r, clock, logBuf := newTestRecorder()

	r.Emit(Event{ID: 7, GroupKey: "a", Resource: "a.js", Type: EventStart})
	clock.advance(3)
	r.Emit(Event{ID: 7, Type: EventEnd})
	clock.advance(3)
	r.Emit(Event{ID: 7, Type: EventEnd})

	records := r.Records()
	if len(records) != 1 || records[0].End != 1003 {
		t.Errorf("Expected the first end (1003) to be kept, got %+v", records)
	}
	if len(r.Events()) != 2 {
		t.Errorf("Expected the repeated end event to be dropped, got %d events", len(r.Events()))
	}
	if !strings.Contains(logBuf.String(), "repeated end event ignored") {
		t.Errorf("Expected repeated end to be logged, got %q", logBuf.String())
	}
}

func TestRecorder_InvalidEvents(t *testing.T) {
	r, _, logBuf := newTestRecorder()

	r.Emit(Event{ID: 3, Type: EventEnd})
	r.Emit(Event{ID: 4, Type: EventStart})
	r.Emit(Event{ID: 4, Type: EventStart})
	r.Emit(Event{ID: 5, Type: "pause"})

	if got := len(r.AllRecords()); got != 1 {
		t.Errorf("Expected 1 record, got %d", got)
	}
	if got := len(r.Events()); got != 1 {
		t.Errorf("Expected 1 accepted event, got %d", got)
	}

	for _, msg := range []string{"end event without start ignored", "duplicate start event ignored", "unknown event type ignored"} {
		if !strings.Contains(logBuf.String(), msg) {
			t.Errorf("Expected %q to be logged", msg)
		}
	}
}

func TestRecordsFromEvents_RoundTrip(t *testing.T) {
	records := []Record{
		rec(0, "a", "1.js", 100, 110),
		rec(1, "b", "1.js", 105, 120),
		{ID: 2, GroupKey: "c", Resource: "2.js", Start: 115},
	}

	events := EventsFromRecords(records)

	for i := 1; i < len(events); i++ {
		if events[i].Time < events[i-1].Time {
			t.Fatalf("Events not ordered by time: %+v", events)
		}
	}
	if len(events) != 5 {
		t.Fatalf("Expected 5 events, got %d", len(events))
	}

	got := RecordsFromEvents(events)
	if !reflect.DeepEqual(got, records) {
		t.Errorf("Expected %+v, got %+v", records, got)
	}
}
