// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

import (
	"time"
)

// Phase is one timed step of a command run
type Phase struct {
	started time.Time
	Elapsed time.Duration
}

func (p *Phase) Start() {
	p.started = time.Now()
}

// Stop adds the time since Start, so a phase can be timed in several parts
func (p *Phase) Stop() {
	if p.started.IsZero() {
		return
	}
	p.Elapsed += time.Since(p.started)
	p.started = time.Time{}
}

// TimingStats tracks how long a command spent loading event logs and analysing their records
type TimingStats struct {
	TotalStart   time.Time
	TotalElapsed time.Duration
	Loading      Phase
	Analysis     Phase
}

// NewTimingStats creates a new timing tracker
func NewTimingStats() *TimingStats {
	return &TimingStats{
		TotalStart: time.Now(),
	}
}

// Finish calculates the total elapsed time
func (ts *TimingStats) Finish() {
	ts.TotalElapsed = time.Since(ts.TotalStart)
}
