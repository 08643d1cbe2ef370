package internal

import "errors"

var (
	// ErrNoResolver is returned when resolving through a registry that has no resolver
	ErrNoResolver = errors.New("no module resolver")

	// ErrNoRecords is returned when there is nothing to aggregate
	ErrNoRecords = errors.New("no completed invocation records")

	// ErrUnsupportedLog is returned for event logs of an unknown version
	ErrUnsupportedLog = errors.New("unsupported event log")
)
