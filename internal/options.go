package internal

import (
	"io"
	"log/slog"
	"time"
)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Recorder, an InterceptionRegistry or a Session
type Option func(*options)

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the clock used to timestamp events. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// discardLogger is used when replaying stored events, where diagnostics are not wanted
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
