package internal

import (
	"fmt"
	"log/slog"
	"time"
)

// Session is one instrumentation run: the event sink, the ID counter, the wrapper and the
// registry intercepting the host's module resolution. Sessions share no state.
type Session struct {
	config   Config
	logger   *slog.Logger
	recorder *Recorder
	ids      *IDSource
	wrapper  *Wrapper
	registry *InterceptionRegistry
	started  time.Time
}

// NewSession starts a session intercepting loaders resolved through resolver
func NewSession(resolver Resolver, config Config, opts ...Option) *Session {
	o := newOptions(opts)

	s := &Session{
		config:   config,
		logger:   o.logger,
		recorder: NewRecorder(opts...),
		ids:      &IDSource{},
		started:  o.now(),
	}
	s.wrapper = NewWrapper(s.ids, s.recorder.Emit)
	s.registry = NewInterceptionRegistry(resolver, s.measurable(config.Targets), s.wrapper.Instrument, opts...)

	return s
}

// measurable leaves out our own loaders
func (s *Session) measurable(paths []string) []string {
	var res []string
	for _, path := range paths {
		if !isExcluded(path, s.config.Exclude) {
			res = append(res, path)
		}
	}
	return res
}

// Resolve resolves a module through the session's registry
func (s *Session) Resolve(id string) (Module, error) {
	return s.registry.Resolve(id)
}

// Registry returns the session's interception registry
func (s *Session) Registry() *InterceptionRegistry {
	return s.registry
}

// Recorder returns the session's event sink
func (s *Session) Recorder() *Recorder {
	return s.recorder
}

// Pitch is the entry point the host runs ahead of the loaders of every resource. It adds the
// resource's loaders to the modules to intercept, so they are instrumented when resolved.
func (s *Session) Pitch(ctx LoaderContext) {
	if ctx == nil {
		return
	}
	loaders := s.measurable(ctx.Loaders())
	s.registry.AddTargets(loaders...)
	s.logger.Debug("loaders announced", slog.String("resource", ctx.ResourcePath()), slog.Int("loaders", len(loaders)))
}

// Analyse computes the statistics of everything recorded so far
func (s *Session) Analyse() Analysis {
	return Analyse(s.recorder.AllRecords(), AnalyseOptions{
		Top:     s.config.Top,
		Exclude: s.config.Exclude,
	})
}

// EventLog returns the events recorded so far as an event log
func (s *Session) EventLog() EventLog {
	log := NewEventLog(&s.started)
	log.Events = s.recorder.Events()
	return log
}

// Save writes the events recorded so far to filename
func (s *Session) Save(filename string) error {
	if _, err := WriteEventLog(s.EventLog(), filename); err != nil {
		return fmt.Errorf("failed to write event log to %s: %w", filename, err)
	}
	return nil
}
