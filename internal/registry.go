package internal

import (
	"log/slog"
	"slices"
	"sync"
)

// Resolver is the host's module resolution mechanism
type Resolver interface {
	Resolve(id string) (Module, error)
}

// ResolverFunc adapts a function to a Resolver
type ResolverFunc func(id string) (Module, error)

func (f ResolverFunc) Resolve(id string) (Module, error) {
	return f(id)
}

// InstrumentFunc returns the instrumented counterpart of a resolved module
type InstrumentFunc func(m Module, id string) Module

// InterceptionRegistry sits in front of a Resolver and replaces the target modules it resolves
// with instrumented versions. Every target is instrumented at most once, no matter how often
// or from where it is resolved, so invocations are never counted twice.
type InterceptionRegistry struct {
	mu           sync.Mutex
	inner        Resolver
	targets      []string
	instrument   InstrumentFunc
	instrumented map[string]Module
	disabled     bool
	logger       *slog.Logger
	warnOnce     sync.Once
}

// NewInterceptionRegistry returns a registry intercepting targets resolved through resolver.
//
// If the resolver is missing, or is itself an InterceptionRegistry, interception is disabled and
// Resolve passes through to the resolver (if any). The host keeps working, there is just no timing data.
func NewInterceptionRegistry(resolver Resolver, targets []string, instrument InstrumentFunc, opts ...Option) *InterceptionRegistry {
	o := newOptions(opts)

	r := &InterceptionRegistry{
		inner:        resolver,
		targets:      slices.Clone(targets),
		instrument:   instrument,
		instrumented: make(map[string]Module),
		logger:       o.logger,
	}

	switch resolver.(type) {
	case nil:
		r.disable("no module resolver available")
	case *InterceptionRegistry:
		r.disable("module resolver is already intercepted")
	}
	if instrument == nil {
		r.disable("no instrument function")
	}

	return r
}

func (r *InterceptionRegistry) disable(reason string) {
	r.disabled = true
	r.warnOnce.Do(func() {
		r.logger.Warn("loader interception disabled, no timing data will be collected", slog.String("reason", reason))
	})
}

// Enabled reports whether the registry intercepts anything
func (r *InterceptionRegistry) Enabled() bool {
	return !r.disabled
}

// IsTarget reports whether id is one of the modules to intercept
func (r *InterceptionRegistry) IsTarget(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Contains(r.targets, id)
}

// AddTargets adds modules to intercept, e.g. the loaders of a resource that is about to be processed
func (r *InterceptionRegistry) AddTargets(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if !slices.Contains(r.targets, id) {
			r.targets = append(r.targets, id)
		}
	}
}

// Instrumented reports whether the module id has been instrumented
func (r *InterceptionRegistry) Instrumented(id string) bool {
	_, found := r.cached(id)
	return found
}

// Resolve resolves id through the inner resolver, returning the instrumented module for targets.
// Errors from the inner resolver are returned unchanged.
func (r *InterceptionRegistry) Resolve(id string) (Module, error) {
	if r.inner == nil {
		return nil, ErrNoResolver
	}
	if r.disabled || !r.IsTarget(id) {
		return r.inner.Resolve(id)
	}

	if m, found := r.cached(id); found {
		return m, nil
	}

	// The lock isn't held while resolving, resolution may resolve other loaders
	m, err := r.inner.Resolve(id)
	if err != nil {
		return m, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, found := r.instrumented[id]; found {
		return cached, nil
	}

	// A module can reach us already instrumented, e.g. through a second registry sharing the wrapper
	if !IsInstrumented(m) {
		m = r.instrument(m, id)
	}
	r.instrumented[id] = m

	r.logger.Debug("instrumented loader", slog.String("id", id), slog.String("shape", Classify(m).String()))

	return m, nil
}

func (r *InterceptionRegistry) cached(id string) (Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, found := r.instrumented[id]
	return m, found
}
