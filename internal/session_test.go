package internal

import (
	"path/filepath"
	"reflect"
	"testing"
)

const ownLoaderPath = "/app/node_modules/loadmeasure/loader.js"

func TestSession(t *testing.T) {
	clock := &manualClock{ms: 5000}

	var callback Callback
	resolver := newFakeResolver(map[string]Module{
		babelPath: LoaderFunc(upper),
		"/app/node_modules/ts-loader/index.js": LoaderFunc(func(ctx LoaderContext, _ []byte) ([]byte, error) {
			callback = ctx.Async()
			return nil, nil
		}),
		ownLoaderPath: LoaderFunc(upper),
	})

	s := NewSession(resolver, DefaultConfig(), WithClock(clock.now), WithLogger(discardLogger()))
	if !s.Registry().Enabled() {
		t.Fatalf("Expected interception to be enabled")
	}

	ctx := &fakeContext{
		resource: "a.ts",
		loaders:  []string{babelPath, "/app/node_modules/ts-loader/index.js", ownLoaderPath},
	}
	s.Pitch(ctx)

	if s.Registry().IsTarget(ownLoaderPath) {
		t.Errorf("Expected our own loader not to be a target")
	}

	for _, path := range ctx.loaders {
		m, err := s.Resolve(path)
		if err != nil {
			t.Fatalf("Failed to resolve %s: %v", path, err)
		}
		clock.advance(10)
		if _, err := m.(LoaderFunc)(ctx, []byte("x")); err != nil {
			t.Fatalf("Unexpected error from %s: %v", path, err)
		}
	}
	clock.advance(30)
	callback(nil, nil)

	// babel ran at 5010, ts-loader from 5020 to 5060, our own loader wasn't measured
	records := s.Recorder().Records()
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %+v", records)
	}

	a := s.Analyse()
	if len(a.Loaders) != 2 || a.Loaders[0].Name != "ts-loader" || a.Loaders[0].TotalActiveTime != 40 {
		t.Errorf("Expected ts-loader with 40ms first, got %+v", a.Loaders)
	}
	if len(a.Chains) != 1 || a.Chains[0].Range != (Range{50, 50}) {
		t.Errorf("Expected a.ts to take 50ms, got %+v", a.Chains)
	}

	filename := filepath.Join(t.TempDir(), "session.cbor")
	if err := s.Save(filename); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	seq := NewEventLogSequence()
	if err := seq.LoadEventLogFile(filename); err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if got := len(seq.Records()); got != 2 {
		t.Errorf("Expected 2 records after loading, got %d", got)
	}
	if got := seq.Logs[0].DateString(); got != "1970-01-01" {
		t.Errorf("Expected the session's start date, got %s", got)
	}
}

func TestSession_Independent(t *testing.T) {
	resolver := newFakeResolver(map[string]Module{babelPath: LoaderFunc(upper)})
	config := Config{Targets: []string{babelPath}, Exclude: []string{DefaultExclude}}

	first := NewSession(resolver, config, WithLogger(discardLogger()))
	second := NewSession(resolver, config, WithLogger(discardLogger()))

	m, err := first.Resolve(babelPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := m.(LoaderFunc)(&fakeContext{resource: "a.js"}, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(first.Recorder().Records()) != 1 {
		t.Errorf("Expected a record in the first session")
	}
	if len(second.Recorder().Events()) != 0 || second.Registry().Instrumented(babelPath) {
		t.Errorf("Expected the second session to be untouched")
	}
}

func TestSession_NoResolver(t *testing.T) {
	s := NewSession(nil, DefaultConfig(), WithLogger(discardLogger()))

	if s.Registry().Enabled() {
		t.Errorf("Expected interception to be disabled")
	}
	// Pitching still works, there's just nothing to measure
	s.Pitch(&fakeContext{resource: "a.js", loaders: []string{babelPath}})
	s.Pitch(nil)

	if a := s.Analyse(); a.Records != 0 {
		t.Errorf("Expected no records, got %d", a.Records)
	}
}

func TestSession_LocalLoader(t *testing.T) {
	const localPath = "/app/loaders/my-loader.js"

	resolver := newFakeResolver(map[string]Module{localPath: LoaderFunc(upper)})
	s := NewSession(resolver, DefaultConfig(), WithLogger(discardLogger()))

	ctx := &fakeContext{resource: "a.js", loaders: []string{localPath}}
	s.Pitch(ctx)

	m, err := s.Resolve(localPath)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := m.(LoaderFunc)(ctx, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	a := s.Analyse()
	if len(a.Loaders) != 1 || a.Loaders[0].Name != localPath {
		t.Errorf("Expected the local loader to be named by its path, got %+v", a.Loaders)
	}
	if len(a.Chains) != 1 || !reflect.DeepEqual(a.Chains[0].Loaders, []string{localPath}) {
		t.Errorf("Expected a.js under the local loader's chain, got %+v", a.Chains)
	}
}
