package brain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// memKV is an in-memory KV for tests.
type memKV struct {
	data   map[string]string
	getErr error
	setErr error
	sets   int
	mu     sync.Mutex
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

var errStorage = errors.New("storage unavailable")

// recordingObserver captures observed routes and note outcomes.
type recordingObserver struct {
	routes []Route
	notes  []bool
}

func (o *recordingObserver) ObserveTurn(route Route, _ time.Duration) {
	o.routes = append(o.routes, route)
}

func (o *recordingObserver) ObserveNote(accepted bool) {
	o.notes = append(o.notes, accepted)
}

func newTestEngine(kv KV, opts ...Option) *Engine {
	base := []Option{
		WithRand(rand.New(rand.NewSource(42))),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(kv, append(base, opts...)...)
}
