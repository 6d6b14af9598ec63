// Package store provides SessionRepository implementations: a local file
// for a single client device, a Redis hash for shared kiosk deployments,
// and an in-memory fallback.
package store

import (
	"context"
	"sync"

	"github.com/snapmatch/client-engine/internal/core/ports"
)

// Memory is a process-local SessionRepository. It backs tests and the
// degraded mode where no persistence medium is available: the engine keeps
// working against an always-forgettable store rather than failing.
type Memory struct {
	mu  sync.Mutex
	rec ports.SessionRecord
	ok  bool
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, rec ports.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	m.ok = true
	return nil
}

func (m *Memory) Load(_ context.Context) (ports.SessionRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, m.ok, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = ports.SessionRecord{}
	m.ok = false
	return nil
}
