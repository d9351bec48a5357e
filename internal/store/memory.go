package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by tests and local development. It
// implements the same revision semantics as the persistent backends.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Fetch(_ context.Context, key string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) FetchField(_ context.Context, key, field string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[key]
	if !ok {
		return "", false, nil
	}
	v, ok := rec[field]
	return v, ok, nil
}

func (m *Memory) Create(_ context.Context, key string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[key]; ok {
		return ErrExists
	}
	stored := rec.Clone()
	stored[FieldRev] = firstRev
	m.records[key] = stored
	return nil
}

func (m *Memory) Write(_ context.Context, key string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := rec.Clone()
	if prev, ok := m.records[key]; ok {
		stored[FieldRev] = nextRev(prev[FieldRev])
	} else {
		stored[FieldRev] = firstRev
	}
	m.records[key] = stored
	return nil
}

func (m *Memory) Update(_ context.Context, key string, fields Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		rec[k] = v
	}
	rec[FieldRev] = nextRev(rec[FieldRev])
	return nil
}

func (m *Memory) UpdateIf(_ context.Context, key string, fields Record, rev string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return ErrNotFound
	}
	if rec[FieldRev] != rev {
		return ErrConflict
	}
	for k, v := range fields {
		rec[k] = v
	}
	rec[FieldRev] = nextRev(rev)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[key]; !ok {
		return ErrNotFound
	}
	delete(m.records, key)
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.records[key]
	return ok, nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }
