package core

import (
	"context"
	"strings"
	"sync"
	"time"
)

// memStore is an in-memory Store and AuditStore for tests.
type memStore struct {
	mu         sync.Mutex
	records    map[Collection][]Record
	categories []Category
	logs       []AuditEntry

	insertErr   error
	batchErr    error
	categoryErr error
	logErr      error
	insertDelay time.Duration
}

func newMemStore(categories ...Category) *memStore {
	return &memStore{
		records:    make(map[Collection][]Record),
		categories: categories,
	}
}

func (m *memStore) Insert(ctx context.Context, rec Record) error {
	if m.insertDelay > 0 {
		select {
		case <-time.After(m.insertDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.Collection()] = append(m.records[rec.Collection()], rec)
	return nil
}

func (m *memStore) InsertBatch(_ context.Context, c Collection, recs []Record) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[c] = append(m.records[c], recs...)
	return nil
}

func (m *memStore) Categories(context.Context) ([]Category, error) {
	if m.categoryErr != nil {
		return nil, m.categoryErr
	}
	return m.categories, nil
}

func (m *memStore) CategoryByName(_ context.Context, name string) (Category, error) {
	if m.categoryErr != nil {
		return Category{}, m.categoryErr
	}
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Category{}, ErrCategoryNotFound
}

func (m *memStore) InsertImportLog(_ context.Context, e AuditEntry) error {
	if m.logErr != nil {
		return m.logErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, e)
	return nil
}

func (m *memStore) ListImportLogs(_ context.Context, f AuditFilter) ([]AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []AuditEntry
	for i := len(m.logs) - 1; i >= 0 && len(out) < f.Limit; i-- {
		if f.ImportType == "" || m.logs[i].ImportType == f.ImportType {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

func (m *memStore) PurgeImportLogs(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.logs[:0]
	var n int64
	for _, e := range m.logs {
		if e.CreatedAt.Before(before) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.logs = kept
	return n, nil
}

func (m *memStore) count(c Collection) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[c])
}

func (m *memStore) auditLogs() []AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AuditEntry, len(m.logs))
	copy(out, m.logs)
	return out
}

// fixedClock returns a clock that always reports t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var testCategories = []Category{
	{ID: "4f8e8a8c-0d7c-4f6e-9a55-1d2f3c4b5a61", Name: "Fuel"},
	{ID: "9b1c2d3e-4f50-4a6b-8c7d-8e9f0a1b2c3d", Name: "Insurance"},
	{ID: "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d", Name: "Other"},
}
