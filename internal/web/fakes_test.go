package web

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/hostledger/internal/config"
	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/JonMunkholm/hostledger/internal/core/rules"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory core.Store, core.AuditStore and core.Pinger.
type fakeStore struct {
	mu      sync.Mutex
	records map[core.Collection][]core.Record
	logs    []core.AuditEntry

	insertErr error
	pingErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[core.Collection][]core.Record)}
}

func (f *fakeStore) Insert(_ context.Context, rec core.Record) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.Collection()] = append(f.records[rec.Collection()], rec)
	return nil
}

func (f *fakeStore) InsertBatch(_ context.Context, c core.Collection, recs []core.Record) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[c] = append(f.records[c], recs...)
	return nil
}

var fakeCategories = []core.Category{
	{ID: "4f8e8a8c-0d7c-4f6e-9a55-1d2f3c4b5a61", Name: "Fuel"},
	{ID: "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d", Name: "Other"},
}

func (f *fakeStore) Categories(context.Context) ([]core.Category, error) {
	return fakeCategories, nil
}

func (f *fakeStore) CategoryByName(_ context.Context, name string) (core.Category, error) {
	for _, c := range fakeCategories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return core.Category{}, core.ErrCategoryNotFound
}

func (f *fakeStore) InsertImportLog(_ context.Context, e core.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, e)
	return nil
}

func (f *fakeStore) ListImportLogs(_ context.Context, filter core.AuditFilter) ([]core.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.AuditEntry
	for i := len(f.logs) - 1; i >= 0 && len(out) < filter.Limit; i-- {
		if filter.ImportType == "" || f.logs[i].ImportType == filter.ImportType {
			out = append(out, f.logs[i])
		}
	}
	return out, nil
}

func (f *fakeStore) PurgeImportLogs(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) count(c core.Collection) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[c])
}

// testConfig returns a config with small limits and rate limiting off.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second},
		Upload: config.UploadConfig{
			MaxFileSize:    64 << 10,
			MaxMessageSize: 16 << 10,
			MaxConcurrent:  2,
			MaxWaitTime:    20 * time.Millisecond,
		},
		Rate:   config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100, ImportLimit: 10},
		Ingest: config.IngestConfig{StoreTimeout: time.Second},
	}
}

// newTestServer builds a server over store with the built-in rule table.
func newTestServer(t *testing.T, store *fakeStore, cfg *config.Config) *Server {
	t.Helper()
	table, err := rules.Default()
	require.NoError(t, err)

	svc := core.NewService(store, store, table, core.ServiceConfig{StoreTimeout: cfg.Ingest.StoreTimeout})
	s := NewServer(svc, cfg)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}
