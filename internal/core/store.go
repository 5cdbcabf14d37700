package core

import (
	"context"
	"time"
)

// Store persists records and serves the category reference set.
// Implementations must map a missing category to ErrCategoryNotFound.
type Store interface {
	Insert(ctx context.Context, rec Record) error
	InsertBatch(ctx context.Context, collection Collection, recs []Record) error
	Categories(ctx context.Context) ([]Category, error)
	CategoryByName(ctx context.Context, name string) (Category, error)
}

// AuditStore persists import log entries.
type AuditStore interface {
	InsertImportLog(ctx context.Context, entry AuditEntry) error
	ListImportLogs(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
	PurgeImportLogs(ctx context.Context, before time.Time) (int64, error)
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
