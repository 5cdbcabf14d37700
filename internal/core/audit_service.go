package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AuditService records import attempts.
// Logging is best effort: a failed write never changes the outcome of the
// attempt being logged.
type AuditService struct {
	store AuditStore
	now   func() time.Time
}

// NewAuditService creates a new audit service. A nil clock uses time.Now.
func NewAuditService(store AuditStore, now func() time.Time) *AuditService {
	if now == nil {
		now = time.Now
	}
	return &AuditService{store: store, now: now}
}

// LogImport writes entry, filling in its ID and timestamp.
// Errors are logged and swallowed.
func (a *AuditService) LogImport(ctx context.Context, entry AuditEntry) {
	if a == nil || a.store == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = a.now()
	}
	if entry.Errors == nil {
		entry.Errors = []AuditError{}
	}

	// The attempt's context may already be cancelled; the log should still land.
	ctx = context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.store.InsertImportLog(ctx, entry); err != nil {
		slog.Warn("failed to write import log",
			"import_type", entry.ImportType,
			"filename", entry.FileName,
			"error", err,
		)
	}
}

// List returns recent entries, newest first.
func (a *AuditService) List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	return a.store.ListImportLogs(ctx, filter.Normalize())
}

// Purge deletes entries older than retention.
func (a *AuditService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return a.store.PurgeImportLogs(ctx, a.now().Add(-retention))
}
