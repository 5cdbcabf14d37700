package core

import (
	"strings"
	"time"
)

// AuditEntry records the outcome of one ingestion attempt.
type AuditEntry struct {
	ID                string       `json:"id"`
	ImportType        ImportType   `json:"importType"`
	FileName          string       `json:"filename,omitempty"`
	TotalRecords      int          `json:"totalRecords"`
	SuccessfulRecords int          `json:"successfulRecords"`
	FailedRecords     int          `json:"failedRecords"`
	Errors            []AuditError `json:"errors"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// AuditError is one problem recorded with an audit entry.
type AuditError struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// AuditFilter selects entries for ListImportLogs.
type AuditFilter struct {
	ImportType ImportType // Empty matches every type
	Limit      int
}

// DefaultAuditListLimit caps listings that do not set a limit.
const DefaultAuditListLimit = 50

// MaxAuditListLimit is the largest limit a listing may request.
const MaxAuditListLimit = 500

// Normalize clamps the filter's limit into range.
func (f AuditFilter) Normalize() AuditFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultAuditListLimit
	}
	if f.Limit > MaxAuditListLimit {
		f.Limit = MaxAuditListLimit
	}
	return f
}

// rejectedRowErrors converts rejected rows into audit errors.
func rejectedRowErrors(rows []RejectedRow) []AuditError {
	out := make([]AuditError, 0, len(rows))
	for _, r := range rows {
		out = append(out, AuditError{
			Message: strings.Join(r.Errors, "; "),
			Data:    map[string]any{"row": r.Row, "data": r.Data},
		})
	}
	return out
}
