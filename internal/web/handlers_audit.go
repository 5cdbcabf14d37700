package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/hostledger/internal/core"
)

// importLogsResponse is the body of GET /api/import-logs.
type importLogsResponse struct {
	Logs  []core.AuditEntry `json:"logs"`
	Count int               `json:"count"`
}

// handleImportLogs lists recent import attempts, newest first.
// Query params: type (earnings, expenses, email), limit.
func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	filter := core.AuditFilter{
		ImportType: core.ImportType(r.URL.Query().Get("type")),
		Limit:      parseIntParam(r, "limit", core.DefaultAuditListLimit),
	}
	switch filter.ImportType {
	case "", core.ImportEarnings, core.ImportExpenses, core.ImportEmail:
	default:
		respondError(w, r, fmt.Errorf("%w: %s", core.ErrUnknownImportType, filter.ImportType), http.StatusBadRequest)
		return
	}

	logs, err := s.service.ImportLogs(r.Context(), filter)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []core.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, importLogsResponse{Logs: logs, Count: len(logs)})
}
