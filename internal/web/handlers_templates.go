package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleImportTemplate returns a CSV with just the header row an import accepts.
func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	importType := core.ImportType(chi.URLParam(r, "importType"))
	spec, err := core.ColumnSpecFor(importType)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_template.csv"`, importType))

	csvWriter := csv.NewWriter(w)
	_ = csvWriter.Write(templateHeader(spec))
	csvWriter.Flush()
}

// templateHeader returns a display header for each column of spec.
func templateHeader(spec core.ColumnSpec) []string {
	header := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		role := string(c.Role)
		header[i] = strings.ToUpper(role[:1]) + role[1:]
	}
	return header
}
