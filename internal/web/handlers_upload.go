package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/hostledger/internal/core"
	"github.com/go-chi/chi/v5"
)

var (
	// errNoFile is mapped to FILE004 by core.MapError.
	errNoFile = errors.New("no file provided")
	// errFileTooLarge is mapped to FILE001 by core.MapError.
	errFileTooLarge = errors.New("file too large")
)

// handleImport validates and stores an uploaded CSV.
// The body is either a multipart form with a "file" part or the raw CSV text.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	importType := core.ImportType(chi.URLParam(r, "importType"))
	if _, err := core.ColumnSpecFor(importType); err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer s.limiter.Release()

	data, fileName, err := readUpload(w, r, s.cfg.Upload.MaxFileSize)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		respondError(w, r, err, status)
		return
	}
	if fileName == "" {
		fileName = string(importType) + ".csv"
	}

	result, err := s.service.Import(r.Context(), importType, fileName, data)
	if err != nil {
		respondError(w, r, err, importStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// importStatus maps an import failure to an HTTP status.
func importStatus(err error) int {
	switch {
	case core.IsStructural(err):
		return http.StatusUnprocessableEntity
	case core.IsStorage(err):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrUnknownImportType):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// readUpload returns the uploaded bytes and the client's file name, if any.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxSize); err != nil {
			if isTooLarge(err) {
				return nil, "", errFileTooLarge
			}
			return nil, "", fmt.Errorf("%w: %v", errNoFile, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", errNoFile
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		if isTooLarge(err) {
			return nil, "", errFileTooLarge
		}
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, "", errNoFile
	}
	return data, r.URL.Query().Get("filename"), nil
}

// isTooLarge reports whether err came from http.MaxBytesReader.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

// handleImportStatus returns the current state of the import limiter.
// Used for monitoring and to check if the system can accept more imports.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.limiter.Status())
}
