package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCategoryNotFound is returned by stores when a category name has no match.
var ErrCategoryNotFound = errors.New("category not found")

// ErrUnknownImportType is returned for import types without a column spec.
var ErrUnknownImportType = errors.New("unknown import type")

// StructuralError aborts a tabular batch before any row is validated.
type StructuralError struct {
	Message string
	Missing []string // Logical columns that could not be resolved
}

func (e *StructuralError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
	}
	return e.Message
}

// StorageError wraps a failed write to a collection.
type StorageError struct {
	Collection Collection
	Op         string
	Err        error
}

func (e *StorageError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStructural reports whether err is, or wraps, a *StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// IsStorage reports whether err is, or wraps, a *StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
