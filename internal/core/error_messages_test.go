package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "duplicate key", err: errors.New("ERROR: duplicate key value violates unique constraint"), wantCode: "DB001"},
		{name: "foreign key", err: errors.New("violates foreign key constraint \"expenses_category_id_fkey\""), wantCode: "DB003"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantCode: "DB004"},
		{name: "deadline", err: errors.New("insert expenses: context deadline exceeded"), wantCode: "DB006"},
		{name: "bad date", err: errors.New("invalid or missing date"), wantCode: "VAL001"},
		{name: "bad amount", err: errors.New("invalid or missing amount"), wantCode: "VAL002"},
		{name: "missing columns", err: &StructuralError{Message: "missing required columns", Missing: []string{"source"}}, wantCode: "VAL004"},
		{name: "bad category", err: errors.New(`invalid category "Toys"; allowed: Fuel`), wantCode: "VAL006"},
		{name: "empty file", err: &StructuralError{Message: "file must contain a header row and at least one data row"}, wantCode: "FILE005"},
		{name: "no match", err: errors.New(NoMatchMessage), wantCode: "CLS001"},
		{name: "limiter", err: ErrTooManyImports, wantCode: "IMP001"},
		{name: "unknown import type", err: fmt.Errorf("%w: payroll", ErrUnknownImportType), wantCode: "IMP002"},
		{name: "wrapped storage error", err: &StorageError{Collection: CollectionTrips, Op: "insert", Err: errors.New("connection reset by peer")}, wantCode: "DB005"},
		{name: "case insensitive", err: errors.New("DUPLICATE KEY value violates"), wantCode: "DB001"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() message is empty")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(errors.New("duplicate key value violates"))
	want := "A record with this reference already exists (Code: DB001). Check whether this file or email was already imported"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "known error is user facing", err: errors.New("duplicate key"), want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}
