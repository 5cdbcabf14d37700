package core

import (
	"fmt"
	"strings"
)

// ColumnRole is the logical meaning of a CSV column.
type ColumnRole string

const (
	RoleDate        ColumnRole = "date"
	RoleAmount      ColumnRole = "amount"
	RoleSource      ColumnRole = "source"
	RoleRecipient   ColumnRole = "recipient"
	RoleDescription ColumnRole = "description"
	RoleCategory    ColumnRole = "category"
	RoleNotes       ColumnRole = "notes"
)

// FieldType represents the expected data type for a CSV column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
)

// ColumnRule binds a logical column to the header keyword that locates it.
// A header cell resolves the column when its lower-cased text contains Keyword.
type ColumnRule struct {
	Role     ColumnRole
	Keyword  string
	Type     FieldType
	Required bool
}

// ColumnSpec describes the columns of one kind of tabular import.
type ColumnSpec struct {
	ImportType ImportType
	Collection Collection
	Columns    []ColumnRule
}

// EarningsColumns is the column spec for earnings imports.
var EarningsColumns = ColumnSpec{
	ImportType: ImportEarnings,
	Collection: CollectionEarnings,
	Columns: []ColumnRule{
		{Role: RoleDate, Keyword: "date", Type: FieldDate, Required: true},
		{Role: RoleAmount, Keyword: "amount", Type: FieldNumeric, Required: true},
		{Role: RoleSource, Keyword: "source", Type: FieldText, Required: true},
		{Role: RoleDescription, Keyword: "description", Type: FieldText, Required: true},
		{Role: RoleNotes, Keyword: "note", Type: FieldText},
	},
}

// ExpenseColumns is the column spec for expense imports.
var ExpenseColumns = ColumnSpec{
	ImportType: ImportExpenses,
	Collection: CollectionExpenses,
	Columns: []ColumnRule{
		{Role: RoleDate, Keyword: "date", Type: FieldDate, Required: true},
		{Role: RoleAmount, Keyword: "amount", Type: FieldNumeric, Required: true},
		{Role: RoleRecipient, Keyword: "recipient", Type: FieldText, Required: true},
		{Role: RoleCategory, Keyword: "category", Type: FieldEnum, Required: true},
		{Role: RoleDescription, Keyword: "description", Type: FieldText},
		{Role: RoleNotes, Keyword: "note", Type: FieldText},
	},
}

// ColumnSpecFor returns the column spec for an import type.
func ColumnSpecFor(t ImportType) (ColumnSpec, error) {
	switch t {
	case ImportEarnings:
		return EarningsColumns, nil
	case ImportExpenses:
		return ExpenseColumns, nil
	}
	return ColumnSpec{}, fmt.Errorf("%w: %q", ErrUnknownImportType, t)
}

// ColumnIndex maps logical columns to their position in a row.
type ColumnIndex map[ColumnRole]int

// ResolveColumns locates every column of spec in header, which must already be
// cleaned and lower-cased. The first header cell containing a rule's keyword wins.
// Returns a *StructuralError naming every required column that could not be found.
func ResolveColumns(header []string, spec ColumnSpec) (ColumnIndex, error) {
	idx := make(ColumnIndex, len(spec.Columns))
	var missing []string

	for _, rule := range spec.Columns {
		pos := -1
		for i, h := range header {
			if strings.Contains(h, rule.Keyword) {
				pos = i
				break
			}
		}
		if pos < 0 {
			if rule.Required {
				missing = append(missing, string(rule.Role))
			}
			continue
		}
		idx[rule.Role] = pos
	}

	if len(missing) > 0 {
		return nil, &StructuralError{Message: "missing required columns", Missing: missing}
	}
	return idx, nil
}
