package core

// tabular.go validates delimited text batches.
//
// The flow is:
//  1. Split the text into lines and drop blank ones
//  2. Resolve logical columns from the header once for the whole batch
//  3. Validate every data row independently, in parallel, collecting every
//     failing check
//  4. Partition rows into accepted and rejected, preserving input order
//
// Rows are split one line at a time, so quoted cells cannot span lines.

import (
	"encoding/csv"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SplitMode selects how a line is split into cells.
type SplitMode int

const (
	// SplitQuoted honors double quotes, so "Smith, John" stays one cell.
	SplitQuoted SplitMode = iota
	// SplitNaive splits on every comma.
	SplitNaive
)

// TabularConfig holds options for the tabular validator.
// Zero values get defaults.
type TabularConfig struct {
	Workers int              // Rows validated concurrently (default: GOMAXPROCS)
	Split   SplitMode        // Cell splitting mode (default: SplitQuoted)
	Now     func() time.Time // Clock for CreatedAt (default: time.Now)
}

// TabularResult is the partition of a validated batch.
type TabularResult struct {
	Header   []string
	Total    int
	Accepted []AcceptedRow
	Rejected []RejectedRow
}

// TabularValidator validates CSV batches against a column spec.
type TabularValidator struct {
	workers int
	split   SplitMode
	now     func() time.Time
}

// NewTabularValidator creates a validator.
func NewTabularValidator(cfg TabularConfig) *TabularValidator {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TabularValidator{workers: cfg.Workers, split: cfg.Split, now: cfg.Now}
}

// rowOutcome is the result for one data row; exactly one field is set.
type rowOutcome struct {
	accepted *AcceptedRow
	rejected *RejectedRow
}

// Validate checks text against spec. categories is the reference set for
// category columns and may be nil for specs without one.
// A *StructuralError is returned when the batch has no data rows or the
// header lacks a required column; row problems are reported in the result.
func (v *TabularValidator) Validate(text string, spec ColumnSpec, categories []Category) (*TabularResult, error) {
	lines := nonBlankLines(text)
	if len(lines) < 2 {
		return nil, &StructuralError{Message: "file must contain a header row and at least one data row"}
	}

	header := v.splitRow(lines[0])
	for i, h := range header {
		header[i] = strings.ToLower(h)
	}

	idx, err := ResolveColumns(header, spec)
	if err != nil {
		return nil, err
	}

	cats := newCategorySet(categories)
	rows := lines[1:]
	outcomes := make([]rowOutcome, len(rows))
	now := v.now()

	var g errgroup.Group
	g.SetLimit(v.workers)
	for i, line := range rows {
		g.Go(func() error {
			outcomes[i] = v.validateRow(i+2, line, spec, idx, cats, now)
			return nil
		})
	}
	_ = g.Wait()

	result := &TabularResult{Header: header, Total: len(rows)}
	for _, o := range outcomes {
		if o.rejected != nil {
			result.Rejected = append(result.Rejected, *o.rejected)
			continue
		}
		result.Accepted = append(result.Accepted, *o.accepted)
	}
	return result, nil
}

// validateRow runs every check for one row and builds its record when all pass.
func (v *TabularValidator) validateRow(rowNum int, line string, spec ColumnSpec, idx ColumnIndex, cats categorySet, now time.Time) rowOutcome {
	cells := v.splitRow(line)

	var (
		errs     []ValidationError
		date     time.Time
		amount   decimal.Decimal
		category Category
		text     = make(map[ColumnRole]string, len(spec.Columns))
	)

	for _, rule := range spec.Columns {
		value := ""
		if pos, ok := idx[rule.Role]; ok && pos < len(cells) {
			value = cells[pos]
		}

		switch rule.Type {
		case FieldDate:
			t, verr := checkDate(rule, value, now)
			if verr != nil {
				errs = append(errs, *verr)
			}
			date = t
		case FieldNumeric:
			d, verr := checkAmount(rule, value)
			if verr != nil {
				errs = append(errs, *verr)
			}
			amount = d
		case FieldEnum:
			c, verr := checkCategory(rule, value, cats)
			if verr != nil {
				errs = append(errs, *verr)
			}
			category = c
		default:
			if verr := checkText(rule, value); verr != nil {
				errs = append(errs, *verr)
			}
			text[rule.Role] = value
		}
	}

	if len(errs) > 0 {
		messages := make([]string, len(errs))
		for i, e := range errs {
			messages[i] = e.Message
		}
		return rowOutcome{rejected: &RejectedRow{
			Row:    rowNum,
			Data:   strings.Join(cells, ", "),
			Errors: messages,
		}}
	}

	var rec Record
	switch spec.Collection {
	case CollectionExpenses:
		rec = &ExpenseRecord{
			ID:          uuid.NewString(),
			Date:        date,
			Amount:      amount,
			Recipient:   text[RoleRecipient],
			CategoryID:  category.ID,
			Category:    category.Name,
			Description: text[RoleDescription],
			Notes:       text[RoleNotes],
			CreatedAt:   now,
		}
	default:
		rec = &EarningRecord{
			ID:          uuid.NewString(),
			Date:        date,
			Amount:      amount,
			Source:      text[RoleSource],
			Description: text[RoleDescription],
			Notes:       text[RoleNotes],
			CreatedAt:   now,
		}
	}
	return rowOutcome{accepted: &AcceptedRow{Row: rowNum, Record: rec}}
}

// splitRow splits a line into cleaned cells.
func (v *TabularValidator) splitRow(line string) []string {
	var cells []string
	if v.split == SplitQuoted {
		r := csv.NewReader(strings.NewReader(line))
		r.LazyQuotes = true
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		rec, err := r.Read()
		if err == nil {
			cells = rec
		}
	}
	if cells == nil {
		cells = strings.Split(line, ",")
	}
	for i, c := range cells {
		cells[i] = CleanCell(c)
	}
	return cells
}

// nonBlankLines splits text on any line break and drops whitespace-only lines.
func nonBlankLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
