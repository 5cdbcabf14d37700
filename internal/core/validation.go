package core

// validation.go provides cell-level checks for tabular rows.
//
// Every check runs for every row so that a rejected row reports all of its
// problems at once. Validation errors include the column, the offending value,
// and a human-readable message.

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError represents a single failed check on a cell.
type ValidationError struct {
	Field   string // Logical column
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// categorySet is the expense category reference set, keyed by lower-cased name.
type categorySet struct {
	byName  map[string]Category
	allowed string
}

func newCategorySet(categories []Category) categorySet {
	set := categorySet{byName: make(map[string]Category, len(categories))}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			continue
		}
		if _, dup := set.byName[key]; !dup {
			names = append(names, c.Name)
		}
		set.byName[key] = c
	}
	set.allowed = strings.Join(names, ", ")
	if set.allowed == "" {
		set.allowed = "(none)"
	}
	return set
}

func (s categorySet) lookup(name string) (Category, bool) {
	c, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// checkDate validates a date cell. now anchors two-digit years.
func checkDate(rule ColumnRule, value string, now time.Time) (time.Time, *ValidationError) {
	t, ok := ParseDate(value, now)
	if !ok {
		return time.Time{}, &ValidationError{Field: string(rule.Role), Value: value, Message: "invalid or missing date"}
	}
	return t, nil
}

// checkAmount validates a non-negative monetary cell.
func checkAmount(rule ColumnRule, value string) (decimal.Decimal, *ValidationError) {
	d, ok := ParseAmount(value)
	if !ok || d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: string(rule.Role), Value: value, Message: "invalid or missing amount"}
	}
	return d, nil
}

// checkText validates a free-text cell. Only required columns can fail.
func checkText(rule ColumnRule, value string) *ValidationError {
	if rule.Required && value == "" {
		return &ValidationError{Field: string(rule.Role), Message: fmt.Sprintf("%s is required", rule.Role)}
	}
	return nil
}

// checkCategory validates a category cell against the reference set.
// Blank and unknown values each produce exactly one error naming the allowed set.
func checkCategory(rule ColumnRule, value string, set categorySet) (Category, *ValidationError) {
	if value == "" {
		return Category{}, &ValidationError{
			Field:   string(rule.Role),
			Message: fmt.Sprintf("category is required; allowed: %s", set.allowed),
		}
	}
	c, ok := set.lookup(value)
	if !ok {
		return Category{}, &ValidationError{
			Field:   string(rule.Role),
			Value:   value,
			Message: fmt.Sprintf("invalid category %q; allowed: %s", value, set.allowed),
		}
	}
	return c, nil
}
