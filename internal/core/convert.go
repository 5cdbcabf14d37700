package core

// convert.go provides the value coercion shared by both ingestion front-ends.
//
// Two families live here:
//   - Parse* functions are strict and report failure; the tabular validator
//     turns a failure into a row error.
//   - Coerce* functions never fail; the email normalizer falls back to a
//     default (zero, or the injected clock's now) so that its output is always
//     insertable.
//
// The ToPg* helpers convert typed record values into pgtype values with
// Valid=false for empty input, letting the database store NULL.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// ordinalRegex matches day suffixes such as "15th" so they can be dropped before parsing.
var ordinalRegex = regexp.MustCompile(`(\d)(st|nd|rd|th)\b`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years more than this many years after now's year are assumed to be in the
// previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006",
		"2 Jan 2006", "2 January 2006",
		"Mon, Jan 2, 2006", "Monday, January 2, 2006", "Mon, January 2, 2006",
		"20060102",
	}
	dateTimeLayouts = []string{
		time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04",
		time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822,
		"Jan 2, 2006 3:04 PM", "Jan 2, 2006 at 3:04 PM", "Jan 2, 2006, 3:04 PM",
		"January 2, 2006 3:04 PM", "January 2, 2006 at 3:04 PM", "January 2, 2006, 3:04 PM",
		"Mon, Jan 2, 2006 3:04 PM", "Mon, Jan 2, 2006 at 3:04 PM",
		"1/2/2006 3:04 PM", "01/02/2006 3:04 PM", "1/2/2006 15:04",
	}
)

// ParseAmount parses a monetary amount, tolerating currency symbols,
// thousands separators, and accounting format (parentheses for negative).
// Returns false if the text is blank or not a number.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// CoerceAmount keeps only digits and dots and parses the rest.
// Anything unparseable becomes zero.
func CoerceAmount(s string) decimal.Decimal {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDate parses a date in any of the supported layouts. now anchors the
// two-digit year pivot. Returns false if the text is blank or matches no layout.
func ParseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, false
	}
	s = ordinalRegex.ReplaceAllString(s, "$1")

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := now.Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// CoerceDate parses s, falling back to now when it cannot.
func CoerceDate(s string, now time.Time) time.Time {
	if t, ok := ParseDate(s, now); ok {
		return t
	}
	return now
}

// CoerceCount keeps only the digits of s. Anything unparseable, or too large
// for a 32-bit column, becomes zero.
func CoerceCount(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil || n > math.MaxInt32 {
		return 0
	}
	return n
}

// SenderDomain returns the lower-cased domain of an address such as
// "Turo <noreply@Turo.com>". Returns "" when there is no '@'.
func SenderDomain(from string) string {
	at := strings.LastIndex(from, "@")
	if at < 0 {
		return ""
	}
	domain := from[at+1:]
	if end := strings.IndexAny(domain, "> \t"); end >= 0 {
		domain = domain[:end]
	}
	return strings.ToLower(strings.TrimSpace(domain))
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a time to pgtype.Date, dropping the time of day.
// Returns invalid for the zero time.
func ToPgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{Valid: false}
	}
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ToPgTimestamptz converts a time to pgtype.Timestamptz.
// Returns invalid for the zero time.
func ToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// ToPgNumeric converts a decimal to pgtype.Numeric.
func ToPgNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// ToPgInt4 converts an int to pgtype.Int4.
// Returns invalid if the value is zero or outside the int32 range.
func ToPgInt4(i int) pgtype.Int4 {
	if i == 0 || i > math.MaxInt32 || i < math.MinInt32 {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

// ToPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func ToPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
