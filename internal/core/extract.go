package core

import (
	"regexp"
	"strings"
)

// FieldPattern names a value to pull out of a message body.
// When Pattern has a capture group the first group is kept, otherwise the whole match.
type FieldPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// ExtractedFields maps field names to the trimmed text captured for them.
type ExtractedFields map[string]string

// Extract applies every pattern to text and returns the fields that matched.
// Fields whose capture trims to the empty string are left out.
func Extract(text string, patterns []FieldPattern) ExtractedFields {
	fields := make(ExtractedFields, len(patterns))
	for _, p := range patterns {
		if p.Pattern == nil {
			continue
		}
		m := p.Pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		fields[p.Name] = v
	}
	return fields
}
