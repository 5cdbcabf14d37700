package core

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// utf8BOM is the byte order mark Excel writes at the start of UTF-8 CSV exports.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SanitizeText prepares uploaded bytes for validation: a leading UTF-8 BOM is
// removed and invalid UTF-8 sequences are replaced with U+FFFD.
func SanitizeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}
