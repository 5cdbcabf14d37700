package core

// error_messages.go maps technical errors to messages a user can act on.
//
// Each message carries a code for support reference. Codes are grouped by
// prefix:
//
//	DB   storage constraints, connectivity, timeouts
//	VAL  row and column validation
//	FILE uploaded file problems
//	CLS  email classification
//	IMP  import attempt handling
//	RATE request limits
//
// Patterns are matched case-insensitively against the error text, first
// match wins, so more specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage contains user-friendly error information.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Storage
	{"duplicate key", UserMessage{"A record with this reference already exists", "Check whether this file or email was already imported", "DB001"}},
	{"violates not-null", UserMessage{"A required value was missing when saving", "Check the record for empty required fields", "DB002"}},
	{"violates foreign key", UserMessage{"Referenced category does not exist", "Ask an administrator to add the category", "DB003"}},
	{"foreign key constraint", UserMessage{"Referenced category does not exist", "Ask an administrator to add the category", "DB003"}},
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"deadline exceeded", UserMessage{"Saving records timed out", "Try a smaller file or try again later", "DB006"}},
	{"timeout", UserMessage{"Saving records timed out", "Try a smaller file or try again later", "DB006"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// Validation
	{"invalid or missing date", UserMessage{"Invalid date format detected", "Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024", "VAL001"}},
	{"invalid or missing amount", UserMessage{"Invalid amount detected", "Use a non-negative number such as 1234.56", "VAL002"}},
	{"is required", UserMessage{"Required field is empty", "Ensure all required columns have values", "VAL003"}},
	{"missing required columns", UserMessage{"Required column is missing from CSV", "Check that all required columns are present in your file", "VAL004"}},
	{"invalid category", UserMessage{"Category is not in the allowed list", "Use one of the configured expense categories", "VAL006"}},

	// Files
	{"file too large", UserMessage{"File exceeds maximum size limit", "Split the file into smaller chunks", "FILE001"}},
	{"encoding", UserMessage{"File contains invalid characters", "Save file as UTF-8 encoding", "FILE003"}},
	{"no file provided", UserMessage{"No file was selected", "Please select a CSV file to upload", "FILE004"}},
	{"header row and at least one data row", UserMessage{"The uploaded file has no data rows", "Please upload a CSV file with a header and data rows", "FILE005"}},

	// Classification
	{"no matching parsing patterns", UserMessage{"Email was not recognized", "Forward a supported booking, payment, service, or receipt email", "CLS001"}},
	{"invalid message payload", UserMessage{"Email payload could not be read", "Send JSON with from, subject, and text or html", "CLS002"}},

	// Imports
	{"too many concurrent imports", UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "IMP001"}},
	{"unknown import type", UserMessage{"Unknown import type", "Use earnings or expenses", "IMP002"}},
	{"context canceled", UserMessage{"Request was cancelled", "Please try again", "IMP003"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned for unrecognized errors.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError returns a single display string: "Message (Code: X). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a known message.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
