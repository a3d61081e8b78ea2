package core

// error_messages.go maps technical errors to messages users can act on.
//
// # Error Codes Reference
//
// Codes are quoted by users when reporting problems. Grouped by category:
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid file: File could not be read as a table
//	          Patterns: "invalid csv"
//
//	FILE003 - Unsupported type: File is not text or an Excel workbook
//	          Patterns: "unsupported content type"
//
//	FILE004 - No file: No file was selected
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file is empty
//	          Patterns: "empty file"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No table: Nothing has been uploaded in this session
//	         Patterns: "no table loaded"
//
//	SES002 - Session expired: Session not found or expired
//	         Patterns: "session not found"
//
// # Selection Errors (SEL001-SEL099)
//
//	SEL001 - Invalid selection: Column is not offered for this control
//	         Patterns: "invalid selection"
//
//	SEL002 - Unknown control: The control name is not recognized
//	         Patterns: "unknown control"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads being parsed
//	         Patterns: "too many concurrent uploads"
//
//	UPL004 - Request cancelled
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the original error.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins. Parse errors read "invalid csv: <file>: <cause>", so
// the cause-specific FILE patterns must come before FILE002.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific before general.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Upload a smaller file or a sample of the data",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Upload a smaller file or a sample of the data",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported content type",
		msg: UserMessage{
			Message: "File is not a CSV or Excel workbook",
			Action:  "Upload a comma-separated text file or an .xlsx workbook",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File could not be read as a table",
			Action:  "Ensure every row has the same number of comma-separated fields as the header",
			Code:    "FILE002",
		},
	},

	// Session errors
	{
		pattern: "no table loaded",
		msg: UserMessage{
			Message: "No data has been uploaded yet",
			Action:  "Upload a CSV file to start exploring",
			Code:    "SES001",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Your session has expired",
			Action:  "Upload the file again",
			Code:    "SES002",
		},
	},

	// Selection errors
	{
		pattern: "invalid selection",
		msg: UserMessage{
			Message: "That column cannot be used for this chart",
			Action:  "Pick one of the listed columns",
			Code:    "SEL001",
		},
	},
	{
		pattern: "unknown control",
		msg: UserMessage{
			Message: "Unknown chart control",
			Action:  "Reload the page and try again",
			Code:    "SEL002",
		},
	},

	// Upload errors
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// The first matching pattern wins; unknown errors map to ERR000.
//
// Example:
//
//	_, err := table.Load(ctx, "x.csv", []byte("a,b\n1,2,3\n"), table.Options{})
//	msg := MapError(err)
//	// msg.Code == "FILE002"
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

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
