package core

// errors.go defines the pipeline error taxonomy and user-facing messages.
//
// Taxonomy:
//   - ErrParse:          malformed or unreadable spreadsheet
//   - ErrNotFound:       unknown dataset or target
//   - ErrSchemaConflict: existing table for a target cannot accept the
//     columns now required
//   - ErrStorage:        DDL/DML failure
//
// Validation outcomes are NOT errors; they come back as ValidationResult
// data. Parse and storage errors abort the operation and propagate wrapped,
// so errors.Is works against the sentinels above.
//
// MapError translates technical errors into user-friendly messages with
// stable codes users can quote to support staff.

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error categories, matched with errors.Is.
var (
	ErrParse          = errors.New("spreadsheet parse failure")
	ErrNotFound       = errors.New("not found")
	ErrSchemaConflict = errors.New("schema conflict")
	ErrStorage        = errors.New("storage failure")
)

// ParseErr wraps err as a spreadsheet parse failure.
func ParseErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrParse, op, err)
}

// StorageErr wraps err as a storage failure.
func StorageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}

// UserMessage is a user-friendly rendering of a technical error.
type UserMessage struct {
	Code    string // Stable support reference, e.g. "STO001"
	Message string // What happened, in plain language
	Action  string // What the user can do about it
}

// errorMapping matches error text patterns to user messages.
// Evaluated in order; first match wins.
type errorMapping struct {
	patterns []string
	msg      UserMessage
}

var errorMappings = []errorMapping{
	{
		patterns: []string{"duplicate key", "unique constraint"},
		msg: UserMessage{
			Code:    "STO002",
			Message: "A record with this key already exists",
			Action:  "Check your file for duplicate entries",
		},
	},
	{
		patterns: []string{"connection refused", "connection reset"},
		msg: UserMessage{
			Code:    "STO003",
			Message: "Unable to reach the database",
			Action:  "Please try again in a few moments",
		},
	},
	{
		patterns: []string{"timeout", "context deadline exceeded"},
		msg: UserMessage{
			Code:    "STO004",
			Message: "The operation timed out",
			Action:  "Try a smaller file or try again later",
		},
	},
	{
		patterns: []string{"context canceled"},
		msg: UserMessage{
			Code:    "OP001",
			Message: "The operation was cancelled",
			Action:  "Start the upload again if this was not intended",
		},
	},
	{
		patterns: []string{"file too large"},
		msg: UserMessage{
			Code:    "FILE002",
			Message: "The file exceeds the maximum allowed size",
			Action:  "Split the file into smaller chunks",
		},
	},
}

// MapError converts a technical error into a user-facing message with a
// stable code. Sentinel categories are checked first, then text patterns;
// anything unrecognized gets the generic pipeline failure message.
func MapError(err error) UserMessage {
	switch {
	case errors.Is(err, ErrParse):
		return UserMessage{
			Code:    "FILE001",
			Message: "The file could not be read as a spreadsheet",
			Action:  "Ensure the file is a valid CSV or XLSX and re-export it if needed",
		}
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Code:    "REQ001",
			Message: "The requested target or dataset does not exist",
			Action:  "Check the identifier and try again",
		}
	case errors.Is(err, ErrSchemaConflict):
		return UserMessage{
			Code:    "STO005",
			Message: "The existing table for this target cannot accept this file's columns",
			Action:  "Review the file's headers against previous uploads for this target",
		}
	}

	text := strings.ToLower(err.Error())
	for _, m := range errorMappings {
		for _, p := range m.patterns {
			if strings.Contains(text, p) {
				return m.msg
			}
		}
	}

	if errors.Is(err, ErrStorage) {
		return UserMessage{
			Code:    "STO001",
			Message: "A database error occurred while loading the data",
			Action:  "Please try again; contact support if the problem persists",
		}
	}

	return UserMessage{
		Code:    "GEN001",
		Message: "An unexpected error occurred",
		Action:  "Please try again; contact support with this code if it persists",
	}
}
