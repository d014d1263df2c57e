package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrUnknownRuleset = errors.New("unknown_ruleset")
	ErrUnknownRule    = errors.New("unknown_matching_rule")
	ErrEmptyInput     = errors.New("empty_input")
	ErrAuditMismatch  = errors.New("audit_mismatch")
)

// ValidationError represents a schema failure at the import boundary:
// a missing mandatory field, an unrecognized type, or a malformed number
// or timestamp. The matching engine never sees invalid records.
type ValidationError struct {
	Row     int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return e.Message
}
