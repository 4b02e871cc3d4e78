package sop

import (
	"errors"
	"fmt"
)

// ErrInputUnavailable is returned when a required input has no geometry.
var ErrInputUnavailable = errors.New("sop: input geometry unavailable")

// Severity classifies cook diagnostics.
type Severity int

const (
	SeverityMessage Severity = iota
	SeverityWarning
	SeverityError
	SeverityAbort
)

func (s Severity) String() string {
	switch s {
	case SeverityMessage:
		return "message"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// CookError is a failed cook of one node.
type CookError struct {
	Node     string
	Severity Severity
	Err      error
}

func (e *CookError) Error() string {
	return fmt.Sprintf("sop: %s: %s: %v", e.Node, e.Severity, e.Err)
}

func (e *CookError) Unwrap() error {
	return e.Err
}

// WarnInterrupted is the warning attached to results of a cancelled cook.
const WarnInterrupted = "cook interrupted"
