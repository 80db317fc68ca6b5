package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// Error is a failed tool exchange. The turn ends unless the policy is Report.
type Error struct {
	ToolUseID string
	ToolName  string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tool %s (%s): %v", e.ToolName, e.ToolUseID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Policy decides what a failed exchange does to the rest of the turn.
type Policy int

const (
	// Abort stops at the first failure in tool order and returns it.
	Abort Policy = iota
	// Report turns each failure into an is_error tool result and keeps going.
	Report
)

func (p Policy) String() string {
	if p == Report {
		return "report"
	}
	return "abort"
}

// ParsePolicy accepts "abort", "report" or "" (abort).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return Abort, nil
	case "report":
		return Report, nil
	}
	return Abort, fmt.Errorf("unknown tool error policy %q (want abort or report)", s)
}
