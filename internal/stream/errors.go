package stream

import (
	"errors"
	"fmt"
)

// ErrUnclosedToolUse marks a tool_use block that was still open when another block started
// or when the stream ended.
var ErrUnclosedToolUse = errors.New("tool_use block was never closed")

// DecodeError reports a tool call that was dropped from the turn. It is collected in
// Result.DecodeErrors rather than returned.
type DecodeError struct {
	ToolUseID string
	ToolName  string
	// Input is the raw accumulated fragment buffer.
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode tool input for %s (%s): %v", e.ToolName, e.ToolUseID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
