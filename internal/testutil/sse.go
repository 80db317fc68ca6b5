// Package testutil provides fakes for the model API and the tool executor.
package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SSE builds a Messages API event stream body.
type SSE struct {
	b     strings.Builder
	index int
	done  bool
}

// NewSSE starts a stream with a message_start event.
func NewSSE() *SSE {
	s := &SSE{}
	s.Event("message_start", map[string]any{
		"type": "message_start",
		"message": map[string]any{
			"id": "msg_test", "type": "message", "role": "assistant", "model": "test-model",
			"content": []any{}, "stop_reason": nil, "stop_sequence": nil,
			"usage": map[string]any{"input_tokens": 1, "output_tokens": 1},
		},
	})
	return s
}

// Event appends one event with a JSON-encoded data line.
func (s *SSE) Event(name string, data any) *SSE {
	b, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return s.Raw(name, string(b))
}

// Raw appends one event with data written verbatim.
func (s *SSE) Raw(name, data string) *SSE {
	fmt.Fprintf(&s.b, "event: %s\ndata: %s\n\n", name, data)
	return s
}

// Text appends a complete text block streamed as the given chunks.
func (s *SSE) Text(chunks ...string) *SSE {
	i := s.next()
	s.Event("content_block_start", map[string]any{
		"type": "content_block_start", "index": i,
		"content_block": map[string]any{"type": "text", "text": ""},
	})
	for _, c := range chunks {
		s.Event("content_block_delta", map[string]any{
			"type": "content_block_delta", "index": i,
			"delta": map[string]any{"type": "text_delta", "text": c},
		})
	}
	return s.Stop(i)
}

// ToolUse appends a complete tool_use block whose input arrives as fragments.
func (s *SSE) ToolUse(id, name string, fragments ...string) *SSE {
	i := s.StartToolUse(id, name)
	for _, f := range fragments {
		s.JSONDelta(i, f)
	}
	return s.Stop(i)
}

// StartToolUse opens a tool_use block and returns its index.
func (s *SSE) StartToolUse(id, name string) int {
	i := s.next()
	s.Event("content_block_start", map[string]any{
		"type": "content_block_start", "index": i,
		"content_block": map[string]any{"type": "tool_use", "id": id, "name": name, "input": map[string]any{}},
	})
	return i
}

func (s *SSE) JSONDelta(index int, fragment string) *SSE {
	return s.Event("content_block_delta", map[string]any{
		"type": "content_block_delta", "index": index,
		"delta": map[string]any{"type": "input_json_delta", "partial_json": fragment},
	})
}

func (s *SSE) Stop(index int) *SSE {
	return s.Event("content_block_stop", map[string]any{"type": "content_block_stop", "index": index})
}

func (s *SSE) Ping() *SSE { return s.Raw("ping", `{"type":"ping"}`) }

// Error appends an in-stream error event.
func (s *SSE) Error(kind, message string) *SSE {
	return s.Event("error", map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": message},
	})
}

// End appends message_delta and message_stop. String calls it when needed.
func (s *SSE) End(stopReason string) *SSE {
	if s.done {
		return s
	}
	s.done = true
	s.Event("message_delta", map[string]any{
		"type":  "message_delta",
		"delta": map[string]any{"stop_reason": stopReason, "stop_sequence": nil},
		"usage": map[string]any{"output_tokens": 1},
	})
	return s.Event("message_stop", map[string]any{"type": "message_stop"})
}

func (s *SSE) String() string {
	s.End("end_turn")
	return s.b.String()
}

// Truncated returns the body without closing events, as if the connection dropped.
func (s *SSE) Truncated() string { return s.b.String() }

func (s *SSE) next() int {
	i := s.index
	s.index++
	return i
}
