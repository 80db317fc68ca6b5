package conversation

import (
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TextBlock is assistant or user prose.
type TextBlock struct {
	Text string `json:"text"`
}

// ToolUse is a fully materialized tool call requested by the model.
// Input is always a parsed JSON object.
type ToolUse struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// InputJSON returns the compact JSON encoding of Input ("{}" when empty).
func (u ToolUse) InputJSON() []byte {
	if len(u.Input) == 0 {
		return []byte("{}")
	}
	b, err := json.Marshal(u.Input)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Result part types.
const (
	PartText  = "text"
	PartImage = "image"
)

// ResultPart is one piece of the payload returned by the tool executor.
type ResultPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	// Data holds base64-encoded bytes for image parts.
	Data string `json:"data,omitempty"`
}

// ToolResult answers the ToolUse with the same ID.
type ToolResult struct {
	ToolUseID string       `json:"tool_use_id"`
	Content   []ResultPart `json:"content"`
	IsError   bool         `json:"is_error,omitempty"`
}

// Text concatenates the text parts of the result.
func (r ToolResult) Text() string {
	var out string
	for _, p := range r.Content {
		if p.Type == PartText {
			out += p.Text
		}
	}
	return out
}

// Block is a tagged variant: exactly one field is non-nil.
type Block struct {
	Text       *TextBlock  `json:"text,omitempty"`
	ToolUse    *ToolUse    `json:"tool_use,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

func NewText(text string) Block { return Block{Text: &TextBlock{Text: text}} }

func NewToolUse(u ToolUse) Block { return Block{ToolUse: &u} }

func NewToolResult(r ToolResult) Block { return Block{ToolResult: &r} }

// Kind reports the block type using the Messages API names.
func (b Block) Kind() string {
	switch {
	case b.Text != nil:
		return "text"
	case b.ToolUse != nil:
		return "tool_use"
	case b.ToolResult != nil:
		return "tool_result"
	}
	return ""
}

type Message struct {
	Role    Role    `json:"role"`
	Content []Block `json:"content"`
}

func NewUserMessage(blocks ...Block) Message {
	return Message{Role: RoleUser, Content: blocks}
}

func NewAssistantMessage(blocks ...Block) Message {
	return Message{Role: RoleAssistant, Content: blocks}
}

// ToolUses returns the tool_use blocks of m in order.
func (m Message) ToolUses() []ToolUse {
	var out []ToolUse
	for _, b := range m.Content {
		if b.ToolUse != nil {
			out = append(out, *b.ToolUse)
		}
	}
	return out
}

// Validate checks that every block carries exactly one variant and that tool blocks
// carry the id that pairs them.
func (m Message) Validate() error {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return fmt.Errorf("conversation: invalid role %q", m.Role)
	}
	for i, b := range m.Content {
		n := 0
		if b.Text != nil {
			n++
		}
		if b.ToolUse != nil {
			n++
		}
		if b.ToolResult != nil {
			n++
		}
		if n != 1 {
			return fmt.Errorf("conversation: block %d has %d variants set", i, n)
		}
		if b.ToolUse != nil && b.ToolUse.ID == "" {
			return fmt.Errorf("conversation: block %d: tool_use without id", i)
		}
		if b.ToolResult != nil && b.ToolResult.ToolUseID == "" {
			return fmt.Errorf("conversation: block %d: tool_result without tool_use_id", i)
		}
	}
	return nil
}
