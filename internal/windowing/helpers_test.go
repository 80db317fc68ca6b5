package windowing_test

import (
	"github.com/petasbytes/mcp-chat/conversation"
	"github.com/petasbytes/mcp-chat/internal/windowing"
)

// Text block constructor
func T(text string) conversation.Block { return conversation.NewText(text) }

// Tool-use block constructor (no name or input: costs overhead only)
func TU(id string) conversation.Block {
	return conversation.NewToolUse(conversation.ToolUse{ID: id})
}

// Tool-result (no payload), with optional error flag - used by grouping tests where payload length is irrelevant
func TR(id string, isErr bool) conversation.Block {
	return conversation.NewToolResult(conversation.ToolResult{ToolUseID: id, IsError: isErr})
}

// Tool-result (single text part) constructor - preferred in counter tests for deterministic sizing
func TRString(id, s string) conversation.Block {
	return conversation.NewToolResult(conversation.ToolResult{
		ToolUseID: id,
		Content:   []conversation.ResultPart{{Type: conversation.PartText, Text: s}},
	})
}

// Tool-result with several parts - used by counter tests for multi-part payload handling
func TRParts(id string, parts ...conversation.ResultPart) conversation.Block {
	return conversation.NewToolResult(conversation.ToolResult{ToolUseID: id, Content: parts})
}

// Assistant message constructor
func Asst(blocks ...conversation.Block) conversation.Message {
	return conversation.NewAssistantMessage(blocks...)
}

// User message constructor
func User(blocks ...conversation.Block) conversation.Message {
	return conversation.NewUserMessage(blocks...)
}

// Intervening returns a message that simply breaks adjacency between
// assistant(tool_use) and the expected next user(tool_result).
func Intervening(text string) conversation.Message {
	return Asst(T(text))
}

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
