package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/mcp-chat/conversation"
	"github.com/petasbytes/mcp-chat/internal/metrics"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m conversation.Message) int
	CountGroup(g Group, all []conversation.Message) int
}

// HeuristicCounter is the default deterministic estimator.
// Rules:
// - text blocks: rune count of the text
// - tool_result blocks: runes of the text parts; images count overhead only
// - tool_use blocks: runes of the name plus the encoded input when non-empty
// Every block adds a small fixed overhead for formatting.
type HeuristicCounter struct{}

// Fixed per-block overhead for deterministic counts; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m conversation.Message) int {
	total := 0
	for _, b := range m.Content {
		total += countBlock(b)
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []conversation.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}

func countBlock(b conversation.Block) int {
	switch {
	case b.Text != nil:
		return utf8.RuneCountInString(b.Text.Text) + blockOverhead
	case b.ToolResult != nil:
		return metrics.ResultRunes(b.ToolResult.Content) + blockOverhead
	case b.ToolUse != nil:
		n := utf8.RuneCountInString(b.ToolUse.Name)
		if len(b.ToolUse.Input) > 0 {
			n += utf8.RuneCount(b.ToolUse.InputJSON())
		}
		return n + blockOverhead
	}
	return blockOverhead
}
