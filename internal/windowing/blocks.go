package windowing

import (
	"log/slog"

	"github.com/petasbytes/mcp-chat/conversation"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
// Kind indicates whether it is a singleton or a validated pair.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupBlocks groups messages into atomic units that preserve tool-use pairs.
// Invariants:
// - A pair is exactly two adjacent messages: assistant(tool_use+...) then user(tool_result...).
// - In the user message, all tool_result blocks must come first; text (if any) comes after.
// - Parallel completeness: all tool_use ids in the assistant must appear as tool_result
// ids in the following user message's leading tool_result segment.
// - tool_result blocks with is_error=true are treated the same for grouping.
func GroupBlocks(msgs []conversation.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		m := msgs[i]
		if m.Role == conversation.RoleAssistant {
			useIDs := collectToolUseIDs(m)
			if len(useIDs) > 0 {
				if i+1 < len(msgs) && msgs[i+1].Role == conversation.RoleUser {
					valid, resultIDs := leadingToolResultIDs(msgs[i+1])
					if valid && sameIDs(resultIDs, useIDs) {
						groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
						i += 2
						continue
					}
					reason := "ordering_invalid"
					switch {
					case !valid:
					case !coversAll(resultIDs, useIDs):
						reason = "missing_results"
					default:
						reason = "extra_results"
					}
					slog.Debug("windowing: exclude pair", slog.String("reason", reason), slog.Int("idx", i))
				} else {
					slog.Debug("windowing: exclude pair", slog.String("reason", "not_followed_by_user"), slog.Int("idx", i))
				}
			}
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

type idSet map[string]struct{}

func collectToolUseIDs(m conversation.Message) idSet {
	ids := make(idSet)
	for _, u := range m.ToolUses() {
		if u.ID != "" {
			ids[u.ID] = struct{}{}
		}
	}
	return ids
}

// leadingToolResultIDs returns valid=false if a tool_result follows any other block,
// plus the ids of the leading tool_result segment.
func leadingToolResultIDs(m conversation.Message) (valid bool, ids idSet) {
	ids = make(idSet)
	seenOther := false
	for _, b := range m.Content {
		if b.ToolResult == nil {
			seenOther = true
			continue
		}
		if seenOther {
			return false, ids
		}
		if b.ToolResult.ToolUseID != "" {
			ids[b.ToolResult.ToolUseID] = struct{}{}
		}
	}
	return true, ids
}

func coversAll(have, required idSet) bool {
	for id := range required {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}

// sameIDs is strict: results for ids the assistant never used also break the pair.
func sameIDs(have, want idSet) bool {
	return len(have) == len(want) && coversAll(have, want)
}
