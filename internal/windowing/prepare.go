package windowing

import (
	"errors"
	"log/slog"

	"github.com/petasbytes/mcp-chat/conversation"
)

// ErrNewestOverBudget is returned by Window when even the newest group does not fit.
var ErrNewestOverBudget = errors.New("newest message group exceeds token budget")

// Stats summarizes the result of window preparation.
//
// Total counts included groups only. OverBudgetNewest is set when the newest group
// alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns the longest suffix of msgs (oldest→newest) that fits within
// budget without splitting a group. Groups are taken newest first and scanning stops
// at the first group that does not fit. If the newest group alone exceeds budget, or
// budget ≤ 0, the window is empty and OverBudgetNewest is set.
func PrepareSendWindow(msgs []conversation.Message, budget int, c TokenCounter) ([]conversation.Message, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}
	groups := GroupBlocks(msgs)
	over := Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	if budget <= 0 {
		return nil, over
	}

	total, included := 0, 0
	start := len(groups)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], msgs)
		if included == 0 && cost > budget {
			slog.Debug("windowing: newest group over budget", slog.Int("budget", budget), slog.Int("cost", cost))
			return nil, over
		}
		if total+cost > budget {
			break
		}
		total += cost
		included++
		start = gi
	}

	return msgs[groups[start].Start:], Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}

// Window windows a conversation log with the heuristic counter. The first message is
// the user's query and is always kept; only the groups after it are windowed, in the
// budget left over once the query is paid for. ErrNewestOverBudget is returned when
// the query plus the newest group do not fit.
func Window(msgs []conversation.Message, budget int) ([]conversation.Message, Stats, error) {
	var c HeuristicCounter
	if len(msgs) < 2 || msgs[0].Role != conversation.RoleUser {
		window, stats := PrepareSendWindow(msgs, budget, c)
		if stats.OverBudgetNewest {
			return nil, stats, ErrNewestOverBudget
		}
		return window, stats, nil
	}

	anchor := c.CountMessage(msgs[0])
	rest, stats := PrepareSendWindow(msgs[1:], budget-anchor, c)
	stats.Budget = budget
	if stats.OverBudgetNewest {
		stats.SkippedGroups++
		return nil, stats, ErrNewestOverBudget
	}
	stats.Total += anchor
	stats.IncludedGroups++

	window := make([]conversation.Message, 0, len(rest)+1)
	window = append(window, msgs[0])
	return append(window, rest...), stats, nil
}
