// Package metrics derives size features from text and tool payloads. The values feed
// telemetry events and the windowing heuristics; raw content never leaves this package.
package metrics

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/petasbytes/mcp-chat/conversation"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountFeatures computes and returns byte, rune, word, and line counts for the input string.
func CountFeatures(s string) Features {
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: countLines(s),
	}
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}

// PayloadSize is the decoded byte size of a tool result: text bytes plus the
// binary length of base64 image data.
func PayloadSize(parts []conversation.ResultPart) int {
	n := 0
	for _, p := range parts {
		switch p.Type {
		case conversation.PartText:
			n += len(p.Text)
		case conversation.PartImage:
			n += base64.StdEncoding.DecodedLen(len(p.Data))
		}
	}
	return n
}

// ResultRunes counts the runes of the text parts of a tool result.
func ResultRunes(parts []conversation.ResultPart) int {
	n := 0
	for _, p := range parts {
		if p.Type == conversation.PartText {
			n += utf8.RuneCountInString(p.Text)
		}
	}
	return n
}
