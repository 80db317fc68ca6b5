package dispatch

import (
	"encoding/base64"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/mcp-chat/conversation"
)

// Normalize converts an executor reply into the tool result for useID. Text and images
// pass through; other content kinds are carried as their JSON wire form in a text part.
// With no content at all, structured content (if any) is rendered as JSON text.
func Normalize(useID string, res *mcp.CallToolResult) conversation.ToolResult {
	out := conversation.ToolResult{ToolUseID: useID}
	if res == nil {
		return out
	}
	out.IsError = res.IsError
	for _, c := range res.Content {
		if p, ok := normalizeContent(c); ok {
			out.Content = append(out.Content, p)
		}
	}
	if len(out.Content) == 0 && res.StructuredContent != nil {
		if b, err := json.Marshal(res.StructuredContent); err == nil {
			out.Content = append(out.Content, conversation.ResultPart{Type: conversation.PartText, Text: string(b)})
		}
	}
	return out
}

func normalizeContent(c mcp.Content) (conversation.ResultPart, bool) {
	switch v := c.(type) {
	case nil:
		return conversation.ResultPart{}, false
	case *mcp.TextContent:
		return conversation.ResultPart{Type: conversation.PartText, Text: v.Text}, true
	case *mcp.ImageContent:
		return conversation.ResultPart{
			Type:     conversation.PartImage,
			MIMEType: v.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(v.Data),
		}, true
	default:
		b, err := c.MarshalJSON()
		if err != nil {
			return conversation.ResultPart{}, false
		}
		return conversation.ResultPart{Type: conversation.PartText, Text: string(b)}, true
	}
}
