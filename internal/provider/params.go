package provider

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/mcp-chat/conversation"
	"github.com/petasbytes/mcp-chat/internal/catalog"
)

// MessageParams converts the conversation into request messages, preserving order.
func MessageParams(msgs []conversation.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
		for _, b := range m.Content {
			if p, ok := blockParam(b); ok {
				blocks = append(blocks, p)
			}
		}
		role := anthropic.MessageParamRoleUser
		if m.Role == conversation.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}
	return out
}

func blockParam(b conversation.Block) (anthropic.ContentBlockParamUnion, bool) {
	switch {
	case b.Text != nil:
		return anthropic.NewTextBlock(b.Text.Text), true
	case b.ToolUse != nil:
		var input any = b.ToolUse.Input
		if b.ToolUse.Input == nil {
			input = map[string]any{}
		}
		return anthropic.NewToolUseBlock(b.ToolUse.ID, input, b.ToolUse.Name), true
	case b.ToolResult != nil:
		return anthropic.ContentBlockParamUnion{OfToolResult: toolResultParam(*b.ToolResult)}, true
	}
	return anthropic.ContentBlockParamUnion{}, false
}

func toolResultParam(r conversation.ToolResult) *anthropic.ToolResultBlockParam {
	p := &anthropic.ToolResultBlockParam{ToolUseID: r.ToolUseID}
	if r.IsError {
		p.IsError = anthropic.Bool(true)
	}
	for _, part := range r.Content {
		switch part.Type {
		case conversation.PartText:
			// The API rejects empty text blocks.
			if part.Text == "" {
				continue
			}
			p.Content = append(p.Content, anthropic.ToolResultBlockParamContentUnion{
				OfText: &anthropic.TextBlockParam{Text: part.Text},
			})
		case conversation.PartImage:
			p.Content = append(p.Content, anthropic.ToolResultBlockParamContentUnion{
				OfImage: &anthropic.ImageBlockParam{
					Source: anthropic.ImageBlockParamSourceUnion{
						OfBase64: &anthropic.Base64ImageSourceParam{
							Data:      part.Data,
							MediaType: anthropic.Base64ImageSourceMediaType(part.MIMEType),
						},
					},
				},
			})
		}
	}
	return p
}

// ToolParams offers the catalog to the model. Properties and required keys map onto the
// typed fields; every other schema keyword travels as an extra field.
func ToolParams(descs []catalog.Descriptor) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(descs))
	for _, d := range descs {
		tp := &anthropic.ToolParam{
			Name:        d.Name,
			InputSchema: inputSchema(d.InputSchema),
		}
		if d.Description != "" {
			tp.Description = anthropic.String(d.Description)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: tp})
	}
	return out
}

func inputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	var s anthropic.ToolInputSchemaParam
	for k, v := range schema {
		switch k {
		case "type":
		case "properties":
			s.Properties = v
		case "required":
			s.Required = stringList(v)
		default:
			if s.ExtraFields == nil {
				s.ExtraFields = make(map[string]any)
			}
			s.ExtraFields[k] = v
		}
	}
	return s
}

func stringList(v any) []string {
	switch xs := v.(type) {
	case []string:
		return xs
	case []any:
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
