// Package catalog converts the tool listing reported by an MCP server into the
// descriptors offered to the model.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Descriptor is the model-facing description of one executor tool.
type Descriptor struct {
	Name        string
	Description string
	// InputSchema is always a JSON object.
	InputSchema map[string]any
}

// Lister is the part of an MCP session the catalog needs.
type Lister interface {
	ListTools(ctx context.Context) ([]*mcp.Tool, error)
}

// ErrInvalidSchema is returned when a tool's input schema is not a JSON object.
var ErrInvalidSchema = errors.New("input schema is not a JSON object")

// ConnectionError reports a failure to talk to the tool executor.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("tool executor %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// List fetches the executor's tools in the order reported. A listing failure is
// returned as *ConnectionError, never as an empty catalog.
func List(ctx context.Context, l Lister) ([]Descriptor, error) {
	tools, err := l.ListTools(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "list tools", Err: err}
	}
	out := make([]Descriptor, 0, len(tools))
	for _, t := range tools {
		if t == nil {
			continue
		}
		d, err := FromTool(t)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// FromTool converts a single MCP tool. A missing schema becomes {"type":"object"}.
func FromTool(t *mcp.Tool) (Descriptor, error) {
	schema, err := normalizeSchema(t.InputSchema)
	if err != nil {
		return Descriptor{}, fmt.Errorf("catalog: tool %q: %w", t.Name, err)
	}
	return Descriptor{Name: t.Name, Description: t.Description, InputSchema: schema}, nil
}

func normalizeSchema(v any) (map[string]any, error) {
	var raw []byte
	switch s := v.(type) {
	case nil:
		return map[string]any{"type": "object"}, nil
	case map[string]any:
		return withObjectType(s), nil
	case json.RawMessage:
		raw = s
	case []byte:
		raw = s
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		raw = b
	}
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]any{"type": "object"}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return withObjectType(m), nil
}

func withObjectType(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{"type": "object"}
	}
	if _, ok := m["type"]; ok {
		return m
	}
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out["type"] = "object"
	return out
}

// Names returns the tool names in catalog order.
func Names(descs []Descriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Name
	}
	return out
}
