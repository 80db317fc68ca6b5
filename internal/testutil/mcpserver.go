package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Recorder keeps the tool calls a demo server received.
type Recorder struct {
	mu    sync.Mutex
	calls []RecordedCall
}

type RecordedCall struct {
	Name string
	Args map[string]any
}

func (r *Recorder) add(name string, raw json.RawMessage) {
	var args map[string]any
	_ = json.Unmarshal(raw, &args)
	r.mu.Lock()
	r.calls = append(r.calls, RecordedCall{Name: name, Args: args})
	r.mu.Unlock()
}

func (r *Recorder) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedCall(nil), r.calls...)
}

// NewDemoServer returns an MCP server with a small fixed tool set:
//
//	get_weather  {city}      text "Sunny, 22C in <city>"
//	add          {a, b}      text sum
//	fail         {}          is_error result "tool failed"
//	explode      {}          handler error (JSON-RPC error on the client)
//	snapshot     {}          one image part
func NewDemoServer(rec *Recorder) *mcp.Server {
	if rec == nil {
		rec = &Recorder{}
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "demo", Version: "v0.0.1"}, nil)

	object := func(props map[string]any, required ...string) map[string]any {
		m := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			m["required"] = required
		}
		return m
	}

	s.AddTool(&mcp.Tool{
		Name:        "get_weather",
		Description: "Current weather for a city",
		InputSchema: object(map[string]any{"city": map[string]any{"type": "string"}}, "city"),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec.add("get_weather", req.Params.Arguments)
		var in struct {
			City string `json:"city"`
		}
		if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
			return nil, err
		}
		return text("Sunny, 22C in " + in.City), nil
	})

	s.AddTool(&mcp.Tool{
		Name:        "add",
		Description: "Add two numbers",
		InputSchema: object(map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		}, "a", "b"),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec.add("add", req.Params.Arguments)
		var in struct {
			A, B float64
		}
		if err := json.Unmarshal(req.Params.Arguments, &in); err != nil {
			return nil, err
		}
		return text(fmt.Sprint(in.A + in.B)), nil
	})

	s.AddTool(&mcp.Tool{
		Name:        "fail",
		Description: "Always reports a tool error",
		InputSchema: object(map[string]any{}),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec.add("fail", req.Params.Arguments)
		res := text("tool failed")
		res.IsError = true
		return res, nil
	})

	s.AddTool(&mcp.Tool{
		Name:        "explode",
		Description: "Handler error",
		InputSchema: object(map[string]any{}),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec.add("explode", req.Params.Arguments)
		return nil, errors.New("exploded")
	})

	s.AddTool(&mcp.Tool{
		Name:        "snapshot",
		Description: "Returns a tiny image",
		InputSchema: object(map[string]any{}),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rec.add("snapshot", req.Params.Arguments)
		return &mcp.CallToolResult{Content: []mcp.Content{
			&mcp.ImageContent{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"},
		}}, nil
	})
	return s
}

func text(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: s}}}
}

// ServeInMemory connects srv to one end of an in-memory pipe and returns the other end
// for a client. The server session is closed when the test ends.
func ServeInMemory(t testing.TB, srv *mcp.Server) mcp.Transport {
	t.Helper()
	serverT, clientT := mcp.NewInMemoryTransports()
	ss, err := srv.Connect(context.Background(), serverT, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = ss.Close() })
	return clientT
}
