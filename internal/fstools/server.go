package fstools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/mcp-chat/internal/sandbox"
)

// Error codes for failures that are not sandbox policy.
const (
	CodeInvalidInput = "ERR_INVALID_INPUT"
	CodeIO           = "ERR_IO"
)

// NewServer returns an MCP server offering every Registry tool over root.
func NewServer(root *sandbox.Root, version string, logger *slog.Logger) *mcp.Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := mcp.NewServer(&mcp.Implementation{Name: "mcpchat-fs", Version: version}, nil)
	Register(srv, root, logger)
	return srv
}

// Register adds every Registry tool to srv.
func Register(srv *mcp.Server, root *sandbox.Root, logger *slog.Logger) {
	for _, def := range Registry() {
		srv.AddTool(&mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, handler(def, root, logger))
	}
}

// handler never returns a Go error: failures are is_error results the model can read.
func handler(def Definition, root *sandbox.Root, logger *slog.Logger) mcp.ToolHandler {
	return func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if len(args) == 0 {
			args = []byte("{}")
		}
		out, err := def.Function(root, args)
		if err != nil {
			te := asToolError(err)
			logger.Debug("tool failed", slog.String("tool", def.Name), slog.String("code", te.Code))
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: te.Error()}},
			}, nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: out}}}, nil
	}
}

func asToolError(err error) sandbox.ToolError {
	var te sandbox.ToolError
	if errors.As(err, &te) {
		return te
	}
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	if errors.Is(err, errInvalidEdit) || errors.Is(err, errOldStrRequired) || errors.Is(err, errOldStrNotFound) ||
		errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return sandbox.ToolError{Code: CodeInvalidInput, Message: err.Error()}
	}
	return sandbox.ToolError{Code: CodeIO, Message: err.Error()}
}
