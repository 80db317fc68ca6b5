// Package mcpclient connects to the tool executor: an MCP server reached over stdio,
// streamable HTTP or SSE.
package mcpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/mcp-chat/internal/catalog"
)

type Options struct {
	// ClientName and ClientVersion are reported during the handshake.
	ClientName    string
	ClientVersion string
	// ToolTimeout bounds each CallTool. Zero means no limit.
	ToolTimeout time.Duration
	// Stderr receives a subprocess server's stderr; nil means os.Stderr.
	Stderr io.Writer
	// Env replaces the subprocess environment when non-nil.
	Env    []string
	Logger *slog.Logger
}

// Session is a connected MCP client session. Close is idempotent.
type Session struct {
	cs      *mcp.ClientSession
	timeout time.Duration
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Connect resolves spec, starts or dials the server and completes the handshake.
// Every failure is a *catalog.ConnectionError.
func Connect(ctx context.Context, spec string, opts Options) (*Session, error) {
	target, err := ParseSpec(spec)
	if err != nil {
		return nil, &catalog.ConnectionError{Op: "connect", Err: err}
	}
	return ConnectTransport(ctx, transportFor(target, opts), opts)
}

func transportFor(t Target, opts Options) mcp.Transport {
	switch t.Kind {
	case KindStreamable:
		return &mcp.StreamableClientTransport{Endpoint: t.Endpoint}
	case KindSSE:
		return &mcp.SSEClientTransport{Endpoint: t.Endpoint}
	}
	// #nosec G204 -- the command comes from the user's own command line.
	cmd := exec.Command(t.Command, t.Args...)
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	return &mcp.CommandTransport{Command: cmd}
}

// ConnectTransport completes the handshake over an already built transport.
func ConnectTransport(ctx context.Context, t mcp.Transport, opts Options) (*Session, error) {
	name, version := opts.ClientName, opts.ClientVersion
	if name == "" {
		name = "mcp-chat"
	}
	if version == "" {
		version = "dev"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := mcp.NewClient(&mcp.Implementation{Name: name, Version: version}, nil)
	cs, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, &catalog.ConnectionError{Op: "connect", Err: err}
	}
	s := &Session{cs: cs, timeout: opts.ToolTimeout, logger: logger}
	if info := s.ServerInfo(); info != nil {
		logger.Debug("mcp session established", slog.String("server", info.Name), slog.String("version", info.Version))
	}
	return s, nil
}

// ServerInfo is the implementation reported by the server, if any.
func (s *Session) ServerInfo() *mcp.Implementation {
	if r := s.cs.InitializeResult(); r != nil {
		return r.ServerInfo
	}
	return nil
}

// ListTools returns every tool the server advertises, following pagination.
func (s *Session) ListTools(ctx context.Context) ([]*mcp.Tool, error) {
	var out []*mcp.Tool
	for tool, err := range s.cs.Tools(ctx, nil) {
		if err != nil {
			return nil, err
		}
		out = append(out, tool)
	}
	return out, nil
}

// CallTool performs one call, bounded by the configured tool timeout.
func (s *Session) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := s.cs.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return nil, fmt.Errorf("call tool %q: %w", name, err)
	}
	return res, nil
}

// Close ends the session and, for command transports, the server process.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.cs.Close()
		s.logger.Debug("mcp session closed", slog.Any("error", s.closeErr))
	})
	return s.closeErr
}
