// Command fsserver is an MCP server on stdio offering read_file, list_files and
// edit_file over a sandboxed directory.
//
// MCPC_FS_ROOT sets the sandbox (default: the working directory) and
// MCPC_FS_WRITE_ROOT optionally confines writes to a different directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/petasbytes/mcp-chat/internal/config"
	"github.com/petasbytes/mcp-chat/internal/fstools"
	"github.com/petasbytes/mcp-chat/internal/sandbox"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, &mcp.StdioTransport{}); err != nil {
		fmt.Fprintf(os.Stderr, "fsserver: %v\n", err)
		os.Exit(1)
	}
}

// serve runs until the client disconnects or ctx is done. Logs go to stderr; stdout
// carries the protocol.
func serve(ctx context.Context, t mcp.Transport) error {
	level, err := config.ParseLevel(os.Getenv(config.EnvLogLevel))
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	root, err := sandbox.FromEnv()
	if err != nil {
		return err
	}
	logger.Info("serving", slog.String("read_root", root.ReadRoot()), slog.String("write_root", root.WriteRoot()))
	return fstools.NewServer(root, version, logger).Run(ctx, t)
}
