// Command mcpchat is an interactive chat client that lets a Claude model call the
// tools of one MCP server.
//
// Usage:
//
//	mcpchat <server.py | server.js | command [args...] | http(s)://... | sse://...>
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/petasbytes/mcp-chat/internal/catalog"
	"github.com/petasbytes/mcp-chat/internal/config"
	"github.com/petasbytes/mcp-chat/internal/mcpclient"
	"github.com/petasbytes/mcp-chat/internal/provider"
	"github.com/petasbytes/mcp-chat/internal/runner"
	"github.com/petasbytes/mcp-chat/internal/telemetry"
)

var version = "dev"

func main() {
	// Graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	signal.Stop(sigch)
	cancel()
	os.Exit(code)
}

// run is main without the process plumbing. Every exit path closes the session.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: mcpchat <path_to_server_script | command | url>")
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	telemetry.SetObserve(cfg.ObserveJSON)
	// The server subprocess copies its stderr from another goroutine.
	stderr = &lockedWriter{w: stderr}
	logger := cfg.Logger(stderr)

	sess, err := mcpclient.Connect(ctx, strings.Join(args, " "), mcpclient.Options{
		ClientName:    "mcpchat",
		ClientVersion: version,
		ToolTimeout:   cfg.ToolTimeout,
		Stderr:        stderr,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer sess.Close()

	tools, err := catalog.List(ctx, sess)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "\nConnected to server with tools: %s\n", strings.Join(catalog.Names(tools), ", "))

	client := provider.NewAnthropicClient(provider.ClientConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	r := runner.New(provider.NewModel(client, cfg.Model, cfg.MaxTokens, cfg.SystemPrompt), sess, runner.Options{
		Policy:        cfg.Policy(),
		Parallelism:   cfg.ParallelTools,
		MaxToolRounds: cfg.MaxToolRounds,
		TokenBudget:   cfg.TokenBudget,
		ValidateArgs:  cfg.ValidateToolArgs,
		Out:           stdout,
		Logger:        logger,
	})
	return chatLoop(ctx, r, stdin, stdout, stderr)
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func chatLoop(ctx context.Context, r *runner.Runner, stdin io.Reader, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, "\nMCP Client Started!")
	fmt.Fprintln(stdout, "Type your queries or 'quit' to exit.")

	// stdin reader goroutine -> lines into channel
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		fmt.Fprint(stdout, "\n"+colorize("94", "Query")+": ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return 0
		case line, ok = <-lines:
		}
		if !ok {
			break
		}

		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") {
			return 0
		}

		fmt.Fprintln(stdout)
		turn, err := r.ProcessQuery(ctx, query)
		if err != nil {
			fmt.Fprintf(stderr, "\n%s %v\n", colorize("91", "Error:"), err)
			if ctx.Err() != nil {
				return 0
			}
			continue
		}
		if n := len(turn.Pending); n > 0 {
			fmt.Fprintf(stdout, "(%d more tool call(s) requested; not run)\n", n)
		}
	}

	select {
	case err := <-readErr:
		if err != nil {
			fmt.Fprintf(stderr, "warning: stdin read error: %v\n", err)
		}
	default:
	}
	fmt.Fprintln(stdout)
	return 0
}

// colorize wraps s in an ANSI color unless NO_COLOR is set.
func colorize(code, s string) string {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return s
	}
	return "\u001b[" + code + "m" + s + "\u001b[0m"
}
