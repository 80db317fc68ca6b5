package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petasbytes/mcp-chat/conversation"
	"github.com/petasbytes/mcp-chat/internal/catalog"
	"github.com/petasbytes/mcp-chat/internal/dispatch"
	"github.com/petasbytes/mcp-chat/internal/stream"
	"github.com/petasbytes/mcp-chat/internal/telemetry"
	"github.com/petasbytes/mcp-chat/internal/windowing"
)

// Streamer starts one streamed model response for the given log and tools.
type Streamer interface {
	Stream(ctx context.Context, msgs []conversation.Message, tools []catalog.Descriptor) stream.Source
}

// Executor is a connected tool server. *mcpclient.Session satisfies it.
type Executor interface {
	catalog.Lister
	dispatch.Caller
}

type Options struct {
	Policy dispatch.Policy
	// Parallelism > 1 dispatches that many calls of one batch at once.
	Parallelism int
	// MaxToolRounds bounds how many batches of tool calls one query dispatches.
	// Zero means 1.
	MaxToolRounds int
	// TokenBudget > 0 windows every request to the query plus the newest groups that fit.
	TokenBudget int
	// ValidateArgs checks tool arguments against their input schema before calling.
	ValidateArgs bool
	// Out receives streamed text, tool call notices and decode warnings. Nil discards.
	Out            io.Writer
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
}

type Runner struct {
	model     Streamer
	exec      Executor
	opts      Options
	maxRounds int
	out       io.Writer
	logger    *slog.Logger
	tracer    trace.Tracer
}

func New(model Streamer, exec Executor, opts Options) *Runner {
	r := &Runner{
		model:     model,
		exec:      exec,
		opts:      opts,
		maxRounds: opts.MaxToolRounds,
		out:       opts.Out,
		logger:    opts.Logger,
		tracer:    telemetry.Tracer(opts.TracerProvider),
	}
	if r.maxRounds < 1 {
		r.maxRounds = 1
	}
	if r.out == nil {
		r.out = io.Discard
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Turn is the outcome of one query. It is returned alongside an error too, holding
// whatever was done before the failure.
type Turn struct {
	ID  string
	Log *conversation.Log
	// Text is the text of every model response, one per line.
	Text string
	// Rounds counts dispatched tool batches.
	Rounds int
	// Pending holds tool calls from the last response that the round limit kept from
	// being dispatched.
	Pending      []conversation.ToolUse
	DecodeErrors []*stream.DecodeError
}

// ModelError is a failed model request or a stream that broke off.
type ModelError struct {
	Round int
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model request (round %d): %v", e.Round, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// ProcessQuery runs one query to completion. Errors are one of *catalog.ConnectionError,
// *dispatch.Error, *ModelError or windowing.ErrNewestOverBudget; none of them is retried.
func (r *Runner) ProcessQuery(ctx context.Context, query string) (turn *Turn, err error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	ctx, span := r.tracer.Start(ctx, "runner.process_query", trace.WithAttributes(
		attribute.String("turn.id", turnID),
	))
	start := time.Now()
	turn = &Turn{ID: turnID, Log: conversation.NewLog(query)}
	var texts []string

	defer func() {
		turn.Text = strings.Join(texts, "\n")
		fields := map[string]any{
			"rounds":        turn.Rounds,
			"messages":      turn.Log.Len(),
			"pending":       len(turn.Pending),
			"decode_errors": len(turn.DecodeErrors),
			"duration_ms":   time.Since(start).Milliseconds(),
			"error":         nil,
		}
		span.SetAttributes(attribute.Int("turn.rounds", turn.Rounds))
		if err != nil {
			fields["error"] = errorClass(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, errorClass(err))
		}
		telemetry.EmitTurn(ctx, "turn_done", fields)
		span.End()
	}()

	telemetry.EmitQueryFeatures(ctx, query)

	descs, err := catalog.List(ctx, r.exec)
	if err != nil {
		return turn, err
	}
	disp := r.dispatcher(descs)

	for round := 0; ; round++ {
		res, err := r.decode(ctx, turn.Log, descs, round)
		if res != nil {
			turn.DecodeErrors = append(turn.DecodeErrors, res.DecodeErrors...)
			if err == nil && res.Text != "" {
				texts = append(texts, res.Text)
			}
		}
		if err != nil {
			return turn, err
		}
		r.warn(res.DecodeErrors)

		// A response with neither text nor tool calls leaves the log as it was.
		if blocks := res.Blocks(); len(blocks) > 0 {
			if err := turn.Log.Append(conversation.NewAssistantMessage(blocks...)); err != nil {
				return turn, fmt.Errorf("append assistant message: %w", err)
			}
		}
		if len(res.ToolUses) == 0 {
			return turn, nil
		}
		if turn.Rounds >= r.maxRounds {
			turn.Pending = res.ToolUses
			r.logger.Debug("tool calls left undispatched", slog.Int("count", len(res.ToolUses)), slog.Int("max_rounds", r.maxRounds))
			return turn, nil
		}

		for _, use := range res.ToolUses {
			fmt.Fprintf(r.out, "\n[Calling tool %s with args %s]\n", use.Name, use.InputJSON())
		}
		results, err := disp.InvokeAll(ctx, res.ToolUses)
		if err != nil {
			return turn, err
		}
		turn.Rounds++

		blocks := make([]conversation.Block, 0, len(results))
		for _, tr := range results {
			blocks = append(blocks, conversation.NewToolResult(tr))
		}
		if err := turn.Log.Append(conversation.NewUserMessage(blocks...)); err != nil {
			return turn, fmt.Errorf("append tool results: %w", err)
		}
	}
}

// dispatcher is rebuilt per query because the validation index follows the catalog.
func (r *Runner) dispatcher(descs []catalog.Descriptor) *dispatch.Dispatcher {
	opts := []dispatch.Option{
		dispatch.WithPolicy(r.opts.Policy),
		dispatch.WithParallelism(r.opts.Parallelism),
		dispatch.WithLogger(r.logger),
		dispatch.WithTracerProvider(r.opts.TracerProvider),
	}
	if r.opts.ValidateArgs {
		opts = append(opts, dispatch.WithIndex(catalog.NewIndex(descs, r.logger)))
	}
	return dispatch.New(r.exec, opts...)
}

// decode sends the (possibly windowed) log and folds the streamed reply.
func (r *Runner) decode(ctx context.Context, log *conversation.Log, descs []catalog.Descriptor, round int) (*stream.Result, error) {
	msgs := log.Messages()
	if r.opts.TokenBudget > 0 {
		window, stats, err := windowing.Window(msgs, r.opts.TokenBudget)
		telemetry.EmitTurn(ctx, "window_prepared", map[string]any{
			"round":              round,
			"budget":             stats.Budget,
			"total_estimated":    stats.Total,
			"included_groups":    stats.IncludedGroups,
			"skipped_groups":     stats.SkippedGroups,
			"over_budget_newest": stats.OverBudgetNewest,
		})
		r.logger.Debug("window prepared",
			slog.Int("budget", stats.Budget), slog.Int("est_total", stats.Total),
			slog.Int("groups_in", stats.IncludedGroups), slog.Int("groups_skip", stats.SkippedGroups))
		if err != nil {
			return nil, fmt.Errorf("token budget %d: %w", r.opts.TokenBudget, err)
		}
		msgs = window
	}

	ctx, span := r.tracer.Start(ctx, "model.stream", trace.WithAttributes(
		attribute.Int("model.round", round),
		attribute.Int("model.messages", len(msgs)),
		attribute.Int("model.tools", len(descs)),
	))
	defer span.End()

	start := time.Now()
	res, err := stream.Decode(ctx, r.model.Stream(ctx, msgs, descs), r.out)
	if res.Text != "" {
		fmt.Fprintln(r.out)
	}

	fields := map[string]any{
		"round":         round,
		"duration_ms":   time.Since(start).Milliseconds(),
		"events":        res.Events,
		"text_bytes":    len(res.Text),
		"tool_uses":     len(res.ToolUses),
		"decode_errors": len(res.DecodeErrors),
		"error":         nil,
	}
	span.SetAttributes(
		attribute.Int("model.tool_uses", len(res.ToolUses)),
		attribute.Int("model.decode_errors", len(res.DecodeErrors)),
	)
	if err != nil {
		err = &ModelError{Round: round, Err: err}
		fields["error"] = errorClass(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "model stream failed")
	}
	telemetry.EmitTurn(ctx, "model_stream", fields)
	return res, err
}

// warn reports dropped tool calls. The model is not told about them.
func (r *Runner) warn(errs []*stream.DecodeError) {
	for _, de := range errs {
		fmt.Fprintf(r.out, "Warning: dropped malformed call to tool %s (%s): %v\n", de.ToolName, de.ToolUseID, de.Err)
		r.logger.Warn("dropped tool call", slog.String("tool", de.ToolName), slog.String("id", de.ToolUseID),
			slog.Int("input_bytes", len(de.Input)), slog.Any("error", de.Err))
	}
}

func errorClass(err error) string {
	var (
		connErr  *catalog.ConnectionError
		dispErr  *dispatch.Error
		modelErr *ModelError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &connErr):
		return "connection error"
	case errors.As(err, &dispErr):
		return "dispatch error"
	case errors.As(err, &modelErr):
		return "model error"
	case errors.Is(err, windowing.ErrNewestOverBudget):
		return "over budget"
	}
	return "error"
}
