package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petasbytes/mcp-chat/conversation"
	"github.com/petasbytes/mcp-chat/internal/catalog"
	"github.com/petasbytes/mcp-chat/internal/metrics"
	"github.com/petasbytes/mcp-chat/internal/telemetry"
)

// Caller is the executor side of a tool exchange.
type Caller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
}

type Dispatcher struct {
	caller      Caller
	index       *catalog.Index
	policy      Policy
	parallelism int
	logger      *slog.Logger
	tracer      trace.Tracer
}

type Option func(*Dispatcher)

// WithIndex rejects unknown tools and schema-invalid arguments before calling out.
func WithIndex(x *catalog.Index) Option { return func(d *Dispatcher) { d.index = x } }

func WithPolicy(p Policy) Option { return func(d *Dispatcher) { d.policy = p } }

// WithParallelism runs up to n calls of one batch at once. n <= 1 is sequential.
func WithParallelism(n int) Option { return func(d *Dispatcher) { d.parallelism = n } }

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) { d.tracer = telemetry.Tracer(tp) }
}

func New(c Caller, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		caller: c,
		logger: slog.Default(),
		tracer: telemetry.Tracer(nil),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Policy() Policy { return d.policy }

// Invoke performs one exchange. A remote is_error reply is a successful exchange and
// comes back as a ToolResult with IsError set; only local rejections and transport
// failures return *Error.
func (d *Dispatcher) Invoke(ctx context.Context, use conversation.ToolUse) (conversation.ToolResult, error) {
	ctx, span := d.tracer.Start(ctx, "tool.call", trace.WithAttributes(
		attribute.String("tool.name", use.Name),
		attribute.String("tool.use_id", use.ID),
	))
	defer span.End()

	start := time.Now()
	res, err := d.invoke(ctx, use)
	elapsed := time.Since(start)

	fields := map[string]any{
		"tool_name":   use.Name,
		"duration_ms": elapsed.Milliseconds(),
		"input_size":  len(use.InputJSON()),
		"output_size": metrics.PayloadSize(res.Content),
		"is_error":    res.IsError,
		"error":       nil,
	}
	if err != nil {
		// Class only; the message may echo arguments.
		fields["error"] = errorClass(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, errorClass(err))
		d.logger.Debug("tool call failed", slog.String("tool", use.Name), slog.String("id", use.ID), slog.Any("error", err))
	} else if res.IsError {
		span.SetStatus(codes.Error, "tool reported error")
	}
	span.SetAttributes(attribute.Bool("tool.is_error", res.IsError))
	telemetry.EmitTurn(ctx, "tool_exec", fields)
	return res, err
}

func (d *Dispatcher) invoke(ctx context.Context, use conversation.ToolUse) (conversation.ToolResult, error) {
	empty := conversation.ToolResult{ToolUseID: use.ID}
	if d.index != nil {
		if err := d.index.Validate(use.Name, use.Input); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return empty, &Error{ToolUseID: use.ID, ToolName: use.Name, Err: ErrUnknownTool}
			}
			return empty, &Error{ToolUseID: use.ID, ToolName: use.Name, Err: fmt.Errorf("%w: %v", ErrInvalidArguments, err)}
		}
	}
	args := use.Input
	if args == nil {
		args = map[string]any{}
	}
	raw, err := d.caller.CallTool(ctx, use.Name, args)
	if err != nil {
		return empty, &Error{ToolUseID: use.ID, ToolName: use.Name, Err: err}
	}
	return Normalize(use.ID, raw), nil
}

// InvokeAll runs every use and returns results in the same order as uses, whatever
// order the calls complete in. Under Abort the first failure in tool order is returned
// and no results are; under Report failures become is_error results.
func (d *Dispatcher) InvokeAll(ctx context.Context, uses []conversation.ToolUse) ([]conversation.ToolResult, error) {
	results := make([]conversation.ToolResult, len(uses))
	errs := make([]error, len(uses))

	if d.parallelism > 1 && len(uses) > 1 {
		sem := make(chan struct{}, d.parallelism)
		var wg sync.WaitGroup
		for i, use := range uses {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results[i], errs[i] = d.Invoke(ctx, use)
			}()
		}
		wg.Wait()
	} else {
		for i, use := range uses {
			results[i], errs[i] = d.Invoke(ctx, use)
			if errs[i] != nil && d.policy == Abort {
				return nil, errs[i]
			}
		}
	}

	for i, err := range errs {
		if err == nil {
			continue
		}
		if d.policy == Abort {
			return nil, err
		}
		results[i] = ErrorResult(uses[i].ID, err)
	}
	return results, nil
}

// ErrorResult renders a failed exchange as an is_error tool result.
func ErrorResult(useID string, err error) conversation.ToolResult {
	return conversation.ToolResult{
		ToolUseID: useID,
		IsError:   true,
		Content:   []conversation.ResultPart{{Type: conversation.PartText, Text: err.Error()}},
	}
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, ErrUnknownTool):
		return "tool not found"
	case errors.Is(err, ErrInvalidArguments):
		return "invalid arguments"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "tool error"
}
