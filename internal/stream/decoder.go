package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/petasbytes/mcp-chat/conversation"
)

// Result is what a single model stream decoded to.
type Result struct {
	Text     string
	ToolUses []conversation.ToolUse
	// DecodeErrors lists tool calls dropped because their input did not parse.
	DecodeErrors []*DecodeError
	// Events counts the events consumed, including ignored ones.
	Events int
}

// Blocks renders the assistant content for the log: the text block first (omitted when
// empty) followed by tool uses in the order they were closed.
func (r *Result) Blocks() []conversation.Block {
	out := make([]conversation.Block, 0, len(r.ToolUses)+1)
	if r.Text != "" {
		out = append(out, conversation.NewText(r.Text))
	}
	for _, u := range r.ToolUses {
		out = append(out, conversation.NewToolUse(u))
	}
	return out
}

// Empty reports whether the stream produced neither text nor tool calls.
func (r *Result) Empty() bool { return r.Text == "" && len(r.ToolUses) == 0 }

// state is the single open-block slot.
type state interface{ open() string }

type idle struct{}

type openText struct{}

type openTool struct {
	use conversation.ToolUse
	buf strings.Builder
}

// openOther swallows blocks we do not reconstruct (thinking, server tools).
type openOther struct{ blockType string }

func (idle) open() string { return "" }

func (openText) open() string { return BlockText }

func (*openTool) open() string { return BlockToolUse }

func (o openOther) open() string { return o.blockType }

// Decoder folds events into a Result. The zero value is not usable; call NewDecoder.
type Decoder struct {
	sink  io.Writer
	st    state
	text  strings.Builder
	res   Result
	ended bool
}

// NewDecoder returns a decoder that mirrors text fragments to sink (which may be nil).
func NewDecoder(sink io.Writer) *Decoder {
	return &Decoder{sink: sink, st: idle{}}
}

// Feed applies one event. Events that do not fit the current state are ignored.
func (d *Decoder) Feed(ev Event) {
	d.res.Events++
	switch ev.Kind {
	case KindBlockStart:
		d.start(ev)
	case KindBlockDelta:
		d.delta(ev)
	case KindBlockStop:
		d.stop()
	}
}

func (d *Decoder) start(ev Event) {
	if t, ok := d.st.(*openTool); ok {
		d.drop(t, ErrUnclosedToolUse)
	}
	switch ev.BlockType {
	case BlockToolUse:
		d.st = &openTool{use: conversation.ToolUse{ID: ev.ID, Name: ev.Name}}
	case BlockText:
		d.st = openText{}
	default:
		d.st = openOther{blockType: ev.BlockType}
	}
}

func (d *Decoder) delta(ev Event) {
	switch st := d.st.(type) {
	case openText:
		if ev.DeltaType != DeltaText || ev.Text == "" {
			return
		}
		d.text.WriteString(ev.Text)
		if d.sink != nil {
			_, _ = io.WriteString(d.sink, ev.Text)
		}
	case *openTool:
		if ev.DeltaType != DeltaInputJSON {
			return
		}
		st.buf.WriteString(ev.PartialJSON)
	}
}

func (d *Decoder) stop() {
	if t, ok := d.st.(*openTool); ok {
		input, err := parseInput(t.buf.String())
		if err != nil {
			d.drop(t, err)
		} else {
			t.use.Input = input
			d.res.ToolUses = append(d.res.ToolUses, t.use)
		}
	}
	d.st = idle{}
}

func (d *Decoder) drop(t *openTool, err error) {
	d.res.DecodeErrors = append(d.res.DecodeErrors, &DecodeError{
		ToolUseID: t.use.ID,
		ToolName:  t.use.Name,
		Input:     t.buf.String(),
		Err:       err,
	})
}

// Open returns the type of the block currently being accumulated, or "" when idle.
func (d *Decoder) Open() string { return d.st.open() }

// Finish closes the fold. A tool block still open at end of stream is dropped.
// Finish is idempotent.
func (d *Decoder) Finish() *Result {
	if !d.ended {
		if t, ok := d.st.(*openTool); ok {
			d.drop(t, ErrUnclosedToolUse)
		}
		d.st = idle{}
		d.res.Text = d.text.String()
		d.ended = true
	}
	res := d.res
	return &res
}

// Decode drains src through a new Decoder and closes src. Text fragments are written
// to sink as they arrive. On a stream or context error the partial result is returned
// alongside the error.
func Decode(ctx context.Context, src Source, sink io.Writer) (*Result, error) {
	defer src.Close()
	d := NewDecoder(sink)
	for src.Next() {
		if err := ctx.Err(); err != nil {
			return d.Finish(), err
		}
		d.Feed(src.Current())
	}
	if err := src.Err(); err != nil {
		return d.Finish(), fmt.Errorf("read model stream: %w", err)
	}
	return d.Finish(), nil
}

// errNotObject is reported when the accumulated input is valid JSON but not an object.
var errNotObject = errors.New("tool input is not a JSON object")

// parseInput parses the concatenated fragments. No fragments means no arguments.
func parseInput(buf string) (map[string]any, error) {
	if strings.TrimSpace(buf) == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(buf))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after tool input at offset %d", dec.InputOffset())
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}
