package provider

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/petasbytes/mcp-chat/conversation"
	"github.com/petasbytes/mcp-chat/internal/catalog"
	"github.com/petasbytes/mcp-chat/internal/stream"
)

// Model issues streaming requests with fixed model settings.
type Model struct {
	client    *anthropic.Client
	Name      anthropic.Model
	MaxTokens int64
	// System is sent as the system prompt when non-empty.
	System string
}

func NewModel(client *anthropic.Client, name string, maxTokens int64, system string) *Model {
	if name == "" {
		name = string(DefaultModel)
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Model{client: client, Name: anthropic.Model(name), MaxTokens: maxTokens, System: system}
}

// Params builds the request for one round.
func (m *Model) Params(msgs []conversation.Message, tools []catalog.Descriptor) anthropic.MessageNewParams {
	p := anthropic.MessageNewParams{
		Model:     m.Name,
		MaxTokens: m.MaxTokens,
		Messages:  MessageParams(msgs),
	}
	if len(tools) > 0 {
		p.Tools = ToolParams(tools)
	}
	if m.System != "" {
		p.System = []anthropic.TextBlockParam{{Text: m.System}}
	}
	return p
}

// Stream starts a streaming request. Errors, including HTTP failures, surface through
// the returned source's Err.
func (m *Model) Stream(ctx context.Context, msgs []conversation.Message, tools []catalog.Descriptor) stream.Source {
	return &sdkSource{s: m.client.Messages.NewStreaming(ctx, m.Params(msgs, tools))}
}

// sdkSource adapts the SDK event stream, keeping only content-block events.
type sdkSource struct {
	s   *ssestream.Stream[anthropic.MessageStreamEventUnion]
	cur stream.Event
}

func (s *sdkSource) Next() bool {
	for s.s.Next() {
		if ev, ok := ToEvent(s.s.Current()); ok {
			s.cur = ev
			return true
		}
	}
	return false
}

func (s *sdkSource) Current() stream.Event { return s.cur }

func (s *sdkSource) Err() error { return s.s.Err() }

func (s *sdkSource) Close() error { return s.s.Close() }

// ToEvent maps an SDK stream event onto a content-block event. Message-level events
// report false.
func ToEvent(ev anthropic.MessageStreamEventUnion) (stream.Event, bool) {
	switch v := ev.AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		return stream.Start(v.ContentBlock.Type, v.ContentBlock.ID, v.ContentBlock.Name), true
	case anthropic.ContentBlockDeltaEvent:
		return stream.Event{
			Kind:        stream.KindBlockDelta,
			DeltaType:   v.Delta.Type,
			Text:        v.Delta.Text,
			PartialJSON: v.Delta.PartialJSON,
		}, true
	case anthropic.ContentBlockStopEvent:
		return stream.Stop(), true
	}
	return stream.Event{}, false
}
