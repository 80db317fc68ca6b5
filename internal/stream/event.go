package stream

// Kind identifies the structural role of an Event.
type Kind int

const (
	KindBlockStart Kind = iota + 1
	KindBlockDelta
	KindBlockStop
)

func (k Kind) String() string {
	switch k {
	case KindBlockStart:
		return "content_block_start"
	case KindBlockDelta:
		return "content_block_delta"
	case KindBlockStop:
		return "content_block_stop"
	}
	return "unknown"
}

// Block and delta type names as used on the wire.
const (
	BlockText    = "text"
	BlockToolUse = "tool_use"

	DeltaText      = "text_delta"
	DeltaInputJSON = "input_json_delta"
)

// Event is one content-block event. Only the fields relevant to Kind are set.
type Event struct {
	Kind Kind

	// BlockStart
	BlockType string
	ID        string
	Name      string

	// BlockDelta
	DeltaType   string
	Text        string
	PartialJSON string
}

// Source yields events in arrival order. It follows the iterator shape of the
// Anthropic SDK stream: call Next until false, then check Err.
type Source interface {
	Next() bool
	Current() Event
	Err() error
	Close() error
}

// Start, TextDelta, JSONDelta and Stop build events; mostly useful in tests and fakes.
func Start(blockType, id, name string) Event {
	return Event{Kind: KindBlockStart, BlockType: blockType, ID: id, Name: name}
}

func TextDelta(text string) Event {
	return Event{Kind: KindBlockDelta, DeltaType: DeltaText, Text: text}
}

func JSONDelta(partial string) Event {
	return Event{Kind: KindBlockDelta, DeltaType: DeltaInputJSON, PartialJSON: partial}
}

func Stop() Event { return Event{Kind: KindBlockStop} }

// SliceSource replays a fixed list of events, optionally failing at the end.
type SliceSource struct {
	Events []Event
	// Fail is returned from Err once the events are exhausted.
	Fail   error
	pos    int
	cur    Event
	closed bool
}

func NewSliceSource(events ...Event) *SliceSource {
	return &SliceSource{Events: events}
}

func (s *SliceSource) Next() bool {
	if s.closed || s.pos >= len(s.Events) {
		return false
	}
	s.cur = s.Events[s.pos]
	s.pos++
	return true
}

func (s *SliceSource) Current() Event { return s.cur }

func (s *SliceSource) Err() error {
	if s.pos >= len(s.Events) {
		return s.Fail
	}
	return nil
}

func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceSource) Closed() bool { return s.closed }
