package conversation

import "errors"

// ErrEmptyMessage is returned when appending a message with no content.
var ErrEmptyMessage = errors.New("conversation: message has no content")

// Log is the ordered, append-only message sequence sent to the model.
// It is owned by a single query and is not safe for concurrent use.
type Log struct {
	msgs []Message
}

// NewLog starts a log with the user's query as its first message.
func NewLog(query string) *Log {
	return &Log{msgs: []Message{NewUserMessage(NewText(query))}}
}

// Append adds m to the end of the log. Empty or malformed messages are rejected.
func (l *Log) Append(m Message) error {
	if len(m.Content) == 0 {
		return ErrEmptyMessage
	}
	if err := m.Validate(); err != nil {
		return err
	}
	l.msgs = append(l.msgs, m)
	return nil
}

// Messages returns a copy of the log, oldest first.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

func (l *Log) Len() int { return len(l.msgs) }

// Last returns the newest message, if any.
func (l *Log) Last() (Message, bool) {
	if len(l.msgs) == 0 {
		return Message{}, false
	}
	return l.msgs[len(l.msgs)-1], true
}
