// Package workflow drives a bounded round-robin conversation across four
// role agents (generator, analyzer, optimizer, user proxy) to produce a
// reviewed Python code artifact. The Coordinator owns the transcript and is
// its only writer; everything the model backends do flows through the llm
// package as an opaque capability.
package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/martinemde/percolate/coffee"
)

// RoleID identifies one of the four fixed conversational participants.
type RoleID string

const (
	RoleGenerator RoleID = "generator"
	RoleAnalyzer  RoleID = "analyzer"
	RoleOptimizer RoleID = "optimizer"
	RoleUserProxy RoleID = "user_proxy"
)

// SourceUser marks messages originating from the requesting user rather
// than a role agent.
const SourceUser = "user"

// RoleOrder is the fixed cyclic order agents take turns in.
var RoleOrder = []RoleID{RoleGenerator, RoleAnalyzer, RoleOptimizer, RoleUserProxy}

// MessageKind discriminates transcript message types.
type MessageKind string

const (
	KindNormal      MessageKind = "normal"
	KindStreamChunk MessageKind = "stream-chunk"
	KindToolCall    MessageKind = "tool-call"
	KindToolResult  MessageKind = "tool-result"
	KindTermination MessageKind = "termination-signal"
)

// Message is one entry in a run's transcript. Stream chunks share the ID of
// the logical message they belong to and carry increasing Seq; they are
// delivered on the event channel only, and the assembled text is appended to
// the transcript as a single normal Message.
type Message struct {
	ID      string      `json:"id"`
	Source  string      `json:"source"`
	Content string      `json:"content"`
	Kind    MessageKind `json:"kind"`
	Seq     int         `json:"seq,omitempty"`
	Time    time.Time   `json:"time"`
}

func newMessage(source string, kind MessageKind, content string) Message {
	return Message{
		ID:      uuid.New().String(),
		Source:  source,
		Content: content,
		Kind:    kind,
		Time:    time.Now(),
	}
}

// Transcript is the ordered message history of one run. It is append-only
// and owned by a single Coordinator goroutine; it carries no lock of its
// own.
type Transcript struct {
	messages []Message
	artifact string
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message and, for normal messages from the generator or
// optimizer, re-extracts the code artifact. The artifact is overwritten
// only when the new message actually contains a code block, so it never
// regresses to empty once set.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
	if msg.Kind != KindNormal {
		return
	}
	if msg.Source != string(RoleGenerator) && msg.Source != string(RoleOptimizer) {
		return
	}
	if code := coffee.ExtractCodeBlock(msg.Content); code != "" {
		t.artifact = code
	}
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of appended messages.
func (t *Transcript) Len() int { return len(t.messages) }

// Artifact returns the latest extracted code block, or "" if none has
// appeared yet.
func (t *Transcript) Artifact() string { return t.artifact }

// Window returns up to max of the most recent normal messages, oldest
// dropped first, order preserved. A max of zero or less means no bound.
func (t *Transcript) Window(max int) []Message {
	var normal []Message
	for _, m := range t.messages {
		if m.Kind == KindNormal {
			normal = append(normal, m)
		}
	}
	if max > 0 && len(normal) > max {
		normal = normal[len(normal)-max:]
	}
	return normal
}

// LastFrom returns the most recent normal message from the given source,
// or a zero Message and false.
func (t *Transcript) LastFrom(source string) (Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		m := t.messages[i]
		if m.Kind == KindNormal && m.Source == source {
			return m, true
		}
	}
	return Message{}, false
}
