// ABOUTME: Assistant conversation with optimistic user entries
// ABOUTME: Submissions append immediately and resolve or fail when the reply arrives

package tabs

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tsundip4/airport-ops-console/internal/client"
)

const (
	// Greeting seeds every new conversation.
	Greeting = "Ask me about the latest flights, gates, delays, or trends."

	// NoResponse stands in for an empty answer.
	NoResponse = "No response."

	unreachable = "Unable to reach the AI assistant."
)

// ErrCannotSend is returned when a question is blank or a reply is pending.
var ErrCannotSend = errors.New("nothing to send or a reply is still pending")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// EntryState tracks an entry through the two-phase exchange.
type EntryState int

const (
	Delivered EntryState = iota
	Pending
	Failed
)

type Entry struct {
	ID    string
	Role  Role
	Text  string
	State EntryState
	Model string
}

// Exchange identifies a submitted question awaiting its reply.
type Exchange struct {
	ID       string
	Question string
	epoch    uint64
}

// Asker is the assistant endpoint.
type Asker interface {
	Ask(ctx context.Context, question string) (*client.AskResponse, error)
}

type Transcript struct {
	asker Asker

	mu      sync.Mutex
	entries []Entry
	sending bool
	err     error
	epoch   uint64
}

func NewTranscript(asker Asker) *Transcript {
	t := &Transcript{asker: asker}
	t.entries = seed()
	return t
}

func seed() []Entry {
	return []Entry{{ID: uuid.NewString(), Role: RoleAssistant, Text: Greeting}}
}

// CanSend reports whether input may be submitted now.
func (t *Transcript) CanSend(input string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.sending && strings.TrimSpace(input) != ""
}

// Submit appends the user's question as a pending entry. It returns false
// when the input is blank or a reply is still outstanding.
func (t *Transcript) Submit(input string) (Exchange, bool) {
	question := strings.TrimSpace(input)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sending || question == "" {
		return Exchange{}, false
	}

	ex := Exchange{ID: uuid.NewString(), Question: question, epoch: t.epoch}
	t.entries = append(t.entries, Entry{ID: ex.ID, Role: RoleUser, Text: question, State: Pending})
	t.sending = true
	t.err = nil
	return ex, true
}

// Resolve marks the question delivered and appends exactly one reply.
func (t *Transcript) Resolve(ex Exchange, resp *client.AskResponse) {
	text, model := NoResponse, ""
	if resp != nil {
		if resp.Answer != "" {
			text = resp.Answer
		}
		model = resp.Model
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if ex.epoch != t.epoch {
		return
	}
	t.sending = false
	t.setState(ex.ID, Delivered)
	t.entries = append(t.entries, Entry{ID: uuid.NewString(), Role: RoleAssistant, Text: text, Model: model})
}

// Fail marks the question failed and records the error; no reply is added.
func (t *Transcript) Fail(ex Exchange, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ex.epoch != t.epoch {
		return
	}
	t.sending = false
	t.setState(ex.ID, Failed)
	t.err = err
}

// Await sends a submitted question and resolves or fails it.
func (t *Transcript) Await(ctx context.Context, ex Exchange) error {
	resp, err := t.asker.Ask(ctx, ex.Question)
	if err != nil {
		t.Fail(ex, err)
		return err
	}
	t.Resolve(ex, resp)
	return nil
}

// Ask runs both phases for one question.
func (t *Transcript) Ask(ctx context.Context, question string) (Entry, error) {
	ex, ok := t.Submit(question)
	if !ok {
		return Entry{}, ErrCannotSend
	}

	if err := t.Await(ctx, ex); err != nil {
		return Entry{}, err
	}

	entries := t.Entries()
	return entries[len(entries)-1], nil
}

// Clear reseeds the conversation. It is refused while a reply is pending.
func (t *Transcript) Clear() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sending {
		return false
	}
	t.epoch++
	t.entries = seed()
	t.err = nil
	return true
}

func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

func (t *Transcript) Sending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sending
}

func (t *Transcript) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// ErrMessage is the error line under the conversation.
func (t *Transcript) ErrMessage() string {
	err := t.Err()
	if err == nil {
		return ""
	}
	if msg := client.Message(err); msg != "" {
		return msg
	}
	return unreachable
}

func (t *Transcript) setState(id string, state EntryState) {
	for i := range t.entries {
		if t.entries[i].ID == id {
			t.entries[i].State = state
			return
		}
	}
}
