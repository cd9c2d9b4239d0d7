package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dvloznov/statement-copilot/internal/domain"
)

// Transcript is the append-only message sequence the presentation layer
// renders. It belongs to the UI side of the boundary, not to the session:
// clearing the transcript does not touch the session's own history.
type Transcript struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append records one turn and returns the stored message.
func (t *Transcript) Append(role domain.Role, text string) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}

	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()

	return msg
}

// Messages returns a snapshot of the transcript in append order.
func (t *Transcript) Messages() []domain.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Clear drops all messages, for use when the statement is reset.
func (t *Transcript) Clear() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()
}
