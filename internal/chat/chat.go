package chat

import (
	"context"

	"github.com/dvloznov/statement-copilot/internal/domain"
)

// FallbackReply is substituted whenever a conversation turn fails. Chat
// failures are absorbed here so the assistant never goes silently broken;
// the underlying cause is logged, not surfaced to the user.
const FallbackReply = "Ups, I couldn't process that right now — lo siento. " +
	"Please try again in a moment. ¡Inténtalo de nuevo en un momento!"

// Conversation is one stateful dialogue bound to a single statement. The
// session owns its own history: callers send only the new user turn and
// must serialize calls, since each reply depends on the ordered history.
type Conversation interface {
	// Send issues one turn and returns the assistant's reply. On failure it
	// returns FallbackReply instead of an error.
	Send(ctx context.Context, text string) string
}

// Starter creates conversations. Starting a session for a new statement
// replaces any previous one; sessions are never merged.
type Starter interface {
	Start(ctx context.Context, stmt *domain.ParsedStatement) (Conversation, error)
}
