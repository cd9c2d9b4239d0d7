package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/statement-copilot/internal/domain"
)

// DefaultModel is the default Gemini model used for conversation turns.
const DefaultModel = "gemini-2.5-flash"

// Gemini creates Gemini-backed conversation sessions.
type Gemini struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

func NewGemini(client *genai.Client, model string, log zerolog.Logger) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model, log: log}
}

// Start creates one session whose system instruction embeds the full
// serialized dataset. Session setup has no network effect; the first
// request happens on the first Send.
func (g *Gemini) Start(ctx context.Context, stmt *domain.ParsedStatement) (Conversation, error) {
	instruction, err := buildSystemInstruction(stmt)
	if err != nil {
		return nil, err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
	}

	c, err := g.client.Chats.Create(ctx, g.model, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("chat: create session: %w", err)
	}

	return &session{chat: c, log: g.log}, nil
}

type session struct {
	chat *genai.Chat
	log  zerolog.Logger
}

func (s *session) Send(ctx context.Context, text string) string {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		s.log.Error().Err(err).Msg("Chat turn failed, substituting fallback reply")
		return FallbackReply
	}

	reply := resp.Text()
	if reply == "" {
		s.log.Warn().Msg("Chat turn returned an empty reply, substituting fallback")
		return FallbackReply
	}
	return reply
}
