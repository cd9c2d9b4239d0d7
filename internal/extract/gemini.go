package extract

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/statement-copilot/internal/domain"
	"github.com/dvloznov/statement-copilot/internal/ingest"
)

// DefaultModel is the default Gemini model used for statement extraction.
const DefaultModel = "gemini-2.5-flash"

const statementInstruction = "Analyze this bank statement carefully. " +
	"Extract the account summary, EVERY transaction in the order it appears in the document, " +
	"and 3-5 short insights about spending patterns. " +
	"Amounts are non-negative magnitudes; use the type field to mark money in (INCOME) or out (EXPENSE). " +
	"Dates use ISO format YYYY-MM-DD. Do not invent transactions that are not in the document."

// Gemini is the concrete Extractor backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates an extractor on top of a shared genai client.
func NewGemini(client *genai.Client, model string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}
}

// Extract sends the encoded file to the model with a strict response schema
// and transforms the JSON body into a domain.ParsedStatement. Extraction is
// a factual task, so sampling temperature is pinned to zero.
func (g *Gemini) Extract(ctx context.Context, payload *ingest.Payload) (*domain.ParsedStatement, error) {
	raw, err := payload.Bytes()
	if err != nil {
		return nil, &ExtractionError{Reason: "decode payload", Err: err}
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: statementInstruction},
				{
					InlineData: &genai.Blob{
						MIMEType: payload.MIMEType,
						Data:     raw,
					},
				},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   statementSchema(),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, &ExtractionError{Reason: "generate content", Err: err}
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, &ExtractionError{Reason: "empty response from model"}
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &parsed); err != nil {
		return nil, &ExtractionError{Reason: "unmarshal response", Err: err}
	}

	stmt, err := transformStatement(parsed)
	if err != nil {
		return nil, &ExtractionError{Reason: "malformed statement", Err: err}
	}

	return stmt, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the JSON-only instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// Keep only the outermost object if there is still text around it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
