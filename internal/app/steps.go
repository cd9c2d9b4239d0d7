package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-copilot/internal/chat"
	"github.com/dvloznov/statement-copilot/internal/domain"
	"github.com/dvloznov/statement-copilot/internal/extract"
	"github.com/dvloznov/statement-copilot/internal/ingest"
)

// analysisStep is a single stage of the analysis run.
type analysisStep interface {
	Execute(ctx context.Context, st *analysisState) error
}

// analysisState holds the shared state across analysis steps.
type analysisState struct {
	payload   *ingest.Payload
	statement *domain.ParsedStatement
	warnings  []string
	session   chat.Conversation
}

func (c *Controller) analysisSteps() []analysisStep {
	return []analysisStep{
		&extractStep{extractor: c.extractor},
		&reconcileStep{log: c.log},
		&startSessionStep{chats: c.chats},
	}
}

// extractStep sends the encoded payload to the extraction model.
type extractStep struct {
	extractor extract.Extractor
}

func (s *extractStep) Execute(ctx context.Context, st *analysisState) error {
	stmt, err := s.extractor.Extract(ctx, st.payload)
	if err != nil {
		return err
	}
	st.statement = stmt
	return nil
}

// reconcileStep cross-checks reported totals against summed transactions.
// Mismatches are warnings, never failures.
type reconcileStep struct {
	log zerolog.Logger
}

func (s *reconcileStep) Execute(ctx context.Context, st *analysisState) error {
	st.warnings = extract.ReconcileTotals(st.statement)
	for _, w := range st.warnings {
		s.log.Warn().Str("warning", w).Msg("Statement totals do not reconcile")
	}
	return nil
}

// startSessionStep seeds a fresh conversation session with the dataset.
type startSessionStep struct {
	chats chat.Starter
}

func (s *startSessionStep) Execute(ctx context.Context, st *analysisState) error {
	session, err := s.chats.Start(ctx, st.statement)
	if err != nil {
		return err
	}
	st.session = session
	return nil
}
