// Package app holds the orchestration for one uploaded statement: a small
// state machine that sequences ingestion output through extraction into a
// live conversation session. It carries no business rules beyond that
// sequencing.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-copilot/internal/chat"
	"github.com/dvloznov/statement-copilot/internal/domain"
	"github.com/dvloznov/statement-copilot/internal/extract"
	"github.com/dvloznov/statement-copilot/internal/ingest"
)

// State of the controller. Valid transitions: Idle → Analyzing →
// Dashboard|Error, and Dashboard|Error → Idle via Reset.
type State string

const (
	StateIdle      State = "idle"
	StateAnalyzing State = "analyzing"
	StateDashboard State = "dashboard"
	StateError     State = "error"
)

// ErrNoSession means Send was called without a live conversation session.
// This is a programming-contract violation on the caller's side, not a
// recoverable service condition.
var ErrNoSession = errors.New("app: no live conversation session, analyze a statement first")

// Controller owns the parsed statement and the conversation session for the
// lifetime of one analysis. Both are replaced wholesale on reset or a new
// upload; the session is an explicit field here, never package state.
//
// The controller assumes a single in-flight Analyze; callers must not start
// another while one is Analyzing.
type Controller struct {
	extractor extract.Extractor
	chats     chat.Starter
	log       zerolog.Logger

	mu        sync.Mutex
	state     State
	statement *domain.ParsedStatement
	session   chat.Conversation
	warnings  []string
	lastErr   error
	gen       uint64 // bumped on Reset so stale results are dropped
}

func NewController(extractor extract.Extractor, chats chat.Starter, log zerolog.Logger) *Controller {
	return &Controller{
		extractor: extractor,
		chats:     chats,
		log:       log,
		state:     StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Statement returns the current dataset, or nil outside Dashboard.
func (c *Controller) Statement() *domain.ParsedStatement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statement
}

// Warnings returns the reconciliation warnings from the last analysis.
func (c *Controller) Warnings() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.warnings
}

// LastError returns the failure that drove the controller to StateError.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Analyze runs the full analysis for one encoded payload: extraction,
// totals reconciliation and conversation-session setup. On success the
// controller lands in Dashboard with the dataset committed; on any failure
// it lands in Error with no partial dataset retained. If a Reset happened
// while the analysis was in flight, the late result is discarded without
// touching the newer state.
func (c *Controller) Analyze(ctx context.Context, payload *ingest.Payload) error {
	c.mu.Lock()
	gen := c.gen
	c.state = StateAnalyzing
	c.statement = nil
	c.session = nil
	c.warnings = nil
	c.lastErr = nil
	c.mu.Unlock()

	st := &analysisState{payload: payload}
	for _, step := range c.analysisSteps() {
		if err := step.Execute(ctx, st); err != nil {
			c.fail(gen, err)
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// Reset happened mid-flight; the result belongs to a dead run.
		c.log.Info().Str("file", payload.Filename).Msg("Discarding analysis result from before reset")
		return nil
	}
	c.statement = st.statement
	c.warnings = st.warnings
	c.session = st.session
	c.state = StateDashboard
	return nil
}

func (c *Controller) fail(gen uint64, err error) {
	c.log.Error().Err(err).Msg("Statement analysis failed")

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.state = StateError
	c.lastErr = err
	c.statement = nil
	c.session = nil
	c.warnings = nil
}

// Send forwards one user turn to the live session. Sends must be serialized
// by the caller; the session's reply ordering depends on it.
func (c *Controller) Send(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return "", ErrNoSession
	}
	return session.Send(ctx, text), nil
}

// Reset clears the dataset, discards the conversation session and returns
// to Idle. Results from requests still in flight at reset time are dropped
// when they arrive.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = StateIdle
	c.statement = nil
	c.session = nil
	c.warnings = nil
	c.lastErr = nil
}
