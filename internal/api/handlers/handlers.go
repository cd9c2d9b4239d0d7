package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/statement-copilot/internal/api/middleware"
	"github.com/dvloznov/statement-copilot/internal/app"
	"github.com/dvloznov/statement-copilot/internal/chat"
	"github.com/dvloznov/statement-copilot/internal/domain"
	"github.com/dvloznov/statement-copilot/internal/ingest"
	"github.com/dvloznov/statement-copilot/internal/jobs"
	"github.com/dvloznov/statement-copilot/internal/report"
	"github.com/dvloznov/statement-copilot/internal/speech"
)

// topCategoryCount is how many expense categories the dashboard breakdown
// shows.
const topCategoryCount = 5

// Speaker abstracts the speech synthesizer for testing.
type Speaker interface {
	Speak(ctx context.Context, text string) (*speech.Audio, error)
}

// StatementsHandler handles upload, state, dashboard and reset endpoints
// for the single live statement.
type StatementsHandler struct {
	controller *app.Controller
	publisher  jobs.Publisher
	store      jobs.JobStore
	transcript *chat.Transcript
	log        zerolog.Logger
}

// NewStatementsHandler creates a new statements handler.
func NewStatementsHandler(controller *app.Controller, publisher jobs.Publisher, store jobs.JobStore, transcript *chat.Transcript, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{
		controller: controller,
		publisher:  publisher,
		store:      store,
		transcript: transcript,
		log:        log,
	}
}

// Upload handles POST /api/statements: validates and encodes the multipart
// file, then enqueues the analysis. Uploads are rejected unless the
// controller is Idle; the client resets first.
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if state := h.controller.State(); state != app.StateIdle {
		middleware.WriteError(w, http.StatusConflict, "A statement is already loaded or being analyzed; reset first")
		return
	}

	// The controller only turns Analyzing once the worker picks the job up,
	// so the Idle check alone admits a second upload while one is still
	// queued. An unfinished job in the store closes that window.
	busy, err := h.hasUnfinishedJob(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check for unfinished jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to check analysis status")
		return
	}
	if busy {
		middleware.WriteError(w, http.StatusConflict, "An analysis is already queued; reset first")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Multipart field 'file' is required")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = ingest.DetectMIME(header.Filename)
	}

	payload, err := ingest.Encode(header.Filename, mimeType, file)
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			middleware.WriteError(w, http.StatusBadRequest, verr.Detail)
			return
		}
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	job := &jobs.AnalyzeStatementJob{Filename: payload.Filename, Payload: payload}
	if err := h.publisher.Publish(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue analysis job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("filename", payload.Filename).
		Int64("bytes", payload.SizeBytes).
		Msg("Statement upload accepted")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":   job.JobID,
		"filename": payload.Filename,
		"status":   string(job.Status),
	})
}

func (h *StatementsHandler) hasUnfinishedJob(ctx context.Context) (bool, error) {
	for _, status := range []jobs.JobStatus{jobs.JobStatusPending, jobs.JobStatusRunning} {
		list, err := h.store.ListJobs(ctx, status)
		if err != nil {
			return false, err
		}
		if len(list) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// State handles GET /api/state.
func (h *StatementsHandler) State(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"state": string(h.controller.State()),
	}
	if err := h.controller.LastError(); err != nil {
		resp["error"] = "Analysis failed; reset and try again"
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Dashboard handles GET /api/dashboard.
func (h *StatementsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stmt := h.controller.Statement()
	if stmt == nil {
		middleware.WriteError(w, http.StatusConflict, "No statement loaded")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"summary":        stmt.Summary,
		"insights":       stmt.Insights,
		"warnings":       h.controller.Warnings(),
		"top_categories": report.TopExpenseCategories(stmt.Transactions, topCategoryCount),
		"daily_totals":   report.DailyTotals(stmt.Transactions),
	})
}

// Transactions handles GET /api/transactions?q=...
func (h *StatementsHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	stmt := h.controller.Statement()
	if stmt == nil {
		middleware.WriteError(w, http.StatusConflict, "No statement loaded")
		return
	}

	matched := report.Filter(stmt.Transactions, r.URL.Query().Get("q"))
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": matched,
		"count":        len(matched),
	})
}

// Reset handles POST /api/reset: back to Idle, dataset and session
// discarded, transcript cleared.
func (h *StatementsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.controller.Reset()
	h.transcript.Clear()

	h.log.Info().Msg("Session reset")
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"state": string(app.StateIdle)})
}

// ChatHandler handles conversation and speech endpoints.
type ChatHandler struct {
	controller *app.Controller
	transcript *chat.Transcript
	speaker    Speaker
	log        zerolog.Logger

	// sendMu serializes turns: each reply depends on the session's ordered
	// history, so concurrent sends are never allowed.
	sendMu sync.Mutex
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(controller *app.Controller, transcript *chat.Transcript, speaker Speaker, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		controller: controller,
		transcript: transcript,
		speaker:    speaker,
		log:        log,
	}
}

// Send handles POST /api/chat.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	h.sendMu.Lock()
	defer h.sendMu.Unlock()

	reply, err := h.controller.Send(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, app.ErrNoSession) {
			middleware.WriteError(w, http.StatusConflict, "No statement loaded; upload one first")
			return
		}
		h.log.Error().Err(err).Msg("Chat turn failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Chat failed")
		return
	}

	userMsg := h.transcript.Append(domain.RoleUser, req.Message)
	modelMsg := h.transcript.Append(domain.RoleModel, reply)

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": []domain.ChatMessage{userMsg, modelMsg},
	})
}

// History handles GET /api/chat.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	msgs := h.transcript.Messages()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": msgs,
		"count":    len(msgs),
	})
}

// Speak handles POST /api/speech: synthesizes the given text and returns a
// WAV body. The client owns playback; serving a new clip implies the
// client stops the previous one.
func (h *ChatHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Text is required")
		return
	}

	audio, err := h.speaker.Speak(r.Context(), req.Text)
	if err != nil {
		h.log.Error().Err(err).Msg("Speech synthesis failed")
		middleware.WriteError(w, http.StatusBadGateway, "Speech synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	w.Write(speech.WAV(audio))
}

// JobsHandler exposes analysis job status for polling.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{store: store, log: log}
}

// List handles GET /api/jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListJobs(r.Context(), jobs.JobStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// Get handles GET /api/jobs/{id}.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
