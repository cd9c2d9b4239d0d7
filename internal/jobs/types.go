package jobs

import (
	"context"
	"time"

	"github.com/dvloznov/statement-copilot/internal/ingest"
)

// JobStatus represents the current status of an analysis job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Analysis jobs are never
	// retried automatically; the user retries by uploading again.
	JobStatusFailed JobStatus = "failed"
)

// AnalyzeStatementJob asks the worker to run the full analysis for one
// encoded upload.
type AnalyzeStatementJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Filename is the original name of the uploaded file.
	Filename string `json:"filename"`

	// Payload is the validated, encoded upload. Not serialized: it can be
	// megabytes of base64.
	Payload *ingest.Payload `json:"-"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was enqueued.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`
}

// JobHandler is a function that processes a job. A returned error marks the
// job failed.
type JobHandler func(ctx context.Context, job *AnalyzeStatementJob) error

// Publisher defines the interface for enqueueing analysis jobs.
type Publisher interface {
	// Publish enqueues a statement-analysis job.
	Publish(ctx context.Context, job *AnalyzeStatementJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs; the handler is called for each one.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for the in-flight job to finish.
	Stop(ctx context.Context) error
}

// JobStore tracks job status so clients can poll on it.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AnalyzeStatementJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*AnalyzeStatementJob, error)

	// ListJobs retrieves jobs, optionally filtered by status.
	ListJobs(ctx context.Context, status JobStatus) ([]*AnalyzeStatementJob, error)
}
