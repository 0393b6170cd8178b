package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by JobStore lookups for an unknown id.
var ErrJobNotFound = errors.New("job not found")

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAnalyzeStatement represents a statement analysis job.
	JobTypeAnalyzeStatement JobType = "analyze_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed. Failed jobs are not retried.
	JobStatusFailed JobStatus = "failed"
)

// ParseJobStatus returns the status named by s, or false.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch st := JobStatus(s); st {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return st, true
	}
	return "", false
}

// AnalyzeStatementJob analyses one uploaded statement and saves the report.
type AnalyzeStatementJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"jobId"`

	// AccountID is the account the report will be attached to.
	AccountID string `json:"accountId"`

	// FileName is the uploaded file's name.
	FileName string `json:"fileName"`

	// Source is a gs:// URI or local path; empty when PDF carries the bytes.
	Source string `json:"source,omitempty"`

	// PDF holds uploaded bytes until the job runs. It is never stored.
	PDF []byte `json:"-"`

	// ReportID is set once the report is saved.
	ReportID string `json:"reportId,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"createdAt"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"startedAt,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *AnalyzeStatementJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *AnalyzeStatementJob) GetType() JobType {
	return JobTypeAnalyzeStatement
}

// GetStatus implements the Job interface.
func (j *AnalyzeStatementJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishAnalyzeStatement enqueues a statement analysis job.
	PublishAnalyzeStatement(ctx context.Context, job *AnalyzeStatementJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AnalyzeStatementJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*AnalyzeStatementJob, error)

	// ListJobs retrieves jobs, newest first, with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AnalyzeStatementJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// AccountID filters jobs by account.
	AccountID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
