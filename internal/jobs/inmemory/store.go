package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dvloznov/finsight/internal/jobs"
)

// Store is an in-memory implementation of JobStore.
// Data is lost on service restart.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.AnalyzeStatementJob
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.AnalyzeStatementJob),
	}
}

// SaveJob implements the JobStore interface. Statement bytes are not kept.
func (s *Store) SaveJob(ctx context.Context, job *jobs.AnalyzeStatementJob) error {
	if job.JobID == "" {
		return fmt.Errorf("SaveJob: job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	jobCopy.PDF = nil
	s.jobs[job.JobID] = &jobCopy
	return nil
}

// GetJob implements the JobStore interface.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.AnalyzeStatementJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("GetJob: %s: %w", jobID, jobs.ErrJobNotFound)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs implements the JobStore interface. Jobs are returned newest
// first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.AnalyzeStatementJob, error) {
	s.mu.RLock()
	result := make([]*jobs.AnalyzeStatementJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.AccountID != "" && job.AccountID != filter.AccountID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		jobCopy := *job
		result = append(result, &jobCopy)
	}
	s.mu.RUnlock()

	slices.SortFunc(result, func(a, b *jobs.AnalyzeStatementJob) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.JobID, b.JobID)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.AnalyzeStatementJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// UpdateJobStatus implements the JobStore interface.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("UpdateJobStatus: %s: %w", jobID, jobs.ErrJobNotFound)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	return nil
}

// Ensure Store implements JobStore interface.
var _ jobs.JobStore = (*Store)(nil)
