// Package inmemory provides a channel-backed job queue and a map-backed job
// store for single-instance deployments.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finsight/internal/jobs"
	"github.com/dvloznov/finsight/internal/logger"
	"github.com/google/uuid"
)

// ErrQueueClosed is returned when publishing to or starting a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// DefaultWorkerCount is used when NewQueue is given a non-positive count.
const DefaultWorkerCount = 2

// Queue is an in-memory implementation of job publisher and consumer.
// It uses Go channels for job distribution and is safe for concurrent use.
type Queue struct {
	jobChan     chan *jobs.AnalyzeStatementJob
	closeChan   chan struct{}
	wg          sync.WaitGroup
	mu          sync.RWMutex
	store       jobs.JobStore
	workerCount int
	closed      bool
	now         func() time.Time
}

// NewQueue creates a new in-memory job queue.
// bufferSize determines how many jobs can be queued before publishing blocks.
func NewQueue(bufferSize, workerCount int, store jobs.JobStore) *Queue {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &Queue{
		jobChan:     make(chan *jobs.AnalyzeStatementJob, bufferSize),
		closeChan:   make(chan struct{}),
		store:       store,
		workerCount: workerCount,
		now:         time.Now,
	}
}

// PublishAnalyzeStatement implements the Publisher interface.
func (q *Queue) PublishAnalyzeStatement(ctx context.Context, job *jobs.AnalyzeStatementJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = q.now()
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("PublishAnalyzeStatement: save job: %w", err)
		}
	}

	select {
	case q.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return ErrQueueClosed
	}
}

// Start implements the Consumer interface.
// It starts workerCount goroutines that process jobs with handler.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	log := logger.FromContext(ctx)
	log.Info().Int("workers", q.workerCount).Msg("Starting job workers")

	for i := 0; i < q.workerCount; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, id int, handler jobs.JobHandler) {
	defer q.wg.Done()

	ctx = logger.WithContext(ctx, logger.FromContext(ctx).With().Int("worker", id).Logger())

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

// processJob executes a single job. A failed job stays failed.
func (q *Queue) processJob(ctx context.Context, job *jobs.AnalyzeStatementJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx).With().Str("job_id", job.JobID).Logger()

	job.Status = jobs.JobStatusRunning
	started := q.now()
	job.StartedAt = &started
	q.save(ctx, job)

	err := handler(ctx, job)

	completed := q.now()
	job.CompletedAt = &completed
	job.PDF = nil

	if err != nil {
		job.Status = jobs.JobStatusFailed
		job.Error = err.Error()
		log.Error().Err(err).Msg("Job failed")
	} else {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		log.Info().Str("report_id", job.ReportID).Dur("duration", completed.Sub(started)).Msg("Job completed")
	}

	q.save(ctx, job)
}

func (q *Queue) save(ctx context.Context, job *jobs.AnalyzeStatementJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("job_id", job.JobID).Msg("Failed to save job state")
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both Publisher and Consumer interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
