package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/finsight/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.AnalyzeStatementJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := store.GetJob(context.Background(), jobID)
	t.Fatalf("job %s never reached %s (last: %+v)", jobID, want, job)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(10, 2, store)

	var sawPDF atomic.Bool
	handler := func(_ context.Context, job jobs.Job) error {
		j := job.(*jobs.AnalyzeStatementJob)
		sawPDF.Store(string(j.PDF) == "%PDF")
		j.ReportID = "rep-1"
		return nil
	}
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer q.Stop(context.Background())

	job := &jobs.AnalyzeStatementJob{AccountID: "acc", FileName: "a.pdf", PDF: []byte("%PDF")}
	if err := q.PublishAnalyzeStatement(ctx, job); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("job id should be assigned")
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.ReportID != "rep-1" || done.StartedAt == nil || done.CompletedAt == nil {
		t.Errorf("completed job = %+v", done)
	}
	if done.PDF != nil {
		t.Error("store must not keep statement bytes")
	}
	if !sawPDF.Load() {
		t.Error("handler should see the uploaded bytes")
	}
}

func TestQueue_FailedJobIsNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(10, 1, store)

	var calls atomic.Int32
	handler := func(context.Context, jobs.Job) error {
		calls.Add(1)
		return errors.New("failed to analyze the document")
	}
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer q.Stop(context.Background())

	job := &jobs.AnalyzeStatementJob{AccountID: "acc"}
	if err := q.PublishAnalyzeStatement(ctx, job); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if failed.Error == "" || failed.CompletedAt == nil {
		t.Errorf("failed job = %+v", failed)
	}

	time.Sleep(50 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}
}

func TestQueue_Closed(t *testing.T) {
	q := NewQueue(1, 1, nil)
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := q.PublishAnalyzeStatement(context.Background(), &jobs.AnalyzeStatementJob{}); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Publish err = %v, want ErrQueueClosed", err)
	}
	if err := q.Start(context.Background(), nil); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("Start err = %v, want ErrQueueClosed", err)
	}
	if err := q.Stop(context.Background()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestStore_ListJobs(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, j := range []*jobs.AnalyzeStatementJob{
		{JobID: "j1", AccountID: "a", Status: jobs.JobStatusCompleted},
		{JobID: "j2", AccountID: "b", Status: jobs.JobStatusFailed},
		{JobID: "j3", AccountID: "a", Status: jobs.JobStatusPending},
	} {
		j.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := s.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all newest first", jobs.JobFilter{}, []string{"j3", "j2", "j1"}},
		{"by account", jobs.JobFilter{AccountID: "a"}, []string{"j3", "j1"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusFailed}, []string{"j2"}},
		{"limit", jobs.JobFilter{Limit: 1}, []string{"j3"}},
		{"offset", jobs.JobFilter{Offset: 2}, []string{"j1"}},
		{"offset past end", jobs.JobFilter{Offset: 5}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d jobs, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].JobID != id {
					t.Errorf("got[%d] = %s, want %s", i, got[i].JobID, id)
				}
			}
		})
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.SaveJob(ctx, &jobs.AnalyzeStatementJob{}); err == nil {
		t.Error("SaveJob without id should fail")
	}
	if _, err := s.GetJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob err = %v", err)
	}
	if err := s.UpdateJobStatus(ctx, "missing", jobs.JobStatusFailed, "x"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("UpdateJobStatus err = %v", err)
	}

	_ = s.SaveJob(ctx, &jobs.AnalyzeStatementJob{JobID: "j"})
	if err := s.UpdateJobStatus(ctx, "j", jobs.JobStatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateJobStatus: %v", err)
	}
	got, _ := s.GetJob(ctx, "j")
	if got.Status != jobs.JobStatusFailed || got.Error != "boom" {
		t.Errorf("job = %+v", got)
	}
}
