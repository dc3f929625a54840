package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of one report ingestion.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusDownloading  JobStatus = "downloading"
	StatusParsing      JobStatus = "parsing"
	StatusExtracting   JobStatus = "extracting"
	StatusStoring      JobStatus = "storing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
	StatusDuplicate    JobStatus = "duplicate"
	StatusSkippedShort JobStatus = "skipped_short"
	StatusNoSection    JobStatus = "no_section"
)

// Job tracks one announcement through download, extraction and storage.
type Job struct {
	mu sync.Mutex

	ID          string `json:"job_id"`
	StockCode   string `json:"stock_code"`
	StockName   string `json:"stock_name"`
	ReportYear  int    `json:"report_year"`
	Title       string `json:"title"`
	PublishDate string `json:"publish_date"`
	AdjunctURL  string `json:"-"`
	Column      string `json:"column"`

	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJob builds a queued job. One (company, year) pair maps to exactly one
// job ID, so resubmissions across exchanges collapse onto the same entry.
func NewJob(stockCode, stockName string, year int) *Job {
	now := time.Now()
	return &Job{
		ID:         JobID(stockCode, year),
		StockCode:  stockCode,
		StockName:  stockName,
		ReportYear: year,
		Status:     StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// JobID is the natural key of a report ingestion.
func JobID(stockCode string, year int) string {
	return fmt.Sprintf("%s-%d", stockCode, year)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records the error and marks the job failed.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Phase = phase
	j.Error = err.Error()
	j.UpdatedAt = time.Now()
}

// Done reports whether the job reached a terminal state.
func (j *Job) Done() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch j.Status {
	case StatusQueued, StatusDownloading, StatusParsing, StatusExtracting, StatusStoring:
		return false
	}
	return true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	StockCode   string    `json:"stock_code"`
	StockName   string    `json:"stock_name"`
	ReportYear  int       `json:"report_year"`
	Title       string    `json:"title"`
	PublishDate string    `json:"publish_date"`
	Column      string    `json:"column"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Error       string    `json:"error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:          j.ID,
		StockCode:   j.StockCode,
		StockName:   j.StockName,
		ReportYear:  j.ReportYear,
		Title:       j.Title,
		PublishDate: j.PublishDate,
		Column:      j.Column,
		Status:      j.Status,
		Phase:       j.Phase,
		Error:       j.Error,
		UpdatedAt:   j.UpdatedAt,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// List returns snapshots of all live jobs.
func (s *JobStore) List() []JobSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobSnapshot, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Snapshot())
	}
	return out
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
