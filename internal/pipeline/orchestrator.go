package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reportclaw/reportclaw/internal/cninfo"
	"github.com/reportclaw/reportclaw/internal/extract"
	"github.com/reportclaw/reportclaw/internal/store"
)

// Config sizes the ingestion pipeline.
type Config struct {
	WorkerCount    int
	MaxQueueSize   int
	JobTTL         time.Duration
	DownloadDir    string
	MinReportPages int
}

// Orchestrator manages the report ingestion pipeline.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	client *cninfo.Client
	db     *store.Store
	ext    *extract.Extractor
	log    *slog.Logger
	cfg    Config

	cancel   context.CancelFunc
	workerWg sync.WaitGroup
	bgWg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline; call Start to launch workers.
func NewOrchestrator(cfg Config, client *cninfo.Client, db *store.Store,
	ext *extract.Extractor, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		client: client,
		db:     db,
		ext:    ext,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.workerWg.Add(1)
		go func() {
			defer o.workerWg.Done()
			w := NewWorker(o.client, o.db, o.ext, o.log, o.cfg.DownloadDir, o.cfg.MinReportPages)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup.
	o.bgWg.Add(1)
	go func() {
		defer o.bgWg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Drain closes the queue and waits for workers to finish the jobs already
// submitted. Used by the one-shot crawl command.
func (o *Orchestrator) Drain() {
	close(o.queue)
	o.workerWg.Wait()
	if o.cancel != nil {
		o.cancel()
	}
	o.bgWg.Wait()
}

// Stop shuts the pipeline down without finishing queued work.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.workerWg.Wait()
	o.bgWg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.Fail("submit", fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize))
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Jobs returns snapshots of all live jobs.
func (o *Orchestrator) Jobs() []JobSnapshot {
	return o.jobs.List()
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
