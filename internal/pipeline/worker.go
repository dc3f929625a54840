package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/reportclaw/reportclaw/internal/cninfo"
	"github.com/reportclaw/reportclaw/internal/extract"
	"github.com/reportclaw/reportclaw/internal/parser"
	"github.com/reportclaw/reportclaw/internal/store"
)

// Worker processes a single report job: download, page-count gate, section
// extraction, storage.
type Worker struct {
	client    *cninfo.Client
	db        *store.Store
	extractor *extract.Extractor
	log       *slog.Logger

	downloadDir    string
	minReportPages int
}

func NewWorker(client *cninfo.Client, db *store.Store, extractor *extract.Extractor,
	log *slog.Logger, downloadDir string, minReportPages int) *Worker {
	return &Worker{
		client:         client,
		db:             db,
		extractor:      extractor,
		log:            log,
		downloadDir:    downloadDir,
		minReportPages: minReportPages,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "title", job.Title)

	// Cross-exchange dedup: the same company may announce on both columns.
	exists, err := w.db.Exists(ctx, job.StockCode, job.ReportYear)
	if err != nil {
		log.Error("dedup check failed", "error", err)
		job.Fail("dedup", err)
		return
	}
	if exists {
		job.SetStatus(StatusDuplicate, "dedup")
		return
	}

	job.SetStatus(StatusDownloading, "download")
	filePath := filepath.Join(w.downloadDir, filepath.Base(job.AdjunctURL))
	if _, err := os.Stat(filePath); err != nil {
		if err := w.download(ctx, job.AdjunctURL, filePath); err != nil {
			log.Error("download failed", "error", err)
			job.Fail("download", err)
			return
		}
	}

	job.SetStatus(StatusParsing, "parse")
	doc, err := parser.Open(filePath)
	if err != nil {
		log.Error("open pdf failed", "error", err)
		job.Fail("parse", err)
		return
	}
	defer doc.Close()

	// Announcements shorter than a real annual report are corrections or
	// notices that slipped past the title filter.
	if pages := doc.PageCount(); pages < w.minReportPages {
		log.Info("skipping short pdf", "pages", pages)
		job.SetStatus(StatusSkippedShort, "page_gate")
		return
	}

	job.SetStatus(StatusExtracting, "extract")
	res, ok := w.extractor.Extract(doc)
	if !ok {
		log.Info("section three not found")
		job.SetStatus(StatusNoSection, "extract")
		return
	}

	job.SetStatus(StatusStoring, "store")
	reportID, err := w.db.InsertReport(ctx, store.Report{
		StockCode:   job.StockCode,
		StockName:   job.StockName,
		ReportYear:  job.ReportYear,
		PublishDate: job.PublishDate,
		FilePath:    filePath,
	})
	if err != nil {
		log.Error("store report failed", "error", err)
		job.Fail("store", err)
		return
	}
	if _, err := w.db.InsertMDA(ctx, store.MDA{
		ReportID:     reportID,
		MainBusiness: res.ManagementOverview,
		Future:       res.FutureOutlook,
		FullMDA:      res.FullSection,
	}); err != nil {
		log.Error("store mda failed", "error", err)
		job.Fail("store", err)
		return
	}

	job.SetStatus(StatusCompleted, "done")
	log.Info("report ingested", "report_id", reportID)
}

func (w *Worker) download(ctx context.Context, adjunctURL, destPath string) error {
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		lastErr = w.client.Download(ctx, adjunctURL, destPath)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		w.log.Warn("retryable download error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
