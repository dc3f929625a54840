package pipeline

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/reportclaw/reportclaw/internal/cninfo"
	"github.com/reportclaw/reportclaw/internal/store"
)

// CrawlConfig bounds one incremental crawl.
type CrawlConfig struct {
	DaysBack      int
	PageSize      int
	MaxQueryPages int // per column, against runaway pagination
	SearchKey     string
	Category      string
	PageDelay     time.Duration
}

// Crawler walks the announcement search for both exchanges and submits one
// job per fresh annual report.
type Crawler struct {
	client *cninfo.Client
	db     *store.Store
	orch   *Orchestrator
	log    *slog.Logger
	cfg    CrawlConfig
}

func NewCrawler(client *cninfo.Client, db *store.Store, orch *Orchestrator,
	log *slog.Logger, cfg CrawlConfig) *Crawler {
	return &Crawler{client: client, db: db, orch: orch, log: log, cfg: cfg}
}

// Run crawls both columns over the lookback window. It returns early only on
// context cancellation; per-column transport failures end that column's
// pagination and move on.
func (c *Crawler) Run(ctx context.Context) error {
	end := time.Now()
	start := end.AddDate(0, 0, -c.cfg.DaysBack)

	for _, column := range []string{cninfo.ColumnSZSE, cninfo.ColumnSSE} {
		if err := c.crawlColumn(ctx, column, start, end); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crawler) crawlColumn(ctx context.Context, column string, start, end time.Time) error {
	log := c.log.With("column", column)

	for page := 1; ; page++ {
		result, err := c.queryPage(ctx, column, page, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("giving up on column after repeated query failures", "page", page, "error", err)
			return nil
		}

		anns := result.Announcements
		log.Info("crawl page", "page", page, "rows", len(anns))

		// The server sometimes ignores seDate; pagination would then walk
		// into history forever. Announcement times bound it instead: rows
		// arrive newest first, so a page whose newest row predates the
		// window has nothing left for us.
		oldest, newest, haveTimes := pageTimeRange(anns)
		if haveTimes && newest.Before(start) {
			log.Info("page entirely before window, stopping", "newest", newest.Format("2006-01-02"))
			return nil
		}
		stopAfterPage := haveTimes && oldest.Before(start)

		// The cap page is queried but never processed.
		if page >= c.cfg.MaxQueryPages {
			log.Warn("page cap reached, stopping", "page", page)
			return nil
		}
		if len(anns) == 0 {
			return nil
		}

		submitted := 0
		for i := range anns {
			if c.submit(ctx, column, &anns[i], start, end) {
				submitted++
			}
		}

		if submitted == 0 && page >= 3 {
			log.Info("no fresh reports for several pages, stopping", "page", page)
			return nil
		}
		if stopAfterPage {
			log.Info("reached window lower bound, stopping", "page", page)
			return nil
		}

		select {
		case <-time.After(c.cfg.PageDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Crawler) queryPage(ctx context.Context, column string, page int, start, end time.Time) (*cninfo.QueryResult, error) {
	req := cninfo.QueryRequest{
		Column:    column,
		Page:      page,
		PageSize:  c.cfg.PageSize,
		StartDate: start,
		EndDate:   end,
		SearchKey: c.cfg.SearchKey,
		Category:  c.cfg.Category,
	}
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		var result *cninfo.QueryResult
		result, lastErr = c.client.Query(ctx, req)
		if lastErr == nil {
			return result, nil
		}
		if !IsRetryable(lastErr) {
			return nil, lastErr
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// submit filters one announcement and queues it; reports whether a job was
// actually submitted.
func (c *Crawler) submit(ctx context.Context, column string, ann *cninfo.Announcement, start, end time.Time) bool {
	if !IsAnnualReportTitle(ann.Title) {
		return false
	}
	year, ok := ParseReportYear(ann.Title)
	if !ok {
		return false
	}

	// Announcements with an undecodable or out-of-window time are dropped;
	// trusting them would re-ingest history whenever seDate misbehaves.
	ts, ok := ann.PublishTime()
	if !ok || ts.Before(start) || ts.After(end) {
		return false
	}

	exists, err := c.db.Exists(ctx, ann.SecCode, year)
	if err != nil {
		c.log.Error("dedup check failed", "stock_code", ann.SecCode, "error", err)
		return false
	}
	if exists {
		return false
	}

	job := NewJob(ann.SecCode, ann.SecName, year)
	job.Title = ann.Title
	job.PublishDate = ts.Format("2006-01-02")
	job.AdjunctURL = ann.AdjunctURL
	job.Column = column
	if err := c.orch.Submit(job); err != nil {
		c.log.Warn("submit failed", "job_id", job.ID, "error", err)
		return false
	}
	return true
}

func pageTimeRange(anns []cninfo.Announcement) (oldest, newest time.Time, ok bool) {
	for i := range anns {
		ts, tok := anns[i].PublishTime()
		if !tok {
			continue
		}
		if !ok || ts.Before(oldest) {
			oldest = ts
		}
		if !ok || ts.After(newest) {
			newest = ts
		}
		ok = true
	}
	return oldest, newest, ok
}

var (
	reportYearRe  = regexp.MustCompile(`(20\d{2})\s*年?\s*年度报告`)
	leadingYearRe = regexp.MustCompile(`^(20\d{2})`)
)

// IsAnnualReportTitle accepts full annual report titles and rejects
// abstracts and about-the-report notices.
func IsAnnualReportTitle(title string) bool {
	if !strings.Contains(title, "年度报告") {
		return false
	}
	if strings.Contains(title, "摘要") {
		return false
	}
	// "关于…年度报告…" notices talk about a report instead of being one,
	// unless the report name itself precedes the 关于.
	if idx := strings.Index(title, "关于"); idx >= 0 && !strings.Contains(title[:idx], "年度报告") {
		return false
	}
	return true
}

// ParseReportYear pulls the report year out of a title. The common forms are
// "2023年年度报告", "2023年度报告" and "2023 年度报告"; a bare leading year is
// the last resort.
func ParseReportYear(title string) (int, bool) {
	if m := reportYearRe.FindStringSubmatch(title); m != nil {
		y, err := strconv.Atoi(m[1])
		return y, err == nil
	}
	if m := leadingYearRe.FindStringSubmatch(title); m != nil {
		y, err := strconv.Atoi(m[1])
		return y, err == nil
	}
	return 0, false
}
