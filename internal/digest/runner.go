package digest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/reportclaw/reportclaw/internal/reflow"
	"github.com/reportclaw/reportclaw/internal/store"
)

// Options selects the digest window.
//
// With Date set, rows are picked by publish date and the incremental
// high-water mark is left alone; StartDate/EndDate do the same for a range.
// Otherwise the run is incremental over extraction created_at: from the
// stored mark (or today 00:00 on the first run and with TodayOnly) to now,
// advancing the mark afterwards even when nothing was found.
type Options struct {
	Date      string // publish date YYYY-MM-DD
	StartDate string // publish date range, inclusive
	EndDate   string
	TodayOnly bool
	NoEmail   bool
}

// Runner produces digest files under ReportDir and optionally mails them.
type Runner struct {
	DB        *store.Store
	Log       *slog.Logger
	ReportDir string
	ReflowCfg reflow.Config

	Mail        MailConfig
	MailEnabled bool
}

// Run builds one digest. It returns the path of the written HTML file, or an
// empty path when the incremental window had no new rows.
func (r *Runner) Run(ctx context.Context, opts Options) (string, error) {
	rows, label, advance, windowEnd, err := r.selectRows(ctx, opts)
	if err != nil {
		return "", err
	}

	if len(rows) == 0 && advance != nil {
		// Push the mark forward anyway so the next run does not rescan
		// the same empty window.
		r.Log.Info("no new extractions in window", "window", label)
		return "", advance(windowEnd)
	}

	md := BuildMarkdown(rows, label, r.ReflowCfg)
	page, err := RenderHTML(md, "年报摘录汇总 "+label)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.ReportDir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	// Manual modes name the file after the requested publish date; the
	// incremental run uses the day it ran.
	stemDate := windowEnd.Format("2006-01-02")
	switch {
	case opts.Date != "":
		stemDate = opts.Date
	case opts.StartDate != "":
		stemDate = opts.StartDate + "_" + opts.EndDate
	}
	stem := filepath.Join(r.ReportDir, "annual_report_digest_"+stemDate)
	if err := os.WriteFile(stem+".md", []byte(md), 0644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}
	htmlPath := stem + ".html"
	if err := os.WriteFile(htmlPath, page, 0644); err != nil {
		return "", fmt.Errorf("write html: %w", err)
	}
	r.Log.Info("digest written", "path", htmlPath, "rows", len(rows))

	if r.MailEnabled && !opts.NoEmail {
		subject := fmt.Sprintf("年报摘录汇总 %s（%d家）", label, len(rows))
		if err := SendHTML(r.Mail, subject, page); err != nil {
			return htmlPath, fmt.Errorf("send digest mail: %w", err)
		}
		r.Log.Info("digest mailed", "recipients", len(r.Mail.To))
	}

	if advance != nil {
		if err := advance(windowEnd); err != nil {
			return htmlPath, err
		}
	}
	return htmlPath, nil
}

// selectRows resolves the digest window. advance is nil in the manual modes.
func (r *Runner) selectRows(ctx context.Context, opts Options) (rows []store.DigestRow, label string, advance func(time.Time) error, windowEnd time.Time, err error) {
	now := time.Now()

	switch {
	case opts.Date != "":
		rows, err = r.DB.RowsByPublishDateRange(ctx, opts.Date, opts.Date)
		return rows, opts.Date, nil, now, err

	case opts.StartDate != "" || opts.EndDate != "":
		if opts.StartDate == "" || opts.EndDate == "" {
			return nil, "", nil, now, fmt.Errorf("publish date range needs both start and end")
		}
		rows, err = r.DB.RowsByPublishDateRange(ctx, opts.StartDate, opts.EndDate)
		return rows, opts.StartDate + " ~ " + opts.EndDate, nil, now, err
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if !opts.TodayOnly {
		if mark, ok, merr := r.DB.LastSentAt(ctx); merr != nil {
			return nil, "", nil, now, merr
		} else if ok {
			start = mark
		}
	}

	rows, err = r.DB.RowsByCreatedRange(ctx, start, now)
	label = start.Format("2006-01-02 15:04") + " ~ " + now.Format("2006-01-02 15:04")
	advance = func(end time.Time) error {
		return r.DB.SetLastSentAt(ctx, end)
	}
	return rows, label, advance, now, err
}
