//go:build cgo

package digest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reportclaw/reportclaw/internal/reflow"
	"github.com/reportclaw/reportclaw/internal/store"
)

func newTestRunner(t *testing.T) (*Runner, *store.Store) {
	t.Helper()
	dir := t.TempDir()
	db, err := store.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Runner{
		DB:        db,
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		ReportDir: filepath.Join(dir, "report"),
		ReflowCfg: reflow.DefaultConfig(),
	}, db
}

func insertRow(t *testing.T, db *store.Store, code string) {
	t.Helper()
	ctx := context.Background()
	id, err := db.InsertReport(ctx, store.Report{
		StockCode:   code,
		StockName:   "示例公司",
		ReportYear:  2023,
		PublishDate: "2024-03-15",
		FilePath:    code + ".pdf",
	})
	if err != nil {
		t.Fatalf("insert report: %v", err)
	}
	if _, err := db.InsertMDA(ctx, store.MDA{
		ReportID:     id,
		MainBusiness: "一、经营情况\n公司经营稳健，业绩良好。",
		FullMDA:      "第三节 管理层讨论与分析……",
	}); err != nil {
		t.Fatalf("insert mda: %v", err)
	}
}

func TestRunIncrementalWritesDigestAndAdvancesMark(t *testing.T) {
	r, db := newTestRunner(t)
	ctx := context.Background()
	insertRow(t, db, "000001")

	path, err := r.Run(ctx, Options{TodayOnly: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if path == "" {
		t.Fatal("expected a written digest")
	}
	page, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if !strings.Contains(string(page), "000001") {
		t.Error("digest does not mention the stored report")
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".html") + ".md"); err != nil {
		t.Errorf("markdown companion missing: %v", err)
	}

	if _, ok, err := db.LastSentAt(ctx); err != nil || !ok {
		t.Errorf("mark should be set after an incremental run (ok=%v, err=%v)", ok, err)
	}
}

func TestRunIncrementalEmptyWindowStillAdvances(t *testing.T) {
	r, db := newTestRunner(t)
	ctx := context.Background()

	path, err := r.Run(ctx, Options{TodayOnly: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if path != "" {
		t.Errorf("empty window should not write a digest, got %q", path)
	}
	if _, ok, _ := db.LastSentAt(ctx); !ok {
		t.Error("mark must advance even when the window is empty")
	}
}

func TestRunManualDateLeavesMarkAlone(t *testing.T) {
	r, db := newTestRunner(t)
	ctx := context.Background()
	insertRow(t, db, "000002")

	path, err := r.Run(ctx, Options{Date: "2024-03-15"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if path == "" {
		t.Fatal("expected a written digest")
	}
	if base := filepath.Base(path); base != "annual_report_digest_2024-03-15.html" {
		t.Errorf("file should be named after the requested date, got %s", base)
	}
	if _, ok, _ := db.LastSentAt(ctx); ok {
		t.Error("manual date mode must not touch the high-water mark")
	}
}
