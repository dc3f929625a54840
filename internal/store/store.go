// Package store persists crawled annual reports and their extracted MD&A
// sections in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TimeFormat is the storage format for all timestamp columns.
const TimeFormat = "2006-01-02 15:04:05"

// Report is a row of annual_reports.
type Report struct {
	ID          int64  `json:"id"`
	StockCode   string `json:"stock_code"`
	StockName   string `json:"stock_name"`
	ReportYear  int    `json:"report_year"`
	PublishDate string `json:"publish_date"` // YYYY-MM-DD
	FilePath    string `json:"file_path"`
	CreatedAt   string `json:"created_at"`
}

// MDA is a row of annual_report_mda. The two section fields are empty when
// the corresponding subsection could not be carved out of the report.
type MDA struct {
	ID           int64  `json:"id"`
	ReportID     int64  `json:"report_id"`
	MainBusiness string `json:"main_business_section,omitempty"`
	Future       string `json:"future_section,omitempty"`
	FullMDA      string `json:"full_mda"`
	CreatedAt    string `json:"created_at"`
}

// DigestRow joins one report with its extracted sections for rendering.
type DigestRow struct {
	StockCode    string
	StockName    string
	ReportYear   int
	PublishDate  string
	FilePath     string
	MainBusiness string
	Future       string
	CreatedAt    string
}

// Store wraps the SQLite database for all reportclaw persistence. Safe for
// concurrent use.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and initialises the schema.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Exists reports whether a report for the given company and year is already
// stored. The crawler uses this for cross-exchange deduplication.
func (s *Store) Exists(ctx context.Context, stockCode string, year int) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM annual_reports WHERE stock_code = ? AND report_year = ?",
		stockCode, year).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertReport stores one annual report row and returns its ID.
func (s *Store) InsertReport(ctx context.Context, r Report) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO annual_reports (stock_code, stock_name, report_year, publish_date, file_path)
		VALUES (?, ?, ?, ?, ?)
	`, r.StockCode, r.StockName, r.ReportYear, r.PublishDate, r.FilePath)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	return res.LastInsertId()
}

// InsertMDA stores the extracted sections for a report. Empty section
// strings are stored as NULL.
func (s *Store) InsertMDA(ctx context.Context, m MDA) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO annual_report_mda (report_id, main_business_section, future_section, full_mda)
		VALUES (?, ?, ?, ?)
	`, m.ReportID, nullable(m.MainBusiness), nullable(m.Future), m.FullMDA)
	if err != nil {
		return 0, fmt.Errorf("insert mda: %w", err)
	}
	return res.LastInsertId()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ListReports returns the most recently stored reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stock_code, stock_name, report_year, publish_date, file_path, created_at
		FROM annual_reports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var r Report
		if err := rows.Scan(&r.ID, &r.StockCode, &r.StockName, &r.ReportYear,
			&r.PublishDate, &r.FilePath, &r.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// GetMDA returns the extracted sections for a report, or nil when the report
// has no extraction row.
func (s *Store) GetMDA(ctx context.Context, reportID int64) (*MDA, error) {
	m := &MDA{}
	var business, future sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, report_id, main_business_section, future_section, full_mda, created_at
		FROM annual_report_mda
		WHERE report_id = ?
	`, reportID).Scan(&m.ID, &m.ReportID, &business, &future, &m.FullMDA, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.MainBusiness = business.String
	m.Future = future.String
	return m, nil
}

const digestSelect = `
	SELECT
		r.stock_code, r.stock_name, r.report_year, r.publish_date, r.file_path,
		m.main_business_section, m.future_section, m.created_at
	FROM annual_reports r
	JOIN annual_report_mda m ON m.report_id = r.id
`

// RowsByPublishDateRange returns digest rows whose report publish_date falls
// in [start, end], both YYYY-MM-DD inclusive.
func (s *Store) RowsByPublishDateRange(ctx context.Context, start, end string) ([]DigestRow, error) {
	rows, err := s.db.QueryContext(ctx, digestSelect+`
		WHERE r.publish_date >= ? AND r.publish_date <= ?
		ORDER BY r.publish_date, r.stock_code
	`, start, end)
	if err != nil {
		return nil, err
	}
	return scanDigestRows(rows)
}

// RowsByCreatedRange returns digest rows whose extraction row was created in
// (start, end]. This is the incremental digest window.
func (s *Store) RowsByCreatedRange(ctx context.Context, start, end time.Time) ([]DigestRow, error) {
	rows, err := s.db.QueryContext(ctx, digestSelect+`
		WHERE m.created_at > ? AND m.created_at <= ?
		ORDER BY m.created_at, r.stock_code
	`, start.Format(TimeFormat), end.Format(TimeFormat))
	if err != nil {
		return nil, err
	}
	return scanDigestRows(rows)
}

func scanDigestRows(rows *sql.Rows) ([]DigestRow, error) {
	defer rows.Close()
	var out []DigestRow
	for rows.Next() {
		var d DigestRow
		var business, future sql.NullString
		if err := rows.Scan(&d.StockCode, &d.StockName, &d.ReportYear, &d.PublishDate,
			&d.FilePath, &business, &future, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.MainBusiness = business.String
		d.Future = future.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// LastSentAt returns the digest high-water mark; ok is false before the
// first send.
func (s *Store) LastSentAt(ctx context.Context) (time.Time, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT last_sent_at FROM digest_state WHERE id = 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.ParseInLocation(TimeFormat, raw, time.Local)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last_sent_at: %w", err)
	}
	return t, true, nil
}

// SetLastSentAt advances the digest high-water mark.
func (s *Store) SetLastSentAt(ctx context.Context, t time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO digest_state (id, last_sent_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET last_sent_at = excluded.last_sent_at
	`, t.Format(TimeFormat))
	return err
}
