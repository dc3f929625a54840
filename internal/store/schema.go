package store

// Timestamps are stored as local "YYYY-MM-DD HH:MM:SS" text; the digest
// range queries compare them lexically, which for this format is also
// chronological.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS annual_reports (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	stock_code   TEXT NOT NULL,
	stock_name   TEXT NOT NULL,
	report_year  INTEGER NOT NULL,
	publish_date TEXT NOT NULL,
	file_path    TEXT NOT NULL,
	created_at   TEXT NOT NULL DEFAULT (datetime('now', 'localtime')),
	UNIQUE (stock_code, report_year)
);

CREATE INDEX IF NOT EXISTS idx_reports_publish_date
	ON annual_reports (publish_date);

CREATE TABLE IF NOT EXISTS annual_report_mda (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	report_id             INTEGER NOT NULL REFERENCES annual_reports(id) ON DELETE CASCADE,
	main_business_section TEXT,
	future_section        TEXT,
	full_mda              TEXT NOT NULL,
	created_at            TEXT NOT NULL DEFAULT (datetime('now', 'localtime'))
);

CREATE INDEX IF NOT EXISTS idx_mda_report_id
	ON annual_report_mda (report_id);

CREATE INDEX IF NOT EXISTS idx_mda_created_at
	ON annual_report_mda (created_at);

CREATE TABLE IF NOT EXISTS digest_state (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	last_sent_at TEXT NOT NULL
);
`
