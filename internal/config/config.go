// Package config loads all runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/reportclaw/reportclaw/internal/api"
	"github.com/reportclaw/reportclaw/internal/cninfo"
	"github.com/reportclaw/reportclaw/internal/digest"
	"github.com/reportclaw/reportclaw/internal/extract"
	"github.com/reportclaw/reportclaw/internal/pipeline"
	"github.com/reportclaw/reportclaw/internal/reflow"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Paths
	DBPath      string
	DownloadDir string
	ReportDir   string

	// cninfo endpoints
	CninfoBaseURL   string
	CninfoStaticURL string
	HTTPTimeout     time.Duration

	// Crawl window and pagination
	DaysBack      int
	PageSize      int
	MaxQueryPages int
	PageDelay     time.Duration
	SearchKey     string
	Category      string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Ingestion gates
	MinReportPages int

	// Upload limits
	MaxUploadBytes int64

	// Section extraction tuning
	TOCScanPages     int
	TOCWindowPages   int
	NoTOCScanPages   int
	MinTOCPage       int
	BodyScanPages    int
	CapturePages     int
	MinOverviewRunes int
	MinOutlookRunes  int

	// Reflow tuning
	ShortLineRunes int
	ShortLineBatch int
	SoftWrapRunes  int
	SoftWrapStep   int
	HeaderMaxRunes int

	// Digest mail
	MailEnabled  bool
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailTo       []string
	MailUseSSL   bool
}

func Load() Config {
	ext := extract.DefaultConfig()
	rf := reflow.DefaultConfig()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("REPORTCLAW_API_KEY"),

		DBPath:      envOr("DB_PATH", "data/reportclaw.db"),
		DownloadDir: envOr("DOWNLOAD_DIR", "data/downloads"),
		ReportDir:   envOr("REPORT_DIR", "data/report"),

		CninfoBaseURL:   envOr("CNINFO_BASE_URL", cninfo.DefaultBaseURL),
		CninfoStaticURL: envOr("CNINFO_STATIC_URL", cninfo.DefaultStaticURL),
		HTTPTimeout:     envDuration("HTTP_TIMEOUT", 60*time.Second),

		DaysBack:      envInt("DAYS_BACK", 30),
		PageSize:      envInt("PAGE_SIZE", 30),
		MaxQueryPages: envInt("MAX_QUERY_PAGES", 50),
		PageDelay:     envDuration("PAGE_DELAY", 1500*time.Millisecond),
		SearchKey:     envOr("SEARCH_KEY", "年度报告"),
		Category:      envOr("CATEGORY", "category_ndbg_szsh;"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),

		MinReportPages: envInt("MIN_REPORT_PAGES", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 209715200), // 200MB

		TOCScanPages:     envInt("TOC_SCAN_PAGES", ext.TOCScanPages),
		TOCWindowPages:   envInt("TOC_WINDOW_PAGES", ext.TOCWindowPages),
		NoTOCScanPages:   envInt("NO_TOC_SCAN_PAGES", ext.NoTOCScanPages),
		MinTOCPage:       envInt("MIN_TOC_PAGE", ext.MinTOCPage),
		BodyScanPages:    envInt("BODY_SCAN_PAGES", ext.BodyScanPages),
		CapturePages:     envInt("CAPTURE_PAGES", ext.CapturePages),
		MinOverviewRunes: envInt("MIN_OVERVIEW_RUNES", ext.MinOverviewRunes),
		MinOutlookRunes:  envInt("MIN_OUTLOOK_RUNES", ext.MinOutlookRunes),

		ShortLineRunes: envInt("SHORT_LINE_RUNES", rf.ShortLineRunes),
		ShortLineBatch: envInt("SHORT_LINE_BATCH", rf.ShortLineBatch),
		SoftWrapRunes:  envInt("SOFT_WRAP_RUNES", rf.SoftWrapRunes),
		SoftWrapStep:   envInt("SOFT_WRAP_STEP", rf.SoftWrapStep),
		HeaderMaxRunes: envInt("HEADER_MAX_RUNES", rf.HeaderMaxRunes),

		MailEnabled:  envBool("MAIL_ENABLED", false),
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envInt("SMTP_PORT", 465),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASS"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailTo:       splitList(os.Getenv("MAIL_TO")),
		MailUseSSL:   envBool("MAIL_USE_SSL", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 30
	}
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = 30
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 209715200
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	return cfg
}

// Validate checks the settings the serve command cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("REPORTCLAW_API_KEY is required")
	}
	return nil
}

// ValidateMail checks the settings a mailing digest run needs.
func (c Config) ValidateMail() error {
	if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPassword == "" {
		return fmt.Errorf("SMTP_HOST, SMTP_USER and SMTP_PASS are required when mail is enabled")
	}
	if len(c.MailTo) == 0 {
		return fmt.Errorf("MAIL_TO is required when mail is enabled")
	}
	return nil
}

// ExtractConfig materializes the extraction tuning.
func (c Config) ExtractConfig() extract.Config {
	cfg := extract.DefaultConfig()
	cfg.TOCScanPages = c.TOCScanPages
	cfg.TOCWindowPages = c.TOCWindowPages
	cfg.NoTOCScanPages = c.NoTOCScanPages
	cfg.MinTOCPage = c.MinTOCPage
	cfg.BodyScanPages = c.BodyScanPages
	cfg.CapturePages = c.CapturePages
	cfg.MinOverviewRunes = c.MinOverviewRunes
	cfg.MinOutlookRunes = c.MinOutlookRunes
	return cfg
}

// ReflowConfig materializes the reflow tuning.
func (c Config) ReflowConfig() reflow.Config {
	return reflow.Config{
		ShortLineRunes: c.ShortLineRunes,
		ShortLineBatch: c.ShortLineBatch,
		SoftWrapRunes:  c.SoftWrapRunes,
		SoftWrapStep:   c.SoftWrapStep,
		HeaderMaxRunes: c.HeaderMaxRunes,
	}
}

// PipelineConfig sizes the worker pool.
func (c Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		WorkerCount:    c.WorkerCount,
		MaxQueueSize:   c.MaxQueueSize,
		JobTTL:         c.JobTTL,
		DownloadDir:    c.DownloadDir,
		MinReportPages: c.MinReportPages,
	}
}

// CrawlConfig bounds the crawler.
func (c Config) CrawlConfig() pipeline.CrawlConfig {
	return pipeline.CrawlConfig{
		DaysBack:      c.DaysBack,
		PageSize:      c.PageSize,
		MaxQueryPages: c.MaxQueryPages,
		SearchKey:     c.SearchKey,
		Category:      c.Category,
		PageDelay:     c.PageDelay,
	}
}

// APIConfig carries the server knobs.
func (c Config) APIConfig() api.Config {
	return api.Config{
		APIKey:         c.APIKey,
		MaxUploadBytes: c.MaxUploadBytes,
		ReflowCfg:      c.ReflowConfig(),
	}
}

// MailConfig carries the digest delivery settings.
func (c Config) MailConfig() digest.MailConfig {
	return digest.MailConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		From:     c.MailFrom,
		To:       c.MailTo,
		UseSSL:   c.MailUseSSL,
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
