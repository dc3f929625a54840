// Package cninfo is a minimal client for the cninfo.com.cn announcement
// search API and its static file host.
package cninfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const (
	DefaultBaseURL   = "http://www.cninfo.com.cn"
	DefaultStaticURL = "http://static.cninfo.com.cn"

	queryPath = "/new/hisAnnouncement/query"
)

// Columns accepted by the query endpoint.
const (
	ColumnSZSE = "szse"
	ColumnSSE  = "sse"
)

// Client calls the announcement query API and downloads attachments. It is
// safe for concurrent use.
type Client struct {
	baseURL    string
	staticURL  string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL, staticURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if staticURL == "" {
		staticURL = DefaultStaticURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		staticURL: strings.TrimSuffix(staticURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Announcement is one row of a query response. AnnouncementTime is kept raw:
// the API serves it as epoch milliseconds, epoch seconds, a digit string, or
// a date string depending on the column and the era of the filing.
type Announcement struct {
	SecCode    string          `json:"secCode"`
	SecName    string          `json:"secName"`
	Title      string          `json:"announcementTitle"`
	AdjunctURL string          `json:"adjunctUrl"`
	Time       json.RawMessage `json:"announcementTime"`
}

// PublishTime decodes the raw announcement time. ok is false when no known
// shape matches; callers treat such rows as outside any time window.
func (a *Announcement) PublishTime() (time.Time, bool) {
	if len(a.Time) == 0 || string(a.Time) == "null" {
		return time.Time{}, false
	}
	var n int64
	if err := json.Unmarshal(a.Time, &n); err == nil {
		return fromEpoch(n), true
	}
	var s string
	if err := json.Unmarshal(a.Time, &s); err != nil {
		return time.Time{}, false
	}
	if isDigits(s) {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return fromEpoch(n), true
		}
		return time.Time{}, false
	}
	if len(s) >= 10 {
		if t, err := time.ParseInLocation("2006-01-02", s[:10], time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// fromEpoch guesses seconds vs milliseconds by magnitude.
func fromEpoch(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// QueryRequest describes one page of an announcement search.
type QueryRequest struct {
	Column    string // ColumnSZSE or ColumnSSE
	Page      int    // 1-based
	PageSize  int
	StartDate time.Time
	EndDate   time.Time
	SearchKey string
	Category  string
}

// QueryResult is the decoded query response.
type QueryResult struct {
	Announcements []Announcement `json:"announcements"`
	HasMore       bool           `json:"hasMore"`
	TotalPages    int            `json:"totalpages"`
}

// Query fetches one page of announcements. Server errors and rate limiting
// come back as *RetryableError.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	plate := "sz"
	if req.Column == ColumnSSE {
		plate = "sh"
	}
	form := url.Values{
		"pageNum":   {strconv.Itoa(req.Page)},
		"pageSize":  {strconv.Itoa(req.PageSize)},
		"column":    {req.Column},
		"plate":     {plate},
		"tabName":   {"fulltext"},
		"category":  {req.Category},
		"seDate":    {req.StartDate.Format("2006-01-02") + "~" + req.EndDate.Format("2006-01-02")},
		"isHLtitle": {"false"},
		"searchkey": {req.SearchKey},
		"secid":     {""},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+queryPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", "Mozilla/5.0")
	httpReq.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RetryableError{Op: "query", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{Op: "query", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query status %d", resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var result QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c.log.Debug("cninfo query page",
		"column", req.Column, "page", req.Page, "rows", len(result.Announcements))
	return &result, nil
}

// Download fetches the attachment at adjunctURL from the static host into
// destPath. The file is written via a temp name and renamed, so a partial
// download never looks like a finished one.
func (c *Client) Download(ctx context.Context, adjunctURL, destPath string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.staticURL+"/"+strings.TrimPrefix(adjunctURL, "/"), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{Op: "download", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &RetryableError{Op: "download", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}

// decodeBody reads the response body as UTF-8. The query endpoint
// occasionally serves GB-coded bodies; the declared charset decides.
func decodeBody(resp *http.Response) ([]byte, error) {
	body := io.Reader(io.LimitReader(resp.Body, 8<<20))
	ct := resp.Header.Get("Content-Type")
	if _, params, err := mime.ParseMediaType(ct); err == nil {
		if cs := strings.ToLower(params["charset"]); strings.HasPrefix(cs, "gb") {
			return io.ReadAll(transform.NewReader(body, simplifiedchinese.GB18030.NewDecoder()))
		}
	}
	if r, err := charset.NewReader(body, ct); err == nil {
		body = r
	}
	return io.ReadAll(body)
}

// RetryableError marks a transient transport failure worth retrying.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("cninfo %s: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}
