// Package extract recovers the structure of 第三节 管理层讨论与分析 (the
// MD&A section) from the noisy plain text of A-share annual reports. It has
// no reliable schema to work with: section starts come from a validated TOC
// lookup with a scan fallback, subsection boundaries from layered ordinal and
// keyword heuristics. A section that cannot be found is a normal outcome,
// reported as absence rather than an error.
package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Config carries the empirically tuned constants of the extraction
// heuristics. The numeric values have no derivation beyond tuning against
// real filings; change them per deployment, not in code.
type Config struct {
	TOCScanPages   int // pages searched for the 目录 marker
	TOCWindowPages int // pages after the 目录 marker read as TOC text
	NoTOCScanPages int // TOC window when no 目录 marker is found
	MinTOCPage     int // TOC-reported pages below this are misparses
	BodyScanPages  int // fallback scan bound
	CapturePages   int // capture bound from the start page

	MinOverviewRunes int // shorter overviews fall back to the full section
	MinOutlookRunes  int // shorter outlook matches are discarded

	MajorHeadings   []string
	StopTitles      []string
	OutlookKeywords []string
}

// DefaultConfig returns the tuned production values.
func DefaultConfig() Config {
	return Config{
		TOCScanPages:     20,
		TOCWindowPages:   4,
		NoTOCScanPages:   6,
		MinTOCPage:       5,
		BodyScanPages:    200,
		CapturePages:     200,
		MinOverviewRunes: 500,
		MinOutlookRunes:  200,
		MajorHeadings:    DefaultMajorHeadings,
		StopTitles:       DefaultStopTitles,
		OutlookKeywords:  DefaultOutlookKeywords,
	}
}

// Result is the outcome of one successful section extraction. FullSection is
// never empty; the two subsection fields are empty when their heading could
// not be found or the captured span failed its length sanity check.
type Result struct {
	ManagementOverview string `json:"management_overview,omitempty"`
	FutureOutlook      string `json:"future_outlook,omitempty"`
	FullSection        string `json:"full_section"`
}

// Extractor runs the locate-and-carve pipeline over one document at a time.
// It holds no per-document state; one Extractor may serve many goroutines.
type Extractor struct {
	cfg Config
	log *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{cfg: cfg, log: log}
}

// Extract locates 第三节 in the document and carves the management overview
// and future outlook out of it. ok is false when the section cannot be
// located at all; that is an expected outcome for malformed or non-standard
// filings, not an error.
func (e *Extractor) Extract(src PageSource) (*Result, bool) {
	section, ok := e.locate(src)
	if !ok {
		return nil, false
	}

	res := &Result{FullSection: section}
	res.ManagementOverview = e.overview(section)

	outlook, found := ExtractSection(section, SectionSpec{
		Keywords:      e.cfg.OutlookKeywords,
		MajorHeadings: e.cfg.MajorHeadings,
	})
	if found && utf8.RuneCountInString(outlook) >= e.cfg.MinOutlookRunes {
		res.FutureOutlook = outlook
	} else if found {
		e.log.Debug("outlook match below minimum length, discarded",
			"runes", utf8.RuneCountInString(outlook))
	}
	return res, true
}

// coreCompetitivenessRe anchors the single most commonly mis-detected
// overview boundary: the 核心竞争力分析 heading, matched loosely enough to
// survive split title lines and missing punctuation.
var coreCompetitivenessRe = regexp.MustCompile(`(?:^|\n)\s*(?:[一二三四五六七八九十]{1,3}|\d{1,2})[、.．:：]\s*[^\n]{0,80}核心竞争力分析`)

// overview carves the management overview off the front of the section: the
// span from the section marker to the first stop-title heading. Two
// fallbacks apply, in order: a forced truncation at the 核心竞争力分析
// anchor, matched against the whole section and overriding whatever the
// stop-title carve produced, and replacement by the whole section when the
// result came out implausibly short (a short match means a false-positive
// boundary, and the full section is the more useful artifact).
func (e *Extractor) overview(section string) string {
	overview := section
	if end, ok := nextKeywordHeading(section, 0, e.cfg.StopTitles); ok {
		overview = sliceWindow(section, Window{Start: 0, End: end})
	}
	if loc := coreCompetitivenessRe.FindStringIndex(section); loc != nil && loc[0] > 0 {
		overview = sliceWindow(section, Window{Start: 0, End: loc[0]})
	}
	if utf8.RuneCountInString(overview) < e.cfg.MinOverviewRunes {
		overview = strings.TrimSpace(section)
	}
	return overview
}
