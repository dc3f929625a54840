// Package reflow re-segments extraction-mangled section text into
// presentation blocks. PDF text extraction breaks paragraphs at arbitrary
// line widths and turns tables into one-cell-per-line runs; reflow undoes
// both so a renderer can lay the text out as natural paragraphs under
// headings. Reflow never fails: empty or fully-filtered input yields a
// single placeholder block.
package reflow

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind tags a Block.
type Kind int

const (
	Heading Kind = iota
	Paragraph
	Blank
)

// MarshalJSON renders the kind as a readable tag for API consumers.
func (k Kind) MarshalJSON() ([]byte, error) {
	switch k {
	case Heading:
		return []byte(`"heading"`), nil
	case Paragraph:
		return []byte(`"paragraph"`), nil
	default:
		return []byte(`"blank"`), nil
	}
}

// Block is one presentation unit. Paragraph text is indentable by the
// renderer (two full-width spaces); headings are not.
type Block struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Placeholder is emitted when nothing survives filtering, so the renderer
// always has something to show for a row.
const Placeholder = "（未提取到内容）"

// Config carries the tuned constants of the reflow heuristics.
type Config struct {
	ShortLineRunes int // lines at or under this length are table-cell suspects
	ShortLineBatch int // flush the short-line buffer at this many lines
	SoftWrapRunes  int // minimum token length for soft wrapping
	SoftWrapStep   int // zero-width separator interval
	HeaderMaxRunes int // max length of a bare 年度报告 header line
}

func DefaultConfig() Config {
	return Config{
		ShortLineRunes: 6,
		ShortLineBatch: 12,
		SoftWrapRunes:  25,
		SoftWrapStep:   20,
		HeaderMaxRunes: 25,
	}
}

var (
	headingRe = regexp.MustCompile(`^(?:第[一二三四五六七八九十0-9]{1,3}[节章]|` +
		`[一二三四五六七八九十]{1,3}、|` +
		`\d{1,2}、|` +
		`[（(][一二三四五六七八九十0-9]{1,3}[）)])`)
	paraEndRe  = regexp.MustCompile(`[。！？；：:）)」』】]$`)
	cellEndRe  = regexp.MustCompile(`[。；;：:]$`)
	pageNumRe  = regexp.MustCompile(`^\d+$`)
	pageOfRe   = regexp.MustCompile(`^\d{1,4}\s*/\s*\d{1,4}$`)
	tokenRe    = regexp.MustCompile(`\S+`)
	softOKRe   = regexp.MustCompile(`^[A-Za-z0-9_./-]+$`)
)

// Reflow converts raw section text into blocks using the default config.
func Reflow(raw string) []Block {
	return ReflowWith(raw, DefaultConfig())
}

// ReflowWith runs the full pipeline: header/footer filtering, soft-wrapping
// of oversized ASCII tokens, short-line aggregation, then paragraph
// reassembly.
func ReflowWith(raw string, cfg Config) []Block {
	var lines []string
	for _, raw := range strings.Split(raw, "\n") {
		s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
		if isHeaderFooter(s, cfg) {
			continue
		}
		lines = append(lines, softenLongTokens(s, cfg))
	}

	lines = mergeShortLines(lines, cfg)

	var blocks []Block
	var buf strings.Builder

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			blocks = append(blocks, Block{Kind: Paragraph, Text: s})
		}
		buf.Reset()
	}

	for _, s := range lines {
		if s == "" {
			flush()
			continue
		}
		if headingRe.MatchString(s) {
			flush()
			// A blank block above each heading reads as paragraph spacing,
			// but never as the very first block.
			if len(blocks) > 0 && blocks[len(blocks)-1].Kind != Blank {
				blocks = append(blocks, Block{Kind: Blank})
			}
			blocks = append(blocks, Block{Kind: Heading, Text: s})
			continue
		}
		if buf.Len() == 0 {
			buf.WriteString(s)
			continue
		}
		// A buffer already ending in terminal punctuation is a finished
		// paragraph; otherwise the break was the extractor's, not the
		// author's, and the line continues the paragraph. CJK text needs
		// no separator.
		if paraEndRe.MatchString(buf.String()) {
			flush()
		}
		buf.WriteString(s)
	}
	flush()

	for len(blocks) > 0 && blocks[len(blocks)-1].Kind == Blank {
		blocks = blocks[:len(blocks)-1]
	}
	if len(blocks) == 0 {
		return []Block{{Kind: Paragraph, Text: Placeholder}}
	}
	return blocks
}

// isHeaderFooter applies the line-drop rules with reflow-context thresholds.
func isHeaderFooter(s string, cfg Config) bool {
	if s == "" {
		return true
	}
	if pageNumRe.MatchString(s) {
		return true
	}
	if pageOfRe.MatchString(s) && utf8.RuneCountInString(s) <= 15 {
		return true
	}
	if strings.Contains(s, "年度报告") && strings.Contains(s, "股份有限公司") {
		return true
	}
	if strings.HasPrefix(s, "公司代码：") || strings.HasPrefix(s, "公司简称：") ||
		strings.Contains(s, "公司代码：") {
		return true
	}
	if (strings.HasSuffix(s, "股份有限公司") || strings.HasSuffix(s, "有限公司")) &&
		utf8.RuneCountInString(s) <= 30 {
		return true
	}
	if strings.Contains(s, "年度报告") && utf8.RuneCountInString(s) <= cfg.HeaderMaxRunes {
		return true
	}
	return false
}

// softenLongTokens inserts zero-width spaces into long URL- or
// identifier-like tokens so fixed-width layout can wrap them. Tokens with
// any non-ASCII content are left alone; renderers wrap CJK per character.
func softenLongTokens(line string, cfg Config) string {
	return tokenRe.ReplaceAllStringFunc(line, func(tok string) string {
		if len(tok) < cfg.SoftWrapRunes || !softOKRe.MatchString(tok) {
			return tok
		}
		var sb strings.Builder
		for i := 0; i < len(tok); i += cfg.SoftWrapStep {
			if i > 0 {
				sb.WriteString("\u200b")
			}
			sb.WriteString(tok[i:min(i+cfg.SoftWrapStep, len(tok))])
		}
		return sb.String()
	})
}

// mergeShortLines reassembles runs of very short lines, the signature of a
// table extracted one cell per line, into single lines joined by double
// spaces. The buffer flushes at ShortLineBatch lines so a mis-detected table
// cannot produce one unbounded run-on cell.
func mergeShortLines(lines []string, cfg Config) []string {
	var merged []string
	var buf []string

	flush := func() {
		if len(buf) > 0 {
			merged = append(merged, strings.TrimSpace(strings.Join(buf, "  ")))
			buf = buf[:0]
		}
	}

	for _, s := range lines {
		short := utf8.RuneCountInString(s) <= cfg.ShortLineRunes &&
			!cellEndRe.MatchString(s) && s != ""
		if short {
			buf = append(buf, s)
			if len(buf) >= cfg.ShortLineBatch {
				flush()
			}
			continue
		}
		flush()
		merged = append(merged, s)
	}
	flush()
	return merged
}
