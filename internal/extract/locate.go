package extract

import (
	"slices"
	"strconv"
	"strings"
)

// PageSource supplies already-extracted plain text for 0-indexed pages of one
// document. Implementations must return an empty string (not an error) for
// out-of-range or blank pages. internal/parser.Document satisfies this.
type PageSource interface {
	PageText(pages []int) string
}

// pageReader memoizes normalized page text for the duration of one
// extraction; the locator revisits pages freely without re-normalizing.
type pageReader struct {
	src   PageSource
	cache map[int]string
}

func newPageReader(src PageSource) *pageReader {
	return &pageReader{src: src, cache: make(map[int]string)}
}

func (r *pageReader) page(p int) string {
	if t, ok := r.cache[p]; ok {
		return t
	}
	t := Normalize(r.src.PageText([]int{p}))
	r.cache[p] = t
	return t
}

func (r *pageReader) pages(ps []int) string {
	return Normalize(r.src.PageText(ps))
}

func containsTOCMarker(t string) bool {
	return strings.Contains(t, "目录") || strings.Contains(t, "目 录")
}

// locate finds the full text of 第三节 管理层讨论与分析, or reports absence.
//
// Fast path: find the 目录 page within the first TOCScanPages pages, read the
// TOC entry "第三节 管理层讨论与分析……N" from the pages right after it and
// start at page N-1. A TOC hit is rejected when the candidate start page is
// implausibly low (under MinTOCPage; small numbers are usually a misparse of a
// parenthetical ordinal), when the candidate page still looks like the TOC,
// or when it falls inside the scanned TOC window. Rejection falls through to
// a bounded linear scan of the body.
//
// The end is the first page matching the 第四节 marker (excluded).
func (e *Extractor) locate(src PageSource) (string, bool) {
	r := newPageReader(src)
	cfg := e.cfg

	tocPage := -1
	for p := 0; p < cfg.TOCScanPages; p++ {
		if t := r.page(p); t != "" && containsTOCMarker(t) {
			tocPage = p
			break
		}
	}

	var tocPages []int
	if tocPage >= 0 {
		for p := tocPage; p < min(tocPage+cfg.TOCWindowPages, cfg.TOCScanPages); p++ {
			tocPages = append(tocPages, p)
		}
	} else {
		for p := 0; p < cfg.NoTOCScanPages; p++ {
			tocPages = append(tocPages, p)
		}
	}

	startPage := -1
	if m := tocEntryRe.FindStringSubmatch(r.pages(tocPages)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n-1 >= cfg.MinTOCPage {
			startPage = n - 1
		}
	}
	if startPage >= 0 {
		if containsTOCMarker(r.page(startPage)) || slices.Contains(tocPages, startPage) {
			startPage = -1
		}
	}

	if startPage < 0 {
		scanStart := 0
		if tocPage >= 0 {
			scanStart = tocPage + 1
		}
		for p := scanStart; p < cfg.BodyScanPages; p++ {
			t := r.page(p)
			if t == "" || containsTOCMarker(t) {
				continue
			}
			if sectionThreeRe.MatchString(t) {
				startPage = p
				break
			}
		}
	}

	if startPage < 0 {
		e.log.Debug("section three not located", "toc_page", tocPage)
		return "", false
	}
	e.log.Debug("section three located", "start_page", startPage, "toc_page", tocPage)

	var buf strings.Builder
	for p := startPage; p < startPage+cfg.CapturePages; p++ {
		t := r.page(p)
		if t == "" {
			continue
		}
		if sectionFourRe.MatchString(t) {
			break
		}
		buf.WriteString(t)
		buf.WriteString("\n")
	}

	section := buf.String()
	if section == "" {
		return "", false
	}
	// Force the buffer to begin exactly at the section marker; leading
	// 重要提示 boilerplate that slipped onto the start page would otherwise
	// satisfy the first heading match.
	if loc := sectionThreeRe.FindStringIndex(section); loc != nil {
		section = strings.TrimSpace(section[loc[0]:])
	}
	return section, true
}
