package extract

import (
	"regexp"
	"strings"
)

// Window is a half-open byte range into a text buffer.
type Window struct {
	Start int
	End   int
}

// sliceWindow cuts w out of text. A window that violates
// 0 <= Start <= End <= len(text) is a programming error in the boundary
// logic, not a document problem, so it fails loudly instead of degrading.
func sliceWindow(text string, w Window) string {
	if w.Start < 0 || w.End < w.Start || w.End > len(text) {
		panic("extract: invalid section window")
	}
	return strings.TrimSpace(text[w.Start:w.End])
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// nextMajorHeading finds the first heading after `from` whose title contains
// one of the major-heading keywords. Only the strict "X、" grammar counts.
func nextMajorHeading(text string, from int, keywords []string) (int, bool) {
	if from < 0 || from >= len(text) {
		return 0, false
	}
	region := text[from+1:]
	for _, m := range majorHeadingRe.FindAllStringSubmatchIndex(region, -1) {
		if containsAny(region[m[4]:m[5]], keywords) {
			return from + 1 + m[0], true
		}
	}
	return 0, false
}

// resolveOrdinalEnd computes where the section opened by `ordinal` at `from`
// ends: the next major heading if one exists, otherwise the next ordinal in
// sequence (either numeral system), otherwise the end of the buffer. The
// major-heading rule is consulted first and, when it hits, wins outright:
// a nearer same-level list item (city lists, branch offices) must not
// truncate a still-open section.
func resolveOrdinalEnd(text string, from int, ordinal string, majorKeywords []string) int {
	if end, ok := nextMajorHeading(text, from, majorKeywords); ok {
		return end
	}

	end := len(text)
	if from+1 >= len(text) {
		return end
	}
	region := text[from+1:]
	for _, cand := range NextOrdinal(ordinal) {
		re := regexp.MustCompile(`\n\s*` + regexp.QuoteMeta(cand) + `、`)
		if loc := re.FindStringIndex(region); loc != nil {
			if pos := from + 1 + loc[0]; pos < end {
				end = pos
			}
		}
	}
	return end
}

// nextBracketEnd ends a bracket-headed subsection at the next bracketed
// heading of the same family or the next first-level "X、" heading,
// whichever comes first.
func nextBracketEnd(text string, from int) int {
	end := len(text)
	if from+1 >= len(text) {
		return end
	}
	region := text[from+1:]
	if loc := bracketStartRe.FindStringIndex(region); loc != nil {
		end = from + 1 + loc[0]
	}
	if loc := ordinalStartRe.FindStringIndex(region); loc != nil {
		if pos := from + 1 + loc[0]; pos < end {
			end = pos
		}
	}
	return end
}

var (
	bracketStartRe = regexp.MustCompile(`\n\s*[（(][一二三四五六七八九十0-9]{1,3}[）)]`)
	ordinalStartRe = regexp.MustCompile(`\n\s*(?:[一二三四五六七八九十]{1,3}|\d{1,2})、`)
)
