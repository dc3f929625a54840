package extract

import (
	"regexp"
)

// SectionSpec describes one subsection to carve out of a section buffer.
// The keyword lists are data: callers supply the heading vocabulary, the
// strategies supply the mechanics.
type SectionSpec struct {
	// Keywords name the target heading; tried in order, most specific first.
	Keywords []string
	// EndTitleKeywords, when set, end the subsection only at a heading whose
	// title contains one of them; with none found the subsection runs to the
	// end of the buffer. Ordinal sequencing is deliberately not used as a
	// backstop in this mode; it used to truncate sections at nested list
	// items.
	EndTitleKeywords []string
	// FallbackOrdinals are tried positionally when no keyword heading
	// matches anywhere (e.g. "十一" for a section known to usually be the
	// eleventh item).
	FallbackOrdinals []string
	// MajorHeadings feed the boundary resolver.
	MajorHeadings []string
}

// A strategy locates one candidate window for a spec, or reports that its
// grammar does not occur in the buffer. Strategies are pure and evaluated in
// order, first match wins, so each fallback tier stays testable in
// isolation.
type strategy func(text string, spec SectionSpec) (Window, bool)

var sectionStrategies = []strategy{
	sequentialHeadingStrategy,
	bracketHeadingStrategy,
	fallbackOrdinalStrategy,
}

// ExtractSection carves the subsection described by spec out of text.
// found is false when no strategy matched; absence is data, not an error.
func ExtractSection(text string, spec SectionSpec) (string, bool) {
	for _, strat := range sectionStrategies {
		if w, ok := strat(text, spec); ok {
			if s := sliceWindow(text, w); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// sequentialHeadingStrategy matches a first-level heading line (ordinal +
// delimiter) whose text contains a keyword, then resolves the end via the
// end-title list when supplied, or via the boundary resolver otherwise.
func sequentialHeadingStrategy(text string, spec SectionSpec) (Window, bool) {
	for _, kw := range spec.Keywords {
		re := regexp.MustCompile(`(?:^|\n)\s*([一二三四五六七八九十]{1,3}|\d{1,2})[、.．:：]\s*[^\n]*` +
			regexp.QuoteMeta(kw) + `[^\n]*`)
		m := re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		start := m[0]
		if len(spec.EndTitleKeywords) > 0 {
			end, ok := nextKeywordHeading(text, start, spec.EndTitleKeywords)
			if !ok {
				end = len(text)
			}
			return Window{Start: start, End: end}, true
		}
		ordinal := text[m[2]:m[3]]
		return Window{Start: start, End: resolveOrdinalEnd(text, start, ordinal, spec.MajorHeadings)}, true
	}
	return Window{}, false
}

// bracketHeadingStrategy retries with （X）-style headings; some reports
// number first-level sections this way. Ends at the next bracketed heading
// or the next first-level ordinal, whichever is nearer.
func bracketHeadingStrategy(text string, spec SectionSpec) (Window, bool) {
	for _, kw := range spec.Keywords {
		re := regexp.MustCompile(`(?:^|\n)\s*[（(][一二三四五六七八九十0-9]{1,3}[）)]\s*[^\n]*` +
			regexp.QuoteMeta(kw) + `[^\n]*`)
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		return Window{Start: loc[0], End: nextBracketEnd(text, loc[0])}, true
	}
	return Window{}, false
}

// fallbackOrdinalStrategy attempts direct ordinal-positioned extraction for
// each supplied label in order, returning the first hit. Structure-dependent
// and therefore last.
func fallbackOrdinalStrategy(text string, spec SectionSpec) (Window, bool) {
	for _, ordinal := range spec.FallbackOrdinals {
		if w, ok := windowByOrdinal(text, ordinal, spec.MajorHeadings); ok {
			return w, true
		}
	}
	return Window{}, false
}

// windowByOrdinal finds the section opened by a specific first-level
// ordinal. Start matching prefers the unambiguous 顿号 forms (二、 then 2、)
// and only then the bracketed forms, since （二） is usually a nested
// subsection rather than the first level.
func windowByOrdinal(text string, ordinal string, majorKeywords []string) (Window, bool) {
	arabic := ordinalToArabic[ordinal]

	quoted := regexp.QuoteMeta(ordinal)
	patterns := []string{
		`(?:^|\n)\s*` + quoted + `、`,
	}
	if arabic != "" {
		patterns = append(patterns, `(?:^|\n)\s*`+arabic+`、`)
	}
	patterns = append(patterns, `(?:^|\n)\s*(?:（`+quoted+`）|\(`+quoted+`\))`)
	if arabic != "" {
		patterns = append(patterns, `(?:^|\n)\s*(?:（`+arabic+`）|\(`+arabic+`\))`)
	}

	start := -1
	for _, pat := range patterns {
		if loc := regexp.MustCompile(pat).FindStringIndex(text); loc != nil {
			start = loc[0]
			break
		}
	}
	if start < 0 {
		return Window{}, false
	}
	return Window{Start: start, End: resolveOrdinalEnd(text, start, ordinal, majorKeywords)}, true
}
