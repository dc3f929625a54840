package extract

import (
	"regexp"
)

// OrdinalForm identifies which heading grammar matched.
type OrdinalForm int

const (
	// FormSequential is a first-level heading: 二、xxx or 2、xxx, with
	// 、 . ． : ： accepted as the delimiter.
	FormSequential OrdinalForm = iota
	// FormBracketed is a bracketed heading: （三）xxx or (3)xxx.
	FormBracketed
)

// HeadingMatch is one recognized heading line inside a text buffer.
type HeadingMatch struct {
	Form    OrdinalForm
	Ordinal string
	Title   string
	Offset  int
}

var (
	// 二、标题 / 2、标题 / 2.标题 / 二：标题
	sequentialHeadingRe = regexp.MustCompile(`(?:^|\n)\s*([一二三四五六七八九十]{1,3}|\d{1,2})[、.．:：]\s*([^\n]{1,80})`)

	// （三）标题 / (3)标题
	bracketHeadingRe = regexp.MustCompile(`(?:^|\n)\s*[（(]([一二三四五六七八九十0-9]{1,3})[）)]\s*([^\n]{1,80})`)

	// Major first-level heading, 顿号 delimiter only. Stricter than
	// sequentialHeadingRe on purpose: a bare "2." inside body text is never
	// a section break, "二、" almost always is.
	majorHeadingRe = regexp.MustCompile(`\n\s*([一二三四五六七八九十]{1,3}|\d{1,2})、([^\n]{1,60})`)

	// Top-level section markers of the document itself.
	sectionThreeRe = regexp.MustCompile(`第三节\s*管理层讨论与分析`)
	sectionFourRe  = regexp.MustCompile(`第\s*四\s*节`)

	// TOC entry: 第三节 管理层讨论与分析……14
	tocEntryRe = regexp.MustCompile(`第三节\s*管理层讨论与分析[.·…\s]{2,200}(\d{1,4})`)

	arabicOrdinalRe = regexp.MustCompile(`^\d{1,2}$`)
)

// NextOrdinal returns the candidate spellings of the ordinal following cur,
// in both numeral systems: "二" (or "2") yields {"三", "3"}. The result is
// empty when cur is the last tabulated ordinal or not an ordinal at all,
// which tells the boundary resolver it cannot use ordinal sequencing.
func NextOrdinal(cur string) []string {
	cn := cur
	if arabicOrdinalRe.MatchString(cur) {
		cn = arabicToOrdinal[cur]
	}
	for i, o := range chineseOrdinals {
		if o != cn {
			continue
		}
		if i+1 >= len(chineseOrdinals) {
			return nil
		}
		next := chineseOrdinals[i+1]
		return []string{next, ordinalToArabic[next]}
	}
	return nil
}

// findSequentialHeadings returns all sequential-ordinal headings in text,
// offsets relative to text.
func findSequentialHeadings(text string) []HeadingMatch {
	var out []HeadingMatch
	for _, m := range sequentialHeadingRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, HeadingMatch{
			Form:    FormSequential,
			Ordinal: text[m[2]:m[3]],
			Title:   text[m[4]:m[5]],
			Offset:  m[0],
		})
	}
	return out
}

// nextKeywordHeading finds the start offset of the first heading after `from`
// whose title contains one of the supplied keywords. Both the sequential and
// bracketed grammars are consulted; their first hits compete and the nearer
// one wins. Searching begins one byte past `from` so a heading at the anchor
// itself never ends its own section.
func nextKeywordHeading(text string, from int, keywords []string) (int, bool) {
	if from < 0 || from >= len(text) {
		return 0, false
	}
	region := text[from+1:]
	best := -1

	for _, m := range sequentialHeadingRe.FindAllStringSubmatchIndex(region, -1) {
		if containsAny(region[m[4]:m[5]], keywords) {
			best = from + 1 + m[0]
			break
		}
	}
	for _, m := range bracketHeadingRe.FindAllStringSubmatchIndex(region, -1) {
		if containsAny(region[m[4]:m[5]], keywords) {
			pos := from + 1 + m[0]
			if best < 0 || pos < best {
				best = pos
			}
			break
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
