package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Line-level noise patterns dropped by Normalize. Annual report pages carry
// running headers (company name + 年度报告), bare page numbers, "14/248"
// style markers and ASCII table borders that would otherwise defeat the
// heading matchers.
var (
	pageNumberRe = regexp.MustCompile(`^\d{1,4}$`)
	pageOfPageRe = regexp.MustCompile(`^\d{1,4}\s*/\s*\d{1,4}$`)
	tableEdgeRe  = regexp.MustCompile(`^[-+|]{3,}$`)
	newlineRunRe = regexp.MustCompile(`\n+`)
)

// Normalize collapses one or more raw page texts into a clean buffer: page
// breaks become newlines, noise lines are dropped, and all remaining spaces
// are removed. Removing spaces is safe for CJK-dominant text since word
// boundaries do not depend on spacing, and it makes the TOC and heading
// patterns immune to the erratic spacing PDF extraction produces.
// Normalize is idempotent.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	text = newlineRunRe.ReplaceAllString(text, "\n")

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if dropLine(line) {
			continue
		}
		lines = append(lines, line)
	}

	out := strings.Join(lines, "\n")
	out = strings.ReplaceAll(out, " ", "")
	return newlineRunRe.ReplaceAllString(out, "\n")
}

func dropLine(line string) bool {
	if pageNumberRe.MatchString(line) {
		return true
	}
	if pageOfPageRe.MatchString(line) {
		return true
	}
	if strings.Contains(line, "年度报告") && strings.Contains(line, "股份有限公司") {
		return true
	}
	if strings.HasPrefix(line, "公司代码：") || strings.HasPrefix(line, "公司简称：") ||
		strings.Contains(line, "公司代码：") {
		return true
	}
	if (strings.HasSuffix(line, "股份有限公司") || strings.HasSuffix(line, "有限公司")) &&
		utf8.RuneCountInString(line) <= 30 {
		return true
	}
	if strings.Contains(line, "年度报告") && utf8.RuneCountInString(line) <= 20 {
		return true
	}
	if tableEdgeRe.MatchString(line) {
		return true
	}
	if strings.Contains(line, "年度报告全文") {
		return true
	}
	return false
}
