// Package digest renders newly ingested report excerpts into a Markdown
// summary, converts it to HTML and mails it out.
package digest

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reportclaw/reportclaw/internal/reflow"
	"github.com/reportclaw/reportclaw/internal/store"
)

const fullWidthIndent = "　　"

// maxFileNameRunes keeps the per-company header on one line.
const maxFileNameRunes = 42

// BuildMarkdown renders the digest document for rows. rangeLabel describes
// the covered window and lands in the title.
func BuildMarkdown(rows []store.DigestRow, rangeLabel string, cfg reflow.Config) string {
	var b strings.Builder
	b.WriteString("# 年报摘录汇总（" + rangeLabel + "）\n\n")
	if len(rows) == 0 {
		b.WriteString(reflow.Placeholder + "\n")
		return b.String()
	}

	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		b.WriteString("## " + rowHeader(row) + "\n\n")

		b.WriteString("### 管理层综述（摘录）\n\n")
		writeBlocks(&b, row.MainBusiness, cfg)

		b.WriteString("\n### 未来展望（摘录）\n\n")
		writeBlocks(&b, row.Future, cfg)
	}
	return b.String()
}

func rowHeader(row store.DigestRow) string {
	var parts []string
	parts = append(parts,
		row.StockCode+" "+row.StockName,
		strconv.Itoa(row.ReportYear)+"年年报",
		"公告 "+row.PublishDate)
	if name := truncateName(filepath.Base(row.FilePath)); name != "" && name != "." {
		parts = append(parts, "文件 "+name)
	}
	return strings.Join(parts, " | ")
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxFileNameRunes {
		return name
	}
	return string(runes[:maxFileNameRunes-3]) + "..."
}

func writeBlocks(b *strings.Builder, text string, cfg reflow.Config) {
	for _, blk := range reflow.ReflowWith(text, cfg) {
		switch blk.Kind {
		case reflow.Heading:
			b.WriteString("**" + blk.Text + "**\n\n")
		case reflow.Paragraph:
			b.WriteString(fullWidthIndent + blk.Text + "\n\n")
		case reflow.Blank:
			// Markdown paragraph breaks already separate blocks.
		}
	}
}
