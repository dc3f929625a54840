package reflow

import (
	"fmt"
	"strings"
	"testing"
)

func TestMergeShortLinesBatching(t *testing.T) {
	// 15 cell-like lines: the buffer flushes at 12 and the remaining 3 form
	// a second merged line.
	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, fmt.Sprintf("项目%c", 'A'+i))
	}

	merged := mergeShortLines(lines, DefaultConfig())
	if len(merged) != 2 {
		t.Fatalf("got %d merged lines, want 2: %q", len(merged), merged)
	}
	if n := strings.Count(merged[0], "  "); n != 11 {
		t.Errorf("first group should join 12 cells, got %d separators", n)
	}
	if n := strings.Count(merged[1], "  "); n != 2 {
		t.Errorf("second group should join 3 cells, got %d separators", n)
	}
}

func TestMergeShortLinesStopsAtPunctuation(t *testing.T) {
	lines := []string{"营收", "利润", "以上为主要指标。", "现金流"}

	merged := mergeShortLines(lines, DefaultConfig())
	want := []string{"营收  利润", "以上为主要指标。", "现金流"}
	if len(merged) != len(want) {
		t.Fatalf("got %q, want %q", merged, want)
	}
	for i := range want {
		if merged[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, merged[i], want[i])
		}
	}
}

func TestMergeShortLinesLeavesProseAlone(t *testing.T) {
	lines := []string{"公司在报告期内实现了收入的稳定增长。"}
	merged := mergeShortLines(lines, DefaultConfig())
	if len(merged) != 1 || merged[0] != lines[0] {
		t.Errorf("prose line altered: %q", merged)
	}
}

func TestSoftenLongTokens(t *testing.T) {
	cfg := DefaultConfig()
	long := "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	got := softenLongTokens(long, cfg)
	want := "ABCDEFGHIJKLMNOPQRST​UVWXYZ0123456789"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := softenLongTokens("abc def", cfg); got != "abc def" {
		t.Errorf("short tokens altered: %q", got)
	}
	cjk := strings.Repeat("长", 30)
	if got := softenLongTokens(cjk, cfg); got != cjk {
		t.Errorf("CJK token altered: %q", got)
	}
}

func TestReflowHeadingsAndParagraphs(t *testing.T) {
	raw := "一、经营情况讨论与分析\n公司业绩良好。\n二、核心竞争力分析\n技术领先同行。"

	blocks := Reflow(raw)
	kinds := []Kind{Heading, Paragraph, Blank, Heading, Paragraph}
	if len(blocks) != len(kinds) {
		t.Fatalf("got %d blocks, want %d: %+v", len(blocks), len(kinds), blocks)
	}
	for i, k := range kinds {
		if blocks[i].Kind != k {
			t.Errorf("block %d: got kind %v, want %v (%q)", i, blocks[i].Kind, k, blocks[i].Text)
		}
	}
	if blocks[0].Kind == Blank {
		t.Error("no blank spacer before the first block")
	}
}

func TestReflowMergesContinuationLines(t *testing.T) {
	raw := "公司在报告期内实现了营业收入\n的稳定增长，利润率有所提升。"

	blocks := Reflow(raw)
	if len(blocks) != 1 || blocks[0].Kind != Paragraph {
		t.Fatalf("got %+v, want one paragraph", blocks)
	}
	if blocks[0].Text != "公司在报告期内实现了营业收入的稳定增长，利润率有所提升。" {
		t.Errorf("continuation merged wrong: %q", blocks[0].Text)
	}
}

func TestReflowSplitsAtTerminalPunctuation(t *testing.T) {
	raw := "第一段内容到此结束。\n第二段从这里另起。"

	blocks := Reflow(raw)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(blocks), blocks)
	}
	for i, b := range blocks {
		if b.Kind != Paragraph {
			t.Errorf("block %d: got kind %v, want Paragraph", i, b.Kind)
		}
	}
}

func TestReflowDropsHeadersAndFooters(t *testing.T) {
	raw := "深圳示例科技股份有限公司 2023年年度报告\n" +
		"公司经营保持稳健。\n" +
		"12 / 248\n" +
		"37"

	blocks := Reflow(raw)
	if len(blocks) != 1 {
		t.Fatalf("got %+v, want one paragraph", blocks)
	}
	if blocks[0].Text != "公司经营保持稳健。" {
		t.Errorf("got %q", blocks[0].Text)
	}
}

func TestReflowPlaceholderOnEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "  \n\n", "12\n2023年年度报告"} {
		blocks := Reflow(raw)
		if len(blocks) != 1 || blocks[0].Text != Placeholder {
			t.Errorf("Reflow(%q) = %+v, want the placeholder paragraph", raw, blocks)
		}
	}
}

func TestReflowNormalizesNonBreakingSpaces(t *testing.T) {
	raw := "公司 经营 稳健，业绩持续向好。"
	blocks := Reflow(raw)
	if len(blocks) != 1 {
		t.Fatalf("got %+v", blocks)
	}
	if strings.Contains(blocks[0].Text, " ") {
		t.Errorf("non-breaking space survived: %q", blocks[0].Text)
	}
}
