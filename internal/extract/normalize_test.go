package extract

import (
	"strings"
	"testing"
)

func TestNormalizeDropsNoiseLines(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bare page number", "137"},
		{"page x of y", "14/248"},
		{"page x of y spaced", "14 / 248"},
		{"company header", "贵州茅台酒股份有限公司2024年年度报告"},
		{"company code header", "公司代码：600519"},
		{"company short name header", "公司简称：贵州茅台"},
		{"bare company name", "贵州茅台酒股份有限公司"},
		{"bare report title", "2024年年度报告"},
		{"full text header", "XX公司2024年年度报告全文内容披露"},
		{"table border", "----+----+----"},
		{"pipes", "|||"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := "保留行一。\n" + tt.line + "\n保留行二。"
			got := Normalize(in)
			if got != "保留行一。\n保留行二。" {
				t.Errorf("expected %q dropped, got %q", tt.line, got)
			}
		})
	}
}

func TestNormalizeKeepsBodyText(t *testing.T) {
	in := "一、经营情况讨论与分析\n报告期内，公司实现营业收入 100 亿元。"
	got := Normalize(in)
	want := "一、经营情况讨论与分析\n报告期内，公司实现营业收入100亿元。"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeRemovesSpaces(t *testing.T) {
	got := Normalize("第三节 管理层讨论与分析")
	if got != "第三节管理层讨论与分析" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeCollapsesPageBreaks(t *testing.T) {
	got := Normalize("第一页内容。\f\r\n\n\n第二页内容。")
	if got != "第一页内容。\n第二页内容。" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "公司代码：600000\n一、经营情况 讨论与分析\n报告期内经营稳健。\n25\n二、主营业务分析\n白酒 生产 与 销售。"
	once := Normalize(in)
	twice := Normalize(once)
	if once != twice {
		t.Errorf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestNormalizeLongCompanyLineKept(t *testing.T) {
	// Over 30 runes, so the bare-company-name rule must not fire.
	line := strings.Repeat("很", 28) + "股份有限公司"
	if got := Normalize(line); got != line {
		t.Errorf("long company line dropped: got %q", got)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
