package extract

import (
	"reflect"
	"strings"
	"testing"
)

func TestNextOrdinal(t *testing.T) {
	tests := []struct {
		cur  string
		want []string
	}{
		{"一", []string{"二", "2"}},
		{"二", []string{"三", "3"}},
		{"十", []string{"十一", "11"}},
		{"十一", []string{"十二", "12"}},
		{"十九", []string{"二十", "20"}},
		{"2", []string{"三", "3"}},
		{"11", []string{"十二", "12"}},
		{"二十", nil},
		{"20", nil},
		{"garbage", nil},
		{"", nil},
		{"99", nil},
	}
	for _, tt := range tests {
		if got := NextOrdinal(tt.cur); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NextOrdinal(%q) = %v, want %v", tt.cur, got, tt.want)
		}
	}
}

func TestFindSequentialHeadings(t *testing.T) {
	text := "一、经营情况讨论与分析\n正文内容。\n2、主营业务分析\n更多正文。"
	got := findSequentialHeadings(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 headings, got %d: %+v", len(got), got)
	}
	if got[0].Ordinal != "一" || got[0].Title != "经营情况讨论与分析" {
		t.Errorf("first heading = %+v", got[0])
	}
	if got[1].Ordinal != "2" || got[1].Title != "主营业务分析" {
		t.Errorf("second heading = %+v", got[1])
	}
	if got[0].Offset != 0 {
		t.Errorf("first heading offset = %d", got[0].Offset)
	}
}

func TestNextKeywordHeadingSequential(t *testing.T) {
	text := "开头段落。\n一、行业情况说明\n行业正文。\n二、公司治理结构\n治理正文。"
	off, ok := nextKeywordHeading(text, 0, []string{"公司治理"})
	if !ok {
		t.Fatal("expected a hit")
	}
	if text[off] != '\n' {
		t.Errorf("offset %d does not sit on a line boundary", off)
	}
	if got := text[:off]; !strings.Contains(got, "行业正文。") || strings.Contains(got, "公司治理") {
		t.Errorf("prefix up to hit = %q", got)
	}
}

func TestNextKeywordHeadingBracketBeatsLaterSequential(t *testing.T) {
	text := "开头。\n（二）未来发展展望\n展望正文。\n三、未来发展展望详述\n更多。"
	off, ok := nextKeywordHeading(text, 0, []string{"未来发展展望"})
	if !ok {
		t.Fatal("expected a hit")
	}
	if got := text[:off]; strings.Contains(got, "未来发展展望") {
		t.Errorf("should stop at the bracket heading, prefix = %q", got)
	}
}

func TestNextKeywordHeadingMiss(t *testing.T) {
	if _, ok := nextKeywordHeading("一、主营业务分析\n正文。", 0, []string{"不存在的标题"}); ok {
		t.Error("expected no hit")
	}
}

func TestNextKeywordHeadingOutOfRange(t *testing.T) {
	if _, ok := nextKeywordHeading("短", 5, []string{"x"}); ok {
		t.Error("expected no hit for out-of-range anchor")
	}
}
