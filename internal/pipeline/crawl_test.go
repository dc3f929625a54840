package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/reportclaw/reportclaw/internal/cninfo"
)

func TestIsAnnualReportTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"平安银行股份有限公司2023年年度报告", true},
		{"2023年度报告（更新后）", true},
		{"2023年年度报告摘要", false},
		{"关于披露2023年年度报告的公告", false},
		{"2023年年度报告关于会计政策的说明", true},
		{"第三季度报告", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAnnualReportTitle(tt.title); got != tt.want {
			t.Errorf("IsAnnualReportTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestParseReportYear(t *testing.T) {
	tests := []struct {
		title string
		want  int
		ok    bool
	}{
		{"平安银行2023年年度报告", 2023, true},
		{"2023年度报告全文", 2023, true},
		{"2023 年度报告", 2023, true},
		{"2024年第一季度经营数据", 2024, true},
		{"年度报告相关事项", 0, false},
		{"1999年年度报告", 1999, false},
	}
	for _, tt := range tests {
		got, ok := ParseReportYear(tt.title)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseReportYear(%q) = (%d, %v), want (%d, %v)", tt.title, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPageTimeRange(t *testing.T) {
	anns := []cninfo.Announcement{
		{Time: json.RawMessage(`"2024-03-20"`)},
		{Time: json.RawMessage(`"2024-03-10"`)},
		{Time: json.RawMessage(`"soon"`)},
		{Time: json.RawMessage(`"2024-03-15"`)},
	}
	oldest, newest, ok := pageTimeRange(anns)
	if !ok {
		t.Fatal("expected decodable times")
	}
	if oldest.Format("2006-01-02") != "2024-03-10" {
		t.Errorf("oldest = %v", oldest)
	}
	if newest.Format("2006-01-02") != "2024-03-20" {
		t.Errorf("newest = %v", newest)
	}

	if _, _, ok := pageTimeRange([]cninfo.Announcement{{Time: json.RawMessage(`"soon"`)}}); ok {
		t.Error("undecodable page should report no time range")
	}
}
