package extract

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

// fakeSource serves page text from a map; missing pages are blank, matching
// the PageSource contract.
type fakeSource map[int]string

func (f fakeSource) PageText(pages []int) string {
	var sb strings.Builder
	for _, p := range pages {
		if t, ok := f[p]; ok {
			sb.WriteString(t)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func testExtractor() *Extractor {
	return New(DefaultConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLocateViaTOC(t *testing.T) {
	src := fakeSource{
		1:  "目录\n第一节 重要提示……3\n第三节 管理层讨论与分析……41\n第四节 公司治理……60",
		40: "第三节 管理层讨论与分析\n一、经营情况讨论与分析\n报告期内公司经营稳健。",
		41: "二、主营业务分析\n白酒生产与销售收入增长。",
		42: "第四节 公司治理\n治理正文。",
	}
	section, ok := testExtractor().locate(src)
	if !ok {
		t.Fatal("expected section to be located")
	}
	if !strings.HasPrefix(section, "第三节管理层讨论与分析") {
		t.Errorf("section does not start at the marker: %q", section[:min(60, len(section))])
	}
	if !strings.Contains(section, "经营稳健") || !strings.Contains(section, "主营业务分析") {
		t.Errorf("section missing page content: %q", section)
	}
	if strings.Contains(section, "第四节") {
		t.Errorf("section includes the stopping page: %q", section)
	}
}

func TestLocateRejectsLowTOCPageAndScans(t *testing.T) {
	// The TOC reports page 2, a misparse, so the locator must fall back
	// to scanning and find the real start at page 8.
	src := fakeSource{
		1: "目录\n第三节 管理层讨论与分析……2",
		5: "第一节 重要提示\n本报告内容真实准确完整。",
		8: "第三节 管理层讨论与分析\n一、经营情况讨论与分析\n正文内容。",
		9: "第四节 公司治理",
	}
	section, ok := testExtractor().locate(src)
	if !ok {
		t.Fatal("expected fallback scan to succeed")
	}
	if !strings.Contains(section, "正文内容") {
		t.Errorf("wrong section captured: %q", section)
	}
}

func TestLocateRejectsCandidateBelowPageFloor(t *testing.T) {
	// The TOC reports page 5, putting the candidate start at page 4, just
	// under the floor. Accepting it would capture preamble text and stop
	// at the first 第四节 mention; the scan must find the real start.
	src := fakeSource{
		0: "目录\n第三节 管理层讨论与分析……5",
		4: "重要提示\n本报告所载财务数据真实准确。",
		5: "释义\n第四节 公司治理相关定义见后文。",
		8: "第三节 管理层讨论与分析\n一、经营情况讨论与分析\n真正的正文。",
		9: "第四节 公司治理",
	}
	section, ok := testExtractor().locate(src)
	if !ok {
		t.Fatal("expected fallback scan to succeed")
	}
	if !strings.HasPrefix(section, "第三节管理层讨论与分析") {
		t.Errorf("section does not start at the marker: %q", section)
	}
	if !strings.Contains(section, "真正的正文") || strings.Contains(section, "重要提示") {
		t.Errorf("wrong section captured: %q", section)
	}
}

func TestLocateRejectsCandidateInsideTOCWindow(t *testing.T) {
	// A reported page landing inside the scanned TOC window is a misparse
	// even when above the page floor; body scan finds the real start.
	src := fakeSource{
		16: "目录\n第三节 管理层讨论与分析……19",
		18: "第二节 公司简介\n会计数据摘要。",
		30: "第三节 管理层讨论与分析\n一、经营情况讨论与分析\n真正的正文。",
		31: "第四节 公司治理",
	}
	section, ok := testExtractor().locate(src)
	if !ok {
		t.Fatal("expected fallback scan to succeed")
	}
	if !strings.Contains(section, "真正的正文") {
		t.Errorf("wrong section captured: %q", section)
	}
}

func TestLocateRejectsCandidatePageStillShowingTOC(t *testing.T) {
	// The candidate page still contains a 目录 marker, so the TOC hit is
	// the TOC itself spilling over; scan takes over.
	src := fakeSource{
		1:  "目录\n第三节 管理层讨论与分析……9",
		8:  "目录（续）\n第十节 财务报告……180",
		30: "第三节 管理层讨论与分析\n一、经营情况讨论与分析\n真正的正文。",
		31: "第四节 公司治理",
	}
	section, ok := testExtractor().locate(src)
	if !ok {
		t.Fatal("expected fallback scan to succeed")
	}
	if !strings.Contains(section, "真正的正文") {
		t.Errorf("wrong section captured: %q", section)
	}
}

func TestLocateAbsentSection(t *testing.T) {
	src := fakeSource{
		0: "目录\n第一节 重要提示……2",
		1: "第一节 重要提示\n无相关章节。",
	}
	if _, ok := testExtractor().locate(src); ok {
		t.Error("expected absence, not a located section")
	}
}

func TestExtractEndToEnd(t *testing.T) {
	overview := strings.Repeat("公司坚持稳中求进的经营方针，持续优化产品结构。", 25)
	src := fakeSource{
		0:  "目录\n第一节 重要提示……2\n第三节 管理层讨论与分析……14\n第四节 公司治理……16",
		13: "第三节 管理层讨论与分析\n一、经营情况讨论与分析\n" + overview + "坚定实施既定发展战略。",
		14: "持续完善公司治理水平，巩固行业地位。",
		15: "第四节 公司治理",
	}
	res, ok := testExtractor().Extract(src)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if !strings.Contains(res.FullSection, "发展战略。") || !strings.Contains(res.FullSection, "巩固行业地位") {
		t.Errorf("full section does not span pages 13-14: %q", res.FullSection)
	}
	if res.ManagementOverview == "" {
		t.Error("expected a management overview")
	}
}

func TestExtractAbsentDocument(t *testing.T) {
	res, ok := testExtractor().Extract(fakeSource{})
	if ok || res != nil {
		t.Errorf("expected absent result, got %+v", res)
	}
}
