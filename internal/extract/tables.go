package extract

// The keyword tables below are configuration data, not logic: they describe
// the heading vocabulary of A-share annual reports and are passed into the
// matching strategies so new document layouts can be supported without
// touching the matchers. Values mirror the section titles mandated by the
// CSRC annual report template plus the common variants seen in the wild.

// DefaultMajorHeadings lists titles that mark a true first-level section
// break inside 第三节. Used by the boundary resolver so that nested
// same-style numbering (e.g. a list of branch offices formatted "三、深圳…")
// does not end a section early.
var DefaultMajorHeadings = []string{
	"核心竞争力", "核心竞争力分析",
	"主营业务分析", "主营业务",
	"非主营业务分析", "非主营业务",
	"资产及负债状况分析", "资产及负债", "资产负债",
	"投资状况分析", "投资状况",
	"公司治理", "重要事项",
	"公司未来发展的展望", "未来发展的展望",
	"行业情况", "行业状况", "所属行业", "所处行业", "行业概况",
	"从事的主要业务", "主要业务",
}

// DefaultStopTitles lists the headings that end the management overview at
// the front of 第三节.
var DefaultStopTitles = []string{
	"报告期内核心竞争力分析",
	"核心竞争力分析",
	"主营业务分析",
	"公司治理",
	"重要事项",
	"公司未来发展的展望",
	"未来发展的展望",
	"风险因素",
	"风险提示",
	"经营情况讨论与分析",
}

// DefaultOutlookKeywords lists the known title spellings of the
// future-outlook subsection, most specific first.
var DefaultOutlookKeywords = []string{
	"公司未来发展的展望",
	"未来发展的展望",
	"未来发展展望",
	"发展规划",
	"未来规划",
}

// chineseOrdinals tabulates the first twenty first-level ordinals in
// document order. Headings beyond 二十 do not occur in practice.
var chineseOrdinals = []string{
	"一", "二", "三", "四", "五", "六", "七", "八", "九", "十",
	"十一", "十二", "十三", "十四", "十五", "十六", "十七", "十八", "十九", "二十",
}

var ordinalToArabic = map[string]string{
	"一": "1", "二": "2", "三": "3", "四": "4", "五": "5",
	"六": "6", "七": "7", "八": "8", "九": "9", "十": "10",
	"十一": "11", "十二": "12", "十三": "13", "十四": "14", "十五": "15",
	"十六": "16", "十七": "17", "十八": "18", "十九": "19", "二十": "20",
}

var arabicToOrdinal = func() map[string]string {
	m := make(map[string]string, len(ordinalToArabic))
	for cn, ar := range ordinalToArabic {
		m[ar] = cn
	}
	return m
}()
