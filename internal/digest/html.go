package digest

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
)

// RenderHTML converts the digest Markdown into a standalone HTML page.
func RenderHTML(markdown, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { max-width: 52em; margin: 2em auto; padding: 0 1em; line-height: 1.7; }
h2 { border-bottom: 1px solid #ccc; padding-bottom: .3em; }
hr { margin: 2.5em 0; }
</style>
</head>
<body>
`, html.EscapeString(title))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
