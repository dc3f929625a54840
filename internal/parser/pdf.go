// Package parser wraps PDF text extraction behind the page-oriented view the
// extraction heuristics need. Annual reports are large; callers pull text per
// page instead of materializing whole documents.
package parser

import (
	"fmt"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Document is an open PDF. It is not safe for concurrent use; the pipeline
// opens one Document per job.
type Document struct {
	f      *os.File
	reader *pdflib.Reader
}

// Open opens the PDF at path. The caller must Close the Document.
func Open(path string) (*Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &Document{f: f, reader: reader}, nil
}

func (d *Document) Close() error {
	return d.f.Close()
}

// PageCount reports the number of pages.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// PageText returns the concatenated plain text of the given 0-indexed pages.
// Pages that are out of range, null, or fail text extraction contribute
// nothing; a scanned-image report reads as empty.
func (d *Document) PageText(pages []int) string {
	var buf strings.Builder
	n := d.reader.NumPage()
	for _, p := range pages {
		if p < 0 || p >= n {
			continue
		}
		page := d.reader.Page(p + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
	}
	return buf.String()
}
