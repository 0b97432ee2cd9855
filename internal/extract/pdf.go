// ABOUTME: PDF text extraction using the ledongthuc/pdf reader
// ABOUTME: Pages are marked with [page N] so citation heuristics can recover locations
package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates the plain text of all pages. Each page is
// prefixed with a [page N] marker; the citation builder reads these
// back out of chunks to attribute page numbers.
func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		fmt.Fprintf(&buf, "[page %d]\n%s", i, text)
	}
	return buf.String(), nil
}
