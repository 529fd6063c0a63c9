package docembed

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/kailas-cloud/chatdesk/internal/domain"
)

// PDFExtractor reads page text with ledongthuc/pdf.
type PDFExtractor struct{}

// Pages returns the plain text of each page in order. Pages without content
// yield "".
func (PDFExtractor) Pages(r io.ReaderAt, size int64) ([]string, error) {
	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", domain.ErrInvalidInput, err)
	}

	n := doc.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrInvalidInput, i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
