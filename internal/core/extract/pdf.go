package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"deepread/internal/core"
	"deepread/internal/models"
)

// PDFExtractor reads a PDF page by page so passages keep their page numbers.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

var _ core.DocumentExtractor = (*PDFExtractor)(nil)

// ExtractPages returns the plain text of every page in source order.
// Pages that yield no text are still returned (empty) so numbering stays
// aligned with the source document.
func (e *PDFExtractor) ExtractPages(ctx context.Context, path string) ([]models.PageText, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf %s: %v", core.ErrExtraction, path, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages: %s", core.ErrExtraction, path)
	}

	pages := make([]models.PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, models.PageText{Number: i})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: extract page %d of %s: %v", core.ErrExtraction, i, path, err)
		}
		pages = append(pages, models.PageText{Number: i, Text: text})
	}
	return pages, nil
}
