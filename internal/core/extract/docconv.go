package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"

	"deepread/internal/core"
	"deepread/internal/models"
)

// DocconvExtractor handles non-PDF formats (txt, md, docx, html) via docconv.
// These formats carry no page structure, so the whole document becomes a
// single page record.
type DocconvExtractor struct {
	useReadability bool
}

func NewDocconvExtractor(useReadability bool) *DocconvExtractor {
	return &DocconvExtractor{useReadability: useReadability}
}

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

func (e *DocconvExtractor) ExtractPages(ctx context.Context, path string) ([]models.PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", core.ErrExtraction, path, err)
	}
	defer f.Close()

	res, err := docconv.Convert(f, docconv.MimeTypeByExtension(path), e.useReadability)
	if err != nil {
		return nil, fmt.Errorf("%w: docconv %s: %v", core.ErrExtraction, path, err)
	}
	if strings.TrimSpace(res.Body) == "" {
		return nil, fmt.Errorf("%w: docconv extracted no text from %s", core.ErrExtraction, path)
	}
	return []models.PageText{{Number: 1, Text: res.Body}}, nil
}

// Dispatcher routes by file extension: PDFs go through the page-aware
// reader, everything else through docconv.
type Dispatcher struct {
	pdf *PDFExtractor
	doc *DocconvExtractor
}

func NewDispatcher(pdf *PDFExtractor, doc *DocconvExtractor) *Dispatcher {
	return &Dispatcher{pdf: pdf, doc: doc}
}

var _ core.DocumentExtractor = (*Dispatcher)(nil)

func (d *Dispatcher) ExtractPages(ctx context.Context, path string) ([]models.PageText, error) {
	if strings.ToLower(filepath.Ext(path)) == ".pdf" {
		return d.pdf.ExtractPages(ctx, path)
	}
	return d.doc.ExtractPages(ctx, path)
}
