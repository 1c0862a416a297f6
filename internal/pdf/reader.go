// Package pdf extracts per-page text from PDF documents.
package pdf

import (
	"log/slog"
	"os"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	derrors "github.com/nextgenai/docindex/internal/errors"
)

// progressEvery controls how often page extraction reports progress.
const progressEvery = 20

// Page is one page of extracted document text. Pages are ordered by Number
// ascending and immutable once produced; a page with no extractable text
// yields no Page at all.
type Page struct {
	Number int
	Text   string
}

// Progress receives page-extraction progress callbacks. Nil is allowed.
type Progress func(done, total int)

// Reader reads PDF files into ordered Page slices.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a PDF reader. A nil logger falls back to slog.Default.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger}
}

// ReadPages extracts text from every page of the document at path.
//
// Open and parse failures are fatal. A single page that fails text
// extraction is skipped with a warning, matching the tolerance of the rest
// of the pipeline toward sparse pages: scanned-image pages routinely carry
// no text layer and must not abort a whole ingest.
func (r *Reader) ReadPages(path string, progress Progress) ([]Page, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeDocumentNotFound, err).
			WithDetail("path", path).
			WithSuggestion("check the document path passed to ingest")
	}

	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeDocumentUnreadable, err).
			WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()

	total := reader.NumPage()
	r.logger.Info("pdf_opened", slog.String("path", path), slog.Int("pages", total))

	pages := make([]Page, 0, total)
	for num := 1; num <= total; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			r.logger.Warn("pdf_page_extract_failed",
				slog.Int("page", num), slog.String("error", err.Error()))
			continue
		}

		if p, ok := BuildPage(num, text); ok {
			pages = append(pages, p)
		}

		if progress != nil && num%progressEvery == 0 {
			progress(num, total)
		}
	}

	r.logger.Info("pdf_extracted",
		slog.Int("pages_total", total), slog.Int("pages_with_text", len(pages)))
	return pages, nil
}

// BuildPage constructs a Page from raw extracted text, reporting false when
// the page carries no usable text. The raw text is kept untrimmed so the
// chunker sees the page exactly as extracted.
func BuildPage(number int, text string) (Page, bool) {
	if strings.TrimSpace(text) == "" {
		return Page{}, false
	}
	return Page{Number: number, Text: text}, true
}
