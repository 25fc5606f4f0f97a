package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/futig/mini-rag/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ledongthuc/pdf"
	"github.com/unidoc/unioffice/document"
	"go.uber.org/zap"
)

// Extract returns the plain text of the file at path. PDF and DOCX are parsed,
// anything else is read as text with invalid UTF-8 dropped.
// Unreadable PDF pages contribute an empty string. A document that cannot be
// parsed at all returns an error wrapping entity.ErrExtraction
func Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".pdf":
		return extractPDF(ctx, path)
	case ".docx":
		return extractDOCX(path)
	default:
		return extractPlain(path)
	}
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	return strings.ToValidUTF8(string(data), ""), nil
}

func extractPDF(ctx context.Context, path string) (string, error) {
	f, reader, err := openPDF(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", entity.ErrExtraction, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		text, err := pageText(reader, i)
		if err != nil {
			ctxzap.Warn(ctx, "failed to extract pdf page",
				zap.String("path", path),
				zap.Int("page", i),
				zap.Error(err),
			)
			text = ""
		}
		pages = append(pages, text)
	}

	ctxzap.Debug(ctx, "pdf extracted", zap.String("path", path), zap.Int("pages", total))

	return strings.Join(pages, "\n"), nil
}

// openPDF guards against the parser panicking on malformed cross-reference tables
func openPDF(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	return pdf.Open(path)
}

func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed page: %v", rec)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}

	return page.GetPlainText(nil)
}

func extractDOCX(path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", entity.ErrExtraction, err)
	}
	defer doc.Close()

	paragraphs := doc.Paragraphs()
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		var sb strings.Builder
		for _, run := range p.Runs() {
			sb.WriteString(run.Text())
		}
		lines = append(lines, sb.String())
	}

	return strings.Join(lines, "\n"), nil
}
