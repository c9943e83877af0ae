package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"

	"github.com/DavidGir/Camelot/internal/core"
)

const mimePDF = "application/pdf"

// DocExtractor extracts raw text from document payloads. PDFs go through a
// pure-Go reader; anything else is handed to docconv.
type DocExtractor struct {
	useReadability bool
}

func NewDocExtractor() *DocExtractor {
	return &DocExtractor{useReadability: false}
}

func (e *DocExtractor) Extract(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty document payload")
	}

	if normalizeContentType(contentType) == mimePDF {
		return extractPDF(data)
	}

	res, err := docconv.Convert(bytes.NewReader(data), contentType, e.useReadability)
	if err != nil {
		return "", fmt.Errorf("docconv %q: %w", contentType, err)
	}
	return res.Body, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func normalizeContentType(ct string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
}

var _ core.TextExtractor = (*DocExtractor)(nil)
