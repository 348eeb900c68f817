package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

const (
	maxPDFPages  = 100
	maxTextBytes = 1 << 20
)

// extractPDF pulls plain text from a PDF. Pages that fail extraction are
// skipped; the document as a whole fails only when it cannot be opened or
// exceeds the page cap.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := reader.NumPage()
	if pages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}
	if pages > maxPDFPages {
		return "", fmt.Errorf("pdf has %d pages, limit is %d", pages, maxPDFPages)
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if cleaned := normalizeWhitespace(text); cleaned != "" {
			sb.WriteString(cleaned)
			sb.WriteString("\n")
		}
		if sb.Len() > maxTextBytes {
			break
		}
	}

	out := sb.String()
	if len(out) > maxTextBytes {
		out = out[:maxTextBytes]
	}
	return strings.TrimSpace(out), nil
}

// normalizeWhitespace collapses runs of horizontal whitespace to a single
// space, preserving newlines, and drops null bytes.
func normalizeWhitespace(text string) string {
	var sb strings.Builder
	lastSpace := false
	for _, r := range text {
		switch {
		case r == 0:
		case r == '\n':
			sb.WriteRune('\n')
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		default:
			sb.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
