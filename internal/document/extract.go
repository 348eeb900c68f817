// Package document extracts plain text from uploaded research documents.
// PDF extraction uses ledongthuc/pdf; DOCX is read straight from the zip
// container's WordprocessingML.
package document

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/lorekeep/lorekeep-research/internal/model"
)

// minMeaningfulChars is the threshold below which an extraction is treated
// as failed; scanned PDFs without a text layer commonly land here.
const minMeaningfulChars = 10

// Extract converts an uploaded file into a model.Document, dispatching on
// the filename extension. Supported types are pdf and docx.
func Extract(filename string, data []byte) (*model.Document, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	var text string
	var err error
	switch ext {
	case "pdf":
		text, err = extractPDF(data)
	case "docx":
		text, err = extractDOCX(data)
	default:
		return nil, fmt.Errorf("unsupported document type %q: %w", ext, model.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	if meaningfulChars(text) < minMeaningfulChars {
		return nil, fmt.Errorf("document %q yielded no extractable text: %w", filename, model.ErrValidation)
	}

	return &model.Document{
		Name: filepath.Base(filename),
		Type: ext,
		Text: text,
	}, nil
}

func meaningfulChars(text string) int {
	n := 0
	for _, r := range text {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
