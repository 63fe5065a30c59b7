package wordlist

import (
	"context"
	"io"
	"strings"

	"dicteeclash/internal/extract"
)

// ImportResult is what the import flow hands to the list editor.
type ImportResult struct {
	Words               []string          `json:"words"`
	Sections            []DetectedSection `json:"sections"`
	HasMultipleSections bool              `json:"hasMultipleSections"`
}

// ExtractWordsFromFile extracts the document and detects its word lists.
// Extraction errors are returned unchanged.
func (d *Detector) ExtractWordsFromFile(ctx context.Context, filename string, r io.ReaderAt, size int64) (*ImportResult, error) {
	doc, err := extract.Extract(ctx, filename, r, size)
	if err != nil {
		return nil, err
	}
	return d.FromDocument(doc), nil
}

// FromDocument detects word lists in an already extracted document. Table
// sections take precedence over sections found in the running text.
func (d *Detector) FromDocument(doc *extract.Document) *ImportResult {
	sections := d.SelectTableSections(doc.Tables)
	if len(sections) == 0 {
		sections = d.DetectSections(doc.Text)
	}

	res := &ImportResult{
		Sections:            sections,
		HasMultipleSections: len(sections) > 1,
	}
	switch len(sections) {
	case 0:
		res.Words = d.ExtractWords(doc.Text)
	case 1:
		res.Words = sections[0].Words
	default:
		res.Words = flatten(sections)
	}
	return res
}

func flatten(sections []DetectedSection) []string {
	words := []string{}
	seen := make(map[string]bool)
	for _, s := range sections {
		for _, w := range s.Words {
			key := strings.ToLower(w)
			if !seen[key] {
				seen[key] = true
				words = append(words, w)
			}
		}
	}
	return words
}
