// Package extract turns uploaded documents into raw text and, for formats
// that carry tables, into grids of cell strings.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions outside AcceptedExtensions.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrInvalidDocument is returned when a document cannot be opened or parsed.
	ErrInvalidDocument = errors.New("invalid document")
)

// AcceptedExtensions lists every extension Extract understands.
var AcceptedExtensions = []string{".txt", ".docx", ".doc", ".odt", ".pdf"}

// Table is a 2-D grid of cell text, row-major.
type Table [][]string

// Columns returns the width of the widest row.
func (t Table) Columns() int {
	n := 0
	for _, row := range t {
		n = max(n, len(row))
	}
	return n
}

// Document is the normalized content of an uploaded file.
type Document struct {
	Text   string
	Tables []Table
}

// maxEntrySize bounds how much of a single archive entry is decompressed.
const maxEntrySize = 64 << 20

// Extract reads the document named filename from r, dispatching on its extension.
func Extract(ctx context.Context, filename string, r io.ReaderAt, size int64) (*Document, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt":
		return extractPlain(r, size)
	case ".docx", ".doc":
		if isLegacyWord(r, size) {
			return nil, fmt.Errorf("%w: legacy binary Word file, save it as .docx", ErrInvalidDocument)
		}
		return extractDocx(r, size)
	case ".odt":
		return extractODT(r, size)
	case ".pdf":
		return extractPDF(ctx, r, size)
	default:
		return nil, fmt.Errorf("%w %q: accepted formats are %s",
			ErrUnsupportedFormat, ext, strings.Join(AcceptedExtensions, ", "))
	}
}

// oleMagic opens every compound-file document, including pre-2007 Word files.
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

func isLegacyWord(r io.ReaderAt, size int64) bool {
	if size < int64(len(oleMagic)) {
		return false
	}
	head := make([]byte, len(oleMagic))
	if _, err := r.ReadAt(head, 0); err != nil {
		return false
	}
	return bytes.Equal(head, oleMagic)
}

// IsSupported reports whether filename has an accepted extension.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range AcceptedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}

func extractPlain(r io.ReaderAt, size int64) (*Document, error) {
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return &Document{Text: strings.ReplaceAll(string(data), "\r\n", "\n")}, nil
}
