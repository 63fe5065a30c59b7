package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"dicteeclash/internal/extract"
	"dicteeclash/internal/observe"
	"dicteeclash/internal/wordlist"
)

// ImportReport is an import result plus a notice when nothing was found
type ImportReport struct {
	wordlist.ImportResult
	Notice string `json:"notice,omitempty"`
}

// ImportService turns uploaded documents into candidate word lists
type ImportService struct {
	detector *wordlist.Detector
	metrics  *observe.Metrics
}

// NewImportService creates a new import service
func NewImportService(detector *wordlist.Detector, metrics *observe.Metrics) *ImportService {
	return &ImportService{detector: detector, metrics: metrics}
}

// Import extracts filename's text and detects its word lists. A document
// without any usable word is not an error: the report carries a notice.
func (s *ImportService) Import(ctx context.Context, filename string, r io.ReaderAt, size int64) (*ImportReport, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")

	res, err := s.detector.ExtractWordsFromFile(ctx, filename, r, size)
	if err != nil {
		s.metrics.RecordImport(ctx, format, importStatus(err))
		return nil, err
	}

	report := &ImportReport{ImportResult: *res}
	if len(res.Words) == 0 {
		report.Notice = wordlist.ErrNoWordsFound.Error()
		s.metrics.RecordImport(ctx, format, "empty")
		return report, nil
	}
	s.metrics.RecordImport(ctx, format, "ok")
	return report, nil
}

func importStatus(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, extract.ErrInvalidDocument):
		return "invalid"
	default:
		return "error"
	}
}
