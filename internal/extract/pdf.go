package extract

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates the positioned text of every page. Glyph runs that
// touch horizontally form one fragment; fragments on a line are joined by
// spaces and lines by newlines.
func extractPDF(ctx context.Context, r io.ReaderAt, size int64) (doc *Document, err error) {
	// The PDF reader panics on some malformed object streams.
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("%w: malformed pdf: %v", ErrInvalidDocument, rec)
		}
	}()

	rd, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var b strings.Builder
	for i := 1; i <= rd.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := rd.Page(i)
		if page.V.IsNull() {
			continue
		}
		b.WriteString(pageText(page.Content().Text))
		b.WriteByte('\n')
	}
	return &Document{Text: b.String()}, nil
}

func pageText(texts []pdf.Text) string {
	var b strings.Builder
	var prev *pdf.Text
	for i := range texts {
		t := &texts[i]
		if t.S == "" {
			continue
		}
		if prev != nil {
			tolerance := math.Max(prev.FontSize, 1) * 0.5
			switch {
			case math.Abs(t.Y-prev.Y) > tolerance:
				b.WriteByte('\n')
			case t.X-(prev.X+prev.W) > math.Max(prev.FontSize, 1)*0.15:
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		prev = t
	}
	return b.String()
}
