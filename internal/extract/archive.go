package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	nsWord  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsText  = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	nsTable = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
)

// maxRowCells bounds the width of an expanded table row.
const maxRowCells = 1024

// maxSpaces caps a single text:s run.
const maxSpaces = 64

// openEntry returns a decoder over the named entry of the zip archive in r.
func openEntry(r io.ReaderAt, size int64, name string) (*xml.Decoder, io.Closer, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: not a readable archive: %v", ErrInvalidDocument, err)
	}
	f, err := zr.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: missing %s", ErrInvalidDocument, name)
	}
	dec := xml.NewDecoder(io.LimitReader(f, maxEntrySize))
	return dec, f, nil
}

func xmlError(name string, err error) error {
	if errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrAlgorithm) {
		return fmt.Errorf("%w: corrupt %s: %v", ErrInvalidDocument, name, err)
	}
	return fmt.Errorf("%w: cannot parse %s: %v", ErrInvalidDocument, name, err)
}

// extractDocx reads paragraph text from word/document.xml. Tables in
// word-processor files are flattened into the text stream.
func extractDocx(r io.ReaderAt, size int64) (*Document, error) {
	const entry = "word/document.xml"
	dec, closer, err := openEntry(r, size, entry)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var b strings.Builder
	inRun, inText := false, false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xmlError(entry, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != nsWord {
				continue
			}
			switch t.Name.Local {
			case "r":
				inRun = true
			case "t":
				inText = true
			case "tab":
				// Tab stops in paragraph properties share the element name.
				if inRun {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if inRun {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != nsWord {
				continue
			}
			switch t.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return &Document{Text: b.String()}, nil
}

// odtParser walks content.xml of an OpenDocument text file.
type odtParser struct {
	text strings.Builder

	para      *strings.Builder
	paraDepth int

	tables []*odtTable
	done   []Table
}

type odtTable struct {
	rows   Table
	row    []string
	cell   *strings.Builder
	repeat int

	// pending counts empty cells not yet written. They only reach the row
	// when a non-empty cell follows, so trailing padding is never expanded.
	pending int
}

// put appends n copies of value to the current row, up to maxRowCells.
func (t *odtTable) put(value string, n int) {
	if value == "" {
		t.pending += n
		return
	}
	for ; t.pending > 0 && len(t.row) < maxRowCells; t.pending-- {
		t.row = append(t.row, "")
	}
	t.pending = 0
	for ; n > 0 && len(t.row) < maxRowCells; n-- {
		t.row = append(t.row, value)
	}
}

func (p *odtParser) current() *odtTable {
	if len(p.tables) == 0 {
		return nil
	}
	return p.tables[len(p.tables)-1]
}

func (p *odtParser) write(s string) {
	if p.para != nil {
		p.para.WriteString(s)
	}
	if t := p.current(); t != nil && t.cell != nil {
		t.cell.WriteString(s)
	}
}

func (p *odtParser) start(el xml.StartElement) {
	switch el.Name.Space {
	case nsText:
		switch el.Name.Local {
		case "p", "h":
			if p.paraDepth == 0 {
				p.para = &strings.Builder{}
			}
			p.paraDepth++
			if t := p.current(); t != nil && t.cell != nil && t.cell.Len() > 0 {
				t.cell.WriteByte('\n')
			}
		case "s":
			n := intAttr(el, nsText, "c", 1)
			p.write(strings.Repeat(" ", min(n, maxSpaces)))
		case "tab":
			p.write("\t")
		case "line-break":
			p.write("\n")
		}
	case nsTable:
		switch el.Name.Local {
		case "table":
			p.tables = append(p.tables, &odtTable{})
		case "table-row":
			if t := p.current(); t != nil {
				t.row, t.pending = nil, 0
			}
		case "table-cell":
			if t := p.current(); t != nil {
				t.cell = &strings.Builder{}
				t.repeat = intAttr(el, nsTable, "number-columns-repeated", 1)
			}
		case "covered-table-cell":
			if t := p.current(); t != nil {
				t.put("", max(intAttr(el, nsTable, "number-columns-repeated", 1), 1))
			}
		}
	}
}

func (p *odtParser) end(el xml.EndElement) {
	switch el.Name.Space {
	case nsText:
		if el.Name.Local == "p" || el.Name.Local == "h" {
			p.paraDepth--
			if p.paraDepth == 0 && p.para != nil {
				p.text.WriteString(p.para.String())
				p.text.WriteByte('\n')
				p.para = nil
			}
		}
	case nsTable:
		t := p.current()
		if t == nil {
			return
		}
		switch el.Name.Local {
		case "table-cell":
			if t.cell == nil {
				return
			}
			t.put(strings.TrimSpace(t.cell.String()), max(t.repeat, 1))
			t.cell = nil
		case "table-row":
			t.rows = append(t.rows, trimTrailingEmpty(t.row))
			t.row, t.pending = nil, 0
		case "table":
			p.tables = p.tables[:len(p.tables)-1]
			p.done = append(p.done, t.rows)
		}
	}
}

// extractODT reads paragraph text and table grids from content.xml.
func extractODT(r io.ReaderAt, size int64) (*Document, error) {
	const entry = "content.xml"
	dec, closer, err := openEntry(r, size, entry)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	p := &odtParser{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xmlError(entry, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			p.start(t)
		case xml.EndElement:
			p.end(t)
		case xml.CharData:
			p.write(string(t))
		}
	}
	return &Document{Text: p.text.String(), Tables: p.done}, nil
}

func intAttr(el xml.StartElement, space, local string, def int) int {
	for _, a := range el.Attr {
		if a.Name.Space == space && a.Name.Local == local {
			if n, err := strconv.Atoi(a.Value); err == nil && n > 0 {
				return n
			}
		}
	}
	return def
}

func trimTrailingEmpty(row []string) []string {
	end := len(row)
	for end > 0 && row[end-1] == "" {
		end--
	}
	return row[:end]
}
