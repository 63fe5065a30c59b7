package wordlist

import (
	"regexp"
	"strconv"
	"strings"

	"dicteeclash/internal/extract"
)

var (
	tableHeader = regexp.MustCompile(`(?i)^\s*(?:(liste|dictée|dictee|dict\.)\s*(?:n\s*°\s*)?|n\s*°\s*)(\d+)`)
	cellSplit   = regexp.MustCompile(`\s*,\s*|\r?\n`)
)

type header struct {
	col    int
	title  string
	number string
}

func parseHeader(cell string, col int) (header, bool) {
	m := tableHeader.FindStringSubmatch(cell)
	if m == nil {
		return header{}, false
	}
	title := "Liste"
	if kw := strings.ToLower(m[1]); strings.HasPrefix(kw, "dict") {
		title = "Dictée"
	}
	return header{col: col, title: title + " " + m[2], number: m[2]}, true
}

func rowHeaders(row []string) []header {
	var hs []header
	for col, cell := range row {
		if h, ok := parseHeader(cell, col); ok {
			hs = append(hs, h)
		}
	}
	return hs
}

func columns(grid [][]string) int {
	n := 0
	for _, row := range grid {
		n = max(n, len(row))
	}
	return n
}

// findHeaderRow scans the first three rows. A row with two or more headers
// wins outright; otherwise the first row with exactly one header is used.
func findHeaderRow(grid [][]string) (row int, hs []header, strong bool) {
	row = -1
	for i := 0; i < len(grid) && i < 3; i++ {
		found := rowHeaders(grid[i])
		if len(found) >= 2 {
			return i, found, true
		}
		if len(found) == 1 && row < 0 {
			row, hs = i, found
		}
	}
	return row, hs, false
}

// ExtractListsFromTable reads named word lists from a table grid.
func (d *Detector) ExtractListsFromTable(grid [][]string) []DetectedSection {
	sections, _ := d.tableSections(grid)
	return sections
}

func (d *Detector) tableSections(grid [][]string) ([]DetectedSection, bool) {
	ncols := columns(grid)
	sections := []DetectedSection{}

	if row, hs, strong := findHeaderRow(grid); row >= 0 {
		for i, h := range hs {
			end := ncols
			if i+1 < len(hs) {
				end = hs[i+1].col
			}
			words := d.collectCells(grid[row+1:], h.col, end)
			if len(words) > 0 {
				sections = append(sections, DetectedSection{ID: "section-" + h.number, Title: h.title, Words: words})
			}
		}
		return sections, strong
	}

	if ncols >= 4 {
		mid := ncols / 2
		for i, r := range [][2]int{{0, mid}, {mid, ncols}} {
			words := d.collectCells(grid, r[0], r[1])
			if len(words) > 0 {
				n := strconv.Itoa(i + 1)
				sections = append(sections, DetectedSection{ID: "section-" + n, Title: "Liste " + n, Words: words})
			}
		}
		if len(sections) > 0 {
			return sections, false
		}
	}

	if words := d.collectCells(grid, 0, ncols); len(words) > 0 {
		sections = append(sections, DetectedSection{ID: "section-1", Title: "Liste 1", Words: words})
	}
	return sections, false
}

// collectCells gathers words row by row from columns [from, to).
func (d *Detector) collectCells(rows [][]string, from, to int) []string {
	var tokens []string
	for _, row := range rows {
		for col := from; col < to && col < len(row); col++ {
			cell := strings.TrimSpace(row[col])
			if cell == "" || tableHeader.MatchString(cell) {
				continue
			}
			tokens = append(tokens, cellSplit.Split(cell, -1)...)
		}
	}
	return d.collect(tokens)
}

// SelectTableSections picks the sections of the main word-list table: the
// first table whose header row names two or more lists. Failing that, the
// first table yielding any section is used.
func (d *Detector) SelectTableSections(tables []extract.Table) []DetectedSection {
	var fallback []DetectedSection
	for _, grid := range tables {
		sections, strong := d.tableSections(grid)
		if len(sections) == 0 {
			continue
		}
		if strong {
			return sections
		}
		if fallback == nil {
			fallback = sections
		}
	}
	if fallback == nil {
		return []DetectedSection{}
	}
	return fallback
}
