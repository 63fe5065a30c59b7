// Package wordlist finds vocabulary words and named sub-lists in text and
// table grids extracted from worksheets.
package wordlist

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNoWordsFound means extraction succeeded but yielded no usable word.
var ErrNoWordsFound = errors.New("no words found")

// DetectedSection is a named sub-list found inside a document.
type DetectedSection struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Words []string `json:"words"`
}

// Span is the byte range of text covered by one section header and its body.
type Span struct {
	Start   int
	End     int
	Keyword string
	Number  string
}

const glyphs = "▶►◀◄→←↑↓★☆●○■□▪▫"

var (
	sectionHeader = regexp.MustCompile(`(?i)\b(dictée|liste|semaine|période|leçon|série)\s*n?°?\s*(\d+)\s*[►▶:\-–—]?\s*`)

	separators = regexp.MustCompile(`\s*[-–—]\s*|\s*[,;•·▶►]\s*|\r?\n|\t`)

	leadingArticle = regexp.MustCompile(`(?i)^(?:(?:le|la|les|un|une|des)\s+|l['’]\s*)`)
	leadingJunk    = regexp.MustCompile(`^[^\p{L}(]+`)
	trailingJunk   = regexp.MustCompile(`[^\p{L})]+$`)
	variantSuffix  = regexp.MustCompile(`\([^)]*\)$`)
)

// Detector holds the immutable data used for word filtering. It is safe for
// concurrent use.
type Detector struct {
	stop Stoplist
}

// NewDetector creates a Detector that rejects every token in stop.
func NewDetector(stop Stoplist) *Detector {
	return &Detector{stop: stop}
}

// DefaultDetector creates a Detector with the built-in stoplist.
func DefaultDetector() *Detector {
	return NewDetector(DefaultStoplist())
}

// IsValidWord reports whether token looks like a vocabulary word rather than
// a heading, instruction, number or decoration.
func (d *Detector) IsValidWord(token string) bool {
	core := variantSuffix.ReplaceAllString(token, "")
	if utf8.RuneCountInString(core) < 2 {
		return false
	}
	if utf8.RuneCountInString(token) > 2 && token == strings.ToUpper(token) {
		return false
	}
	if strings.IndexFunc(token, unicode.IsDigit) >= 0 {
		return false
	}
	if d.stop.Contains(strings.ToLower(token)) || d.stop.Contains(strings.ToLower(core)) {
		return false
	}
	if strings.ContainsAny(token, glyphs) {
		return false
	}
	return strings.IndexFunc(token, unicode.IsLetter) >= 0
}

// CleanWord strips surrounding whitespace, a leading article and any
// non-letter edges, keeping the parentheses of a variant marker.
// CleanWord(CleanWord(s)) == CleanWord(s) for every s.
func CleanWord(token string) string {
	for {
		next := strings.TrimSpace(token)
		next = leadingArticle.ReplaceAllString(next, "")
		next = leadingJunk.ReplaceAllString(next, "")
		next = trailingJunk.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == token {
			return next
		}
		token = next
	}
}

// ExtractWords splits text into cleaned, valid, case-insensitively unique words.
func (d *Detector) ExtractWords(text string) []string {
	text = sectionHeader.ReplaceAllString(text, " ")
	return d.collect(separators.Split(text, -1))
}

func (d *Detector) collect(tokens []string) []string {
	words := []string{}
	seen := make(map[string]bool)
	for _, tok := range tokens {
		w := CleanWord(tok)
		if !d.IsValidWord(w) {
			continue
		}
		key := strings.ToLower(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		words = append(words, w)
	}
	return words
}

// SectionSpans returns the ranges opened by each section header. Spans tile
// text from the first header to the end without gaps.
func SectionSpans(text string) []Span {
	matches := sectionHeader.FindAllStringSubmatchIndex(text, -1)
	spans := make([]Span, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		spans = append(spans, Span{
			Start:   m[0],
			End:     end,
			Keyword: text[m[2]:m[3]],
			Number:  text[m[4]:m[5]],
		})
	}
	return spans
}

// DetectSections partitions text at each section header and extracts the
// words of every span. Sections without words are omitted.
func (d *Detector) DetectSections(text string) []DetectedSection {
	sections := []DetectedSection{}
	for _, span := range SectionSpans(text) {
		words := d.ExtractWords(text[span.Start:span.End])
		if len(words) == 0 {
			continue
		}
		sections = append(sections, DetectedSection{
			ID:    "section-" + span.Number,
			Title: capitalize(span.Keyword) + " " + span.Number,
			Words: words,
		})
	}
	return sections
}

func capitalize(s string) string {
	s = strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
