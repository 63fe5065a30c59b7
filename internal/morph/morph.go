// Package morph derives inflected variants and plausible misspellings of
// French vocabulary words.
package morph

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Position tells which side of a spelling choice holds the correct answer.
type Position string

const (
	Left  Position = "left"
	Right Position = "right"
)

// SpellingChoice is one "which spelling is right?" drill item.
type SpellingChoice struct {
	Word     string   `json:"word"`
	Correct  string   `json:"correct"`
	Wrong    string   `json:"wrong"`
	Position Position `json:"position"`
}

var explicitVariant = regexp.MustCompile(`^(.+)\(([^)]+)\)$`)

const consonants = "bcdfghjklmnpqrstvwxz"

// Helper produces variants and misspellings from a fixed set of tables.
// A Helper is not safe for concurrent use because it owns its random source.
type Helper struct {
	tables Tables
	rng    *rand.Rand
}

// New creates a Helper. A nil rng gets a time-seeded source.
func New(tables Tables, rng *rand.Rand) *Helper {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Helper{tables: tables, rng: rng}
}

// Default creates a Helper with the built-in tables.
func Default() *Helper {
	return New(DefaultTables(), nil)
}

// WordVariants returns every acceptable surface form of word, starting with
// the canonical one. The result is never empty and holds no duplicates.
func (h *Helper) WordVariants(word string) []string {
	var variants []string

	if m := explicitVariant.FindStringSubmatch(word); m != nil {
		base, suffix := m[1], m[2]
		variants = append(variants, base, base+suffix)
		if !strings.HasSuffix(base, "s") && !strings.HasSuffix(base, "x") {
			variants = append(variants, base+"s", base+suffix+"s")
		}
		// The marked-up entry itself is kept so callers can always find the input.
		variants = append(variants, word)
		return dedupe(variants)
	}

	variants = append(variants, word)
	switch {
	case strings.HasSuffix(word, "eux"):
		variants = append(variants, strings.TrimSuffix(word, "x")+"se")
	case strings.HasSuffix(word, "if"):
		variants = append(variants, strings.TrimSuffix(word, "f")+"ve")
	case strings.HasSuffix(word, "er"):
		variants = append(variants, strings.TrimSuffix(word, "er")+"ère")
	case word != "" && !strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "s"):
		variants = append(variants, word+"e", word+"s", word+"es")
	}
	return dedupe(variants)
}

// BaseForm returns the canonical form of word, without any explicit variant marker.
func (h *Helper) BaseForm(word string) string {
	if m := explicitVariant.FindStringSubmatch(word); m != nil {
		return m[1]
	}
	return word
}

// ChooseVariant picks one of the word's surface forms at random.
func (h *Helper) ChooseVariant(word string) string {
	variants := h.WordVariants(word)
	if explicitVariant.MatchString(word) {
		// The raw marker is not prose.
		variants = variants[:len(variants)-1]
	}
	return variants[h.rng.IntN(len(variants))]
}

// SpellingErrors returns up to count misspellings of word, most realistic first.
func (h *Helper) SpellingErrors(word string, count int) []string {
	if count <= 0 {
		return nil
	}
	lower := strings.ToLower(strings.TrimSpace(word))
	if lower == "" {
		return nil
	}

	var candidates []string
	add := func(s ...string) { candidates = append(candidates, s...) }

	for _, sub := range h.tables.Suffixes {
		if stem, ok := strings.CutSuffix(lower, sub.From); ok {
			for _, to := range sub.To {
				add(stem + to)
			}
			break
		}
	}

	add(h.tables.Homophones[lower]...)
	add(h.tables.CommonMisspelling[lower]...)

	if stripped := h.stripAccents(lower); stripped != lower {
		add(stripped)
	}

	for _, sub := range h.tables.Phonetic {
		if !strings.Contains(lower, sub.From) {
			continue
		}
		n := 0
		for _, to := range sub.To {
			if n == 2 {
				break
			}
			if cand := strings.Replace(lower, sub.From, to, 1); cand != lower {
				add(cand)
				n++
			}
		}
	}

	if utf8.RuneCountInString(lower) > 3 {
		switch {
		case strings.HasSuffix(lower, "t"), strings.HasSuffix(lower, "d"):
			add(lower[:len(lower)-1])
		case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ous") && !strings.HasSuffix(lower, "ais"):
			add(lower[:len(lower)-1])
		}
	}

	for _, dc := range h.tables.DoubleConsonants {
		if strings.Contains(lower, dc) {
			add(strings.Replace(lower, dc, dc[:1], 1))
		}
	}
	if !strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "x") && utf8.RuneCountInString(lower) > 2 {
		add(lower + "s")
	}

	seen := map[string]bool{lower: true}
	var out []string
	for _, c := range candidates {
		key := strings.ToLower(c)
		if seen[key] || utf8.RuneCountInString(c) <= 1 {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == count {
			break
		}
	}
	return out
}

// FallbackError always returns a misspelling that differs from word.
func (h *Helper) FallbackError(word string) string {
	r := []rune(word)
	var result string

	switch h.rng.IntN(3) {
	case 0:
		result = word
		for i, c := range r {
			if strings.ContainsRune(consonants, unicode.ToLower(c)) {
				result = string(r[:i+1]) + string(c) + string(r[i+1:])
				break
			}
		}
	case 1:
		result = word
		if len(r) > 3 {
			i := h.rng.IntN(len(r)-2) + 1
			result = string(r[:i]) + string(r[i+1:])
		}
	default:
		switch {
		case strings.Contains(word, "e"):
			result = strings.Replace(word, "e", "é", 1)
		case strings.Contains(word, "é"):
			result = strings.Replace(word, "é", "e", 1)
		default:
			result = word
		}
	}

	if result == word {
		return word + "s"
	}
	return result
}

// SpellingChoice builds a drill item pairing word with one misspelling.
func (h *Helper) SpellingChoice(word string) SpellingChoice {
	var wrong string
	if errs := h.SpellingErrors(word, 1); len(errs) > 0 {
		wrong = errs[0]
	} else {
		wrong = h.FallbackError(word)
	}
	pos := Right
	if h.rng.IntN(2) == 0 {
		pos = Left
	}
	return SpellingChoice{Word: word, Correct: word, Wrong: wrong, Position: pos}
}

// Matches reports whether answer spells any variant of word, ignoring case
// and surrounding whitespace.
func (h *Helper) Matches(answer, word string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	for _, v := range h.WordVariants(word) {
		if strings.EqualFold(answer, v) {
			return true
		}
	}
	return false
}

func (h *Helper) stripAccents(s string) string {
	return strings.Map(func(r rune) rune {
		if plain, ok := h.tables.Accents[r]; ok {
			return plain
		}
		return r
	}, s)
}

// Normalize lowercases s, trims it and removes every combining accent.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
