// Package textgen builds short dictation narratives around a vocabulary list
// and records where each word landed so it can be blanked out.
package textgen

import (
	"math/rand/v2"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"dicteeclash/internal/morph"
)

// MaxWords is the largest number of words placed in one text.
const MaxWords = 10

// Blank is one embedded word. Position is a byte offset into FullText.
type Blank struct {
	Word         string `json:"word"`
	OriginalWord string `json:"originalWord"`
	Position     int    `json:"position"`
}

// GeneratedText is a narrative plus the blanks hidden in it.
type GeneratedText struct {
	FullText    string  `json:"fullText"`
	DisplayText string  `json:"displayText"`
	Blanks      []Blank `json:"blanks"`
}

// Generator produces a dictation text for a word list.
type Generator interface {
	GenerateTextWithBlanks(words []string) GeneratedText
}

// Synthesizer fills story templates locally. It is not safe for concurrent
// use; build one per request.
type Synthesizer struct {
	lib   *Library
	morph *morph.Helper
	rng   *rand.Rand
}

// New creates a Synthesizer. A nil rng gets a time-seeded source.
func New(lib *Library, m *morph.Helper, rng *rand.Rand) *Synthesizer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &Synthesizer{lib: lib, morph: m, rng: rng}
}

type placement struct {
	surface  string
	original string
	at       int
}

// GenerateTextWithBlanks writes a narrative that uses each of the first
// MaxWords words exactly once.
func (s *Synthesizer) GenerateTextWithBlanks(words []string) GeneratedText {
	list := Cap(words)
	if len(list) == 0 {
		return GeneratedText{Blanks: []Blank{}}
	}
	s.rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })

	story := s.lib.Stories[s.rng.IntN(len(s.lib.Stories))]
	slots := story.Slots()

	var (
		sentences []string
		places    []placement
		offset    int
	)
	push := func(sentence string) {
		if len(sentences) > 0 {
			offset++
		}
		sentences = append(sentences, sentence)
		offset += len(sentence)
	}
	fill := func(tpl, word string) {
		surface := s.morph.ChooseVariant(word)
		at := offset + strings.Index(tpl, Placeholder)
		if len(sentences) > 0 {
			at++
		}
		places = append(places, placement{surface: surface, original: word, at: at})
		push(strings.Replace(tpl, Placeholder, surface, 1))
	}

	n := min(len(list), len(slots))
	for i := 0; i < n; i++ {
		fill(slots[i], list[i])
	}
	push(story.Closing)
	for i, w := range list[n:] {
		fill(s.lib.Fillers[i%len(s.lib.Fillers)], w)
	}

	full := strings.Join(sentences, " ")
	blanks := locate(full, places)
	return GeneratedText{FullText: full, DisplayText: Mask(full, blanks), Blanks: blanks}
}

// locate finds each placed word scanning left to right. The cursor advances
// past every match so repeated fragments resolve to distinct positions.
func locate(full string, places []placement) []Blank {
	blanks := make([]Blank, 0, len(places))
	cursor := 0
	for _, p := range places {
		from := max(cursor, p.at)
		if from > len(full) {
			continue
		}
		idx := strings.Index(full[from:], p.surface)
		if idx < 0 {
			continue
		}
		pos := from + idx
		blanks = append(blanks, Blank{Word: p.surface, OriginalWord: p.original, Position: pos})
		cursor = pos + len(p.surface)
	}
	sort.SliceStable(blanks, func(i, j int) bool { return blanks[i].Position < blanks[j].Position })
	return blanks
}

// Mask replaces every blank span of full with underscores, at least five
// per blank. Spans are replaced from the end so earlier offsets stay valid.
func Mask(full string, blanks []Blank) string {
	ordered := make([]Blank, len(blanks))
	copy(ordered, blanks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Position > ordered[j].Position })

	out := full
	for _, b := range ordered {
		end := b.Position + len(b.Word)
		if b.Position < 0 || end > len(out) {
			continue
		}
		fill := strings.Repeat("_", max(5, utf8.RuneCountInString(b.Word)))
		out = out[:b.Position] + fill + out[end:]
	}
	return out
}

// Cap trims blank entries and keeps at most MaxWords words, returning a copy.
func Cap(words []string) []string {
	out := make([]string, 0, min(len(words), MaxWords))
	for _, w := range words {
		if strings.TrimSpace(w) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(w))
		if len(out) == MaxWords {
			break
		}
	}
	return out
}
