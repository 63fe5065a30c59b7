package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"dicteeclash/internal/audio"
	"dicteeclash/internal/models"
	"dicteeclash/internal/morph"
	"dicteeclash/internal/observe"
	"dicteeclash/internal/textgen"
	"dicteeclash/internal/textgen/remote"
)

var (
	ErrUnknownWord   = errors.New("word is not on the list")
	ErrAudioDisabled = errors.New("audio is disabled")
)

// Dictation is a generated text and where it came from
type Dictation struct {
	textgen.GeneratedText
	Source remote.Source `json:"source"`
}

// Answer is one word as typed or picked by a student
type Answer struct {
	Word   string `json:"word"`
	Answer string `json:"answer"`
}

// GradedAnswer is an answer with its verdict. NearMiss flags a wrong answer
// one edit away from an accepted spelling.
type GradedAnswer struct {
	Word     string `json:"word"`
	Expected string `json:"expected"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
	NearMiss bool   `json:"nearMiss"`
}

// CheckResult is the outcome of grading a batch of answers
type CheckResult struct {
	Mode       models.DrillMode `json:"mode"`
	Results    []GradedAnswer   `json:"results"`
	Correct    int              `json:"correct"`
	Total      int              `json:"total"`
	Percentage int              `json:"percentage"`
}

// DrillService builds exercises from a list and grades them. Generators
// and morphology helpers own a random source, so each call builds its own.
type DrillService struct {
	lists   *ListService
	library *textgen.Library
	remote  *remote.Adapter
	tts     *audio.TTSService
	metrics *observe.Metrics
}

// NewDrillService creates a new drill service. tts may be nil to disable audio.
func NewDrillService(lists *ListService, library *textgen.Library, adapter *remote.Adapter, tts *audio.TTSService, metrics *observe.Metrics) *DrillService {
	return &DrillService{
		lists:   lists,
		library: library,
		remote:  adapter,
		tts:     tts,
		metrics: metrics,
	}
}

// LocalGenerator returns a factory of template-based generators over lib
func LocalGenerator(lib *textgen.Library) func() textgen.Generator {
	return func() textgen.Generator {
		return textgen.New(lib, morph.New(morph.DefaultTables(), nil), nil)
	}
}

// Dictation writes a fill-in-the-blanks text for the list. With useAI the
// remote service is tried first, using apiKey when given.
func (s *DrillService) Dictation(ctx context.Context, code string, useAI bool, apiKey string) (*Dictation, error) {
	list, err := s.drillList(ctx, code)
	if err != nil {
		return nil, err
	}
	words := list.WordTexts()

	if !useAI || s.remote == nil {
		g := LocalGenerator(s.library)().GenerateTextWithBlanks(words)
		s.metrics.RecordSynthesis(ctx, string(remote.SourceLocal), false)
		return &Dictation{GeneratedText: g, Source: remote.SourceLocal}, nil
	}

	res := s.remote.Generate(ctx, words, apiKey)
	fallback := res.Source == remote.SourceLocal && (apiKey != "" || s.remote.Enabled())
	s.metrics.RecordSynthesis(ctx, string(res.Source), fallback)
	return &Dictation{GeneratedText: res.Text, Source: res.Source}, nil
}

// Choices builds one spelling choice per list word
func (s *DrillService) Choices(ctx context.Context, code string) ([]morph.SpellingChoice, error) {
	list, err := s.drillList(ctx, code)
	if err != nil {
		return nil, err
	}
	m := morph.New(morph.DefaultTables(), nil)
	choices := make([]morph.SpellingChoice, 0, len(list.Words))
	for _, w := range list.WordTexts() {
		choices = append(choices, m.SpellingChoice(w))
	}
	return choices, nil
}

// Check grades answers against the list's words
func (s *DrillService) Check(ctx context.Context, code string, mode models.DrillMode, answers []Answer) (*CheckResult, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	list, err := s.drillList(ctx, code)
	if err != nil {
		return nil, err
	}

	onList := make(map[string]bool, len(list.Words))
	for _, w := range list.WordTexts() {
		onList[w] = true
	}

	m := morph.New(morph.DefaultTables(), nil)
	res := &CheckResult{Mode: mode, Results: make([]GradedAnswer, 0, len(answers))}
	for _, a := range answers {
		if !onList[a.Word] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWord, a.Word)
		}
		g := gradeAnswer(m, mode, a.Word, a.Answer)
		if g.Correct {
			res.Correct++
		}
		res.Results = append(res.Results, g)
	}
	res.Total = len(res.Results)
	res.Percentage = models.Percentage(res.Correct, res.Total)
	return res, nil
}

// Audio returns spoken French for text, or for a fresh dictation of the
// list when text is empty.
func (s *DrillService) Audio(ctx context.Context, code, text string) ([]byte, error) {
	if s.tts == nil {
		return nil, ErrAudioDisabled
	}
	list, err := s.drillList(ctx, code)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = LocalGenerator(s.library)().GenerateTextWithBlanks(list.WordTexts()).FullText
	}

	data, err := s.tts.Speak(ctx, text)
	if err != nil {
		s.metrics.RecordTTS(ctx, "error")
		return nil, err
	}
	s.metrics.RecordTTS(ctx, "ok")
	return data, nil
}

func (s *DrillService) drillList(ctx context.Context, code string) (*models.WordList, error) {
	list, err := s.lists.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(list.Words) == 0 {
		return nil, ErrEmptyList
	}
	return list, nil
}

// gradeAnswer accepts any variant of word. Flashcards also forgive case
// and accents.
func gradeAnswer(m *morph.Helper, mode models.DrillMode, word, answer string) GradedAnswer {
	g := GradedAnswer{Word: word, Expected: m.BaseForm(word), Answer: answer}

	if mode == models.DrillFlashcard {
		given := morph.Normalize(answer)
		for _, v := range m.WordVariants(word) {
			if given != "" && given == morph.Normalize(v) {
				g.Correct = true
				break
			}
		}
	} else {
		g.Correct = m.Matches(answer, word)
	}

	if !g.Correct && strings.TrimSpace(answer) != "" {
		given := strings.ToLower(strings.TrimSpace(answer))
		for _, v := range m.WordVariants(word) {
			if matchr.DamerauLevenshtein(given, strings.ToLower(v)) <= 1 {
				g.NearMiss = true
				break
			}
		}
	}
	return g
}
