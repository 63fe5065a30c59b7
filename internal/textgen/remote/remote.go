// Package remote delegates dictation writing to an OpenAI-compatible chat
// completion service and maps the reply back onto blanks. Any failure falls
// back to local templates.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"dicteeclash/internal/morph"
	"dicteeclash/internal/textgen"
)

const (
	DefaultBaseURL = "https://api.deepseek.com/"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 15 * time.Second

	maxTokens   = 300
	temperature = 0.7
)

const systemPrompt = "Tu es un professeur de français. Génère un court texte (3 à 5 phrases) de niveau école primaire " +
	"qui utilise TOUS ces mots de vocabulaire de manière naturelle, chacun une seule fois et correctement accordé. " +
	"Le texte doit être simple et compréhensible pour des enfants. N'ajoute aucun titre ni commentaire."

// Source tells where a text came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

var errEmptyResponse = errors.New("empty completion")

type config struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures an Adapter.
type Option func(*config)

// WithAPIKey sets the default key used when a call supplies none.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithBaseURL points the adapter at another OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithModel selects the chat model.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithTimeout bounds each remote call. A timeout is handled like any other failure.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithHTTPClient overrides the HTTP client used for remote calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// Result is a generated text plus how it was obtained.
type Result struct {
	Text       textgen.GeneratedText
	Source     Source
	Requested  int
	Reconciled int
}

// Adapter produces dictation texts remotely. It is safe for concurrent use
// as long as newLocal returns a fresh generator on each call.
type Adapter struct {
	cfg      config
	newLocal func() textgen.Generator
	morph    *morph.Helper
}

// New creates an Adapter. newLocal builds the fallback generator.
func New(newLocal func() textgen.Generator, m *morph.Helper, opts ...Option) *Adapter {
	cfg := config{baseURL: DefaultBaseURL, model: DefaultModel, timeout: DefaultTimeout}
	for _, o := range opts {
		o(&cfg)
	}
	return &Adapter{cfg: cfg, newLocal: newLocal, morph: m}
}

// Enabled reports whether a default key is configured.
func (a *Adapter) Enabled() bool {
	return a.cfg.apiKey != ""
}

// GenerateTextWithAI returns a remote narrative for words, or a local one when
// no key is available or the service fails.
func (a *Adapter) GenerateTextWithAI(ctx context.Context, words []string, apiKey string) textgen.GeneratedText {
	return a.Generate(ctx, words, apiKey).Text
}

// Generate is GenerateTextWithAI with provenance details.
func (a *Adapter) Generate(ctx context.Context, words []string, apiKey string) Result {
	if apiKey == "" {
		apiKey = a.cfg.apiKey
	}
	list := textgen.Cap(words)
	if apiKey == "" || len(list) == 0 {
		return a.local(words)
	}

	text, err := a.complete(ctx, apiKey, list)
	if err != nil {
		log.Printf("Warning: remote synthesis failed, using local templates: %v", err)
		return a.local(words)
	}

	blanks := a.reconcile(text, list)
	return Result{
		Text: textgen.GeneratedText{
			FullText:    text,
			DisplayText: textgen.Mask(text, blanks),
			Blanks:      blanks,
		},
		Source:     SourceRemote,
		Requested:  len(list),
		Reconciled: len(blanks),
	}
}

func (a *Adapter) local(words []string) Result {
	g := a.newLocal().GenerateTextWithBlanks(words)
	return Result{Text: g, Source: SourceLocal, Requested: len(textgen.Cap(words)), Reconciled: len(g.Blanks)}
}

func (a *Adapter) complete(ctx context.Context, apiKey string, words []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.timeout)
	defer cancel()

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(a.cfg.baseURL),
		option.WithMaxRetries(0),
	}
	if a.cfg.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(a.cfg.httpClient))
	}
	client := oai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.cfg.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(a.prompt(words)),
		},
		MaxTokens:   param.NewOpt(int64(maxTokens)),
		Temperature: param.NewOpt(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func (a *Adapter) prompt(words []string) string {
	var b strings.Builder
	b.WriteString("Mots à inclure, sans ajouter d'article devant :\n")
	for _, w := range words {
		variants := a.morph.WordVariants(w)
		base := a.morph.BaseForm(w)
		var others []string
		for _, v := range variants {
			if v != base && v != w {
				others = append(others, v)
			}
		}
		b.WriteString("- ")
		b.WriteString(base)
		if len(others) > 0 {
			b.WriteString(" (formes acceptées : ")
			b.WriteString(strings.Join(others, ", "))
			b.WriteString(")")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type span struct{ start, end int }

// reconcile finds each word in text, trying its variants in order with a
// case-insensitive whole-word match. Words that cannot be found are omitted.
func (a *Adapter) reconcile(text string, words []string) []textgen.Blank {
	var claimed []span
	blanks := []textgen.Blank{}

	for _, w := range words {
		for _, v := range a.morph.WordVariants(w) {
			if s, ok := findWord(text, v, claimed); ok {
				claimed = append(claimed, s)
				blanks = append(blanks, textgen.Blank{Word: text[s.start:s.end], OriginalWord: w, Position: s.start})
				break
			}
		}
	}
	sort.Slice(blanks, func(i, j int) bool { return blanks[i].Position < blanks[j].Position })
	return blanks
}

func findWord(text, word string, claimed []span) (span, bool) {
	if strings.TrimSpace(word) == "" {
		return span{}, false
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(word))
	if err != nil {
		return span{}, false
	}
	for _, m := range re.FindAllStringIndex(text, -1) {
		s := span{m[0], m[1]}
		if isBoundary(text, s) && !overlaps(s, claimed) {
			return s, true
		}
	}
	return span{}, false
}

func isBoundary(text string, s span) bool {
	if before, _ := utf8.DecodeLastRuneInString(text[:s.start]); s.start > 0 && isWordRune(before) {
		return false
	}
	if after, _ := utf8.DecodeRuneInString(text[s.end:]); s.end < len(text) && isWordRune(after) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func overlaps(s span, claimed []span) bool {
	for _, c := range claimed {
		if s.start < c.end && c.start < s.end {
			return true
		}
	}
	return false
}
