package remote

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicteeclash/internal/morph"
	"dicteeclash/internal/textgen"
)

func localFactory() func() textgen.Generator {
	return func() textgen.Generator {
		m := morph.New(morph.DefaultTables(), rand.New(rand.NewPCG(1, 2)))
		return textgen.New(textgen.DefaultLibrary(), m, rand.New(rand.NewPCG(3, 4)))
	}
}

type fakeService struct {
	calls   atomic.Int32
	lastKey atomic.Value
	body    atomic.Value
}

func (f *fakeService) handler(status int, content string, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.lastKey.Store(r.Header.Get("Authorization"))

		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.body.Store(req)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != http.StatusOK {
			http.Error(w, `{"error":{"message":"boom"}}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "deepseek-chat",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}
}

func newAdapter(t *testing.T, srv *httptest.Server, opts ...Option) *Adapter {
	t.Helper()
	opts = append([]Option{WithBaseURL(srv.URL + "/"), WithHTTPClient(srv.Client())}, opts...)
	return New(localFactory(), morph.Default(), opts...)
}

func TestGenerateWithoutKeyStaysLocal(t *testing.T) {
	fake := &fakeService{}
	srv := httptest.NewServer(fake.handler(http.StatusOK, "ignored", 0))
	defer srv.Close()

	res := newAdapter(t, srv).Generate(context.Background(), []string{"chat", "maison"}, "")
	assert.Equal(t, SourceLocal, res.Source)
	assert.Len(t, res.Text.Blanks, 2)
	assert.Zero(t, fake.calls.Load())
}

func TestGenerateReconcilesRemoteText(t *testing.T) {
	fake := &fakeService{}
	content := "Le chaton dort près du chat. Les Chats jouent devant la maison. Elle est absente."
	srv := httptest.NewServer(fake.handler(http.StatusOK, content, 0))
	defer srv.Close()

	words := []string{"chat", "maison", "chaise", "absent(e)"}
	res := newAdapter(t, srv).Generate(context.Background(), words, "sk-test")

	require.Equal(t, SourceRemote, res.Source)
	assert.Equal(t, 4, res.Requested)
	assert.Equal(t, 3, res.Reconciled)
	assert.Equal(t, "Bearer sk-test", fake.lastKey.Load())

	g := res.Text
	assert.Equal(t, content, g.FullText)
	require.Len(t, g.Blanks, 3)
	assert.Equal(t, textgen.Blank{Word: "chat", OriginalWord: "chat", Position: strings.Index(content, "du chat") + 3}, g.Blanks[0])
	assert.Equal(t, "maison", g.Blanks[1].Word)
	assert.Equal(t, textgen.Blank{Word: "absente", OriginalWord: "absent(e)", Position: len(content) - len("absente.")}, g.Blanks[2])
	for _, b := range g.Blanks {
		assert.Equal(t, b.Word, g.FullText[b.Position:b.Position+len(b.Word)])
	}
	assert.Equal(t, textgen.Mask(g.FullText, g.Blanks), g.DisplayText)

	req, _ := fake.body.Load().(map[string]any)
	require.NotNil(t, req)
	assert.Equal(t, "deepseek-chat", req["model"])
	assert.EqualValues(t, 300, req["max_tokens"])
	assert.InDelta(t, 0.7, req["temperature"], 1e-9)
}

func TestGenerateCallKeyOverridesConfigured(t *testing.T) {
	fake := &fakeService{}
	srv := httptest.NewServer(fake.handler(http.StatusOK, "Un chat.", 0))
	defer srv.Close()

	a := newAdapter(t, srv, WithAPIKey("configured"))
	assert.True(t, a.Enabled())

	a.Generate(context.Background(), []string{"chat"}, "")
	assert.Equal(t, "Bearer configured", fake.lastKey.Load())

	a.Generate(context.Background(), []string{"chat"}, "override")
	assert.Equal(t, "Bearer override", fake.lastKey.Load())
}

func TestGenerateFallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
		delay   time.Duration
	}{
		{"server error", http.StatusInternalServerError, "", 0},
		{"unauthorized", http.StatusUnauthorized, "", 0},
		{"empty content", http.StatusOK, "   ", 0},
		{"timeout", http.StatusOK, "Un chat.", 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeService{}
			srv := httptest.NewServer(fake.handler(tt.status, tt.content, tt.delay))
			defer srv.Close()

			a := newAdapter(t, srv, WithTimeout(50*time.Millisecond))
			res := a.Generate(context.Background(), []string{"chat", "maison"}, "sk-test")

			assert.Equal(t, SourceLocal, res.Source)
			assert.Len(t, res.Text.Blanks, 2)
			assert.Equal(t, int32(1), fake.calls.Load())
		})
	}
}

func TestGenerateTextWithAIUnreachableHost(t *testing.T) {
	a := New(localFactory(), morph.Default(), WithBaseURL("http://127.0.0.1:1/"), WithTimeout(time.Second))
	g := a.GenerateTextWithAI(context.Background(), []string{"ordinateur"}, "sk-test")
	require.Len(t, g.Blanks, 1)
	assert.Equal(t, "ordinateur", g.Blanks[0].OriginalWord)
}

func TestFindWordHonoursBoundaries(t *testing.T) {
	text := "Chaton, CHAT et chat-huant; l'été."

	s, ok := findWord(text, "chat", nil)
	require.True(t, ok)
	assert.Equal(t, "CHAT", text[s.start:s.end])

	s2, ok := findWord(text, "chat", []span{s})
	require.True(t, ok)
	assert.Equal(t, "chat", text[s2.start:s2.end])
	assert.Greater(t, s2.start, s.start)

	s3, ok := findWord(text, "été", nil)
	require.True(t, ok)
	assert.Equal(t, "été", text[s3.start:s3.end])

	_, ok = findWord(text, "ton", nil)
	assert.False(t, ok)
}

func TestPromptListsVariants(t *testing.T) {
	a := New(localFactory(), morph.Default())
	p := a.prompt([]string{"absent(e)", "table"})
	assert.Contains(t, p, "- absent (formes acceptées : absente, absents, absentes)")
	assert.Contains(t, p, "- table\n")
}
