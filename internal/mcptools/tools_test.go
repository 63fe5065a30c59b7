package mcptools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicteeclash/internal/morph"
	"dicteeclash/internal/textgen"
	"dicteeclash/internal/wordlist"
)

func newTools() *Tools {
	lib := textgen.DefaultLibrary()
	return &Tools{
		Detector: wordlist.DefaultDetector(),
		NewLocal: func() textgen.Generator {
			return textgen.New(lib, morph.Default(), nil)
		},
	}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestExtractWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mots.txt")
	require.NoError(t, os.WriteFile(path, []byte("chat\nmaison\nécole\n"), 0o644))

	res, err := newTools().handleExtractWords(context.Background(), call(map[string]any{"path": path}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var got wordlist.ImportResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, []string{"chat", "maison", "école"}, got.Words)
}

func TestExtractWordsErrors(t *testing.T) {
	tools := newTools()
	unsupported := filepath.Join(t.TempDir(), "mots.xyz")
	require.NoError(t, os.WriteFile(unsupported, []byte("chat"), 0o644))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing path", map[string]any{}, "path is required"},
		{"no such file", map[string]any{"path": filepath.Join(t.TempDir(), "absent.txt")}, "Error opening file"},
		{"unsupported", map[string]any{"path": unsupported}, ".txt, .docx, .doc, .odt, .pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tools.handleExtractWords(context.Background(), call(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestGenerateDictation(t *testing.T) {
	res, err := newTools().handleGenerateDictation(context.Background(), call(map[string]any{
		"words":  "chat, maison\nécole",
		"use_ai": true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got textgen.GeneratedText
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	require.Len(t, got.Blanks, 3)
	for _, b := range got.Blanks {
		assert.True(t, strings.HasPrefix(got.FullText[b.Position:], b.Word), "blank %q at %d", b.Word, b.Position)
	}

	res, err = newTools().handleGenerateDictation(context.Background(), call(map[string]any{"words": " , "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestSpellingChoiceAndVariants(t *testing.T) {
	tools := newTools()

	res, err := tools.handleSpellingChoice(context.Background(), call(map[string]any{"word": "ordinateur"}))
	require.NoError(t, err)
	var choice morph.SpellingChoice
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &choice))
	assert.Equal(t, "ordinateur", choice.Correct)
	assert.NotEqual(t, choice.Correct, choice.Wrong)

	res, err = tools.handleWordVariants(context.Background(), call(map[string]any{"word": "ami(e)"}))
	require.NoError(t, err)
	var variants []string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &variants))
	assert.Contains(t, variants, "amie")

	res, err = tools.handleWordVariants(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestWordVariantsDescriptionExamplesExpand(t *testing.T) {
	examples := regexp.MustCompile(`'([^']+)'`).FindAllStringSubmatch(wordVariantsDescription, -1)
	require.NotEmpty(t, examples)
	for _, m := range examples {
		assert.Greater(t, len(morph.Default().WordVariants(m[1])), 1, "example %q has no variants", m[1])
	}
}

func TestSplitWords(t *testing.T) {
	assert.Equal(t, []string{"chat", "chien", "oiseau"}, splitWords("chat, chien;\n oiseau ,"))
	assert.Empty(t, splitWords(""))
}
