// Package mcptools exposes word extraction and dictation synthesis as MCP
// tools, so assistants can prepare spelling exercises from documents.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"dicteeclash/internal/morph"
	"dicteeclash/internal/textgen"
	"dicteeclash/internal/textgen/remote"
	"dicteeclash/internal/wordlist"
)

const wordVariantsDescription = "List every accepted spelling of a word, including plural and feminine forms written as 'ami(e)'."

// Tools holds what the tool handlers need
type Tools struct {
	Detector *wordlist.Detector
	Adapter  *remote.Adapter
	NewLocal func() textgen.Generator
}

// Register adds every tool to s
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("extract_words",
			mcp.WithDescription("Extract the spelling words of a document (.txt, .docx, .doc, .odt, .pdf). Returns the words and any detected sections such as 'Liste 1'."),
			mcp.WithString("path",
				mcp.Required(),
				mcp.Description("Path of the document to read"),
			),
		),
		t.handleExtractWords,
	)

	s.AddTool(
		mcp.NewTool("generate_dictation",
			mcp.WithDescription("Write a short French text using the given words and return it with the byte offset of each word, plus a masked copy for fill-in-the-blanks."),
			mcp.WithString("words",
				mcp.Required(),
				mcp.Description("Words to use, separated by commas or new lines"),
			),
			mcp.WithBoolean("use_ai",
				mcp.Description("Ask the remote writer first, falling back to local templates"),
			),
		),
		t.handleGenerateDictation,
	)

	s.AddTool(
		mcp.NewTool("spelling_choice",
			mcp.WithDescription("Return a correct spelling of a word next to a plausible misspelling, in random order."),
			mcp.WithString("word",
				mcp.Required(),
				mcp.Description("The word to build a choice for"),
			),
		),
		t.handleSpellingChoice,
	)

	s.AddTool(
		mcp.NewTool("word_variants",
			mcp.WithDescription(wordVariantsDescription),
			mcp.WithString("word",
				mcp.Required(),
				mcp.Description("The word to expand"),
			),
		),
		t.handleWordVariants,
	)
}

func (t *Tools) handleExtractWords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error opening file: %v", err)), nil
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error reading file: %v", err)), nil
	}

	res, err := t.Detector.ExtractWordsFromFile(ctx, filepath.Base(path), f, info.Size())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error extracting words: %v", err)), nil
	}
	return jsonResult(res)
}

func (t *Tools) handleGenerateDictation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	words := splitWords(req.GetString("words", ""))
	if len(words) == 0 {
		return mcp.NewToolResultError("words is required"), nil
	}

	if req.GetBool("use_ai", false) && t.Adapter != nil {
		return jsonResult(t.Adapter.GenerateTextWithAI(ctx, words, ""))
	}
	return jsonResult(t.NewLocal().GenerateTextWithBlanks(words))
}

func (t *Tools) handleSpellingChoice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word := strings.TrimSpace(req.GetString("word", ""))
	if word == "" {
		return mcp.NewToolResultError("word is required"), nil
	}
	return jsonResult(morph.Default().SpellingChoice(word))
}

func (t *Tools) handleWordVariants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	word := strings.TrimSpace(req.GetString("word", ""))
	if word == "" {
		return mcp.NewToolResultError("word is required"), nil
	}
	return jsonResult(morph.Default().WordVariants(word))
}

func splitWords(s string) []string {
	var words []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == ';' }) {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(result)), nil
}
