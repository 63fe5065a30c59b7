package main

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"dicteeclash/internal/config"
	"dicteeclash/internal/mcptools"
	"dicteeclash/internal/morph"
	"dicteeclash/internal/service"
	"dicteeclash/internal/textgen"
	"dicteeclash/internal/textgen/remote"
	"dicteeclash/internal/wordlist"
)

func main() {
	// stdout carries the protocol
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	library := textgen.DefaultLibrary()
	tools := &mcptools.Tools{
		Detector: wordlist.DefaultDetector(),
		NewLocal: service.LocalGenerator(library),
		Adapter: remote.New(service.LocalGenerator(library), morph.Default(),
			remote.WithAPIKey(cfg.SynthesisAPIKey),
			remote.WithBaseURL(cfg.SynthesisBaseURL),
			remote.WithModel(cfg.SynthesisModel),
			remote.WithTimeout(cfg.SynthesisTimeout),
		),
	}

	s := server.NewMCPServer(
		"DictéeClash",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	tools.Register(s)

	log.Println("Starting DictéeClash MCP Server...")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
