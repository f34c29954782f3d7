// Package llm wraps the text generation providers used for interview
// question generation and answer scoring.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Providers
const (
	ProviderGemini    = "gemini"
	ProviderVertexAI  = "vertexai"
	ProviderAnthropic = "anthropic"
)

// Client generates text from a system instruction and a prompt
type Client interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Close() error
}

type Config struct {
	Provider string
	APIKey   string
	Model    string
	// Project and Location select the Vertex AI endpoint.
	Project  string
	Location string
	// MaxTokens caps the response length.
	MaxTokens int
}

// New returns the client for cfg.Provider
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return NewGemini(ctx, cfg)
	case ProviderVertexAI:
		return NewVertexAI(ctx, cfg)
	case ProviderAnthropic:
		return NewAnthropic(cfg)
	}
	return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
}

// ExtractJSON strips markdown code fences and surrounding prose, returning
// the outermost JSON object or array in s.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

func maxTokens(cfg Config) int {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return 2048
}
