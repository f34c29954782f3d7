package llm

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

const defaultVertexLocation = "us-central1"

// VertexAI calls Gemini models through Vertex AI with application default credentials
type VertexAI struct {
	client *genai.Client
	model  string
	tokens int32
}

func NewVertexAI(ctx context.Context, cfg Config) (*VertexAI, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("llm: vertex ai project is required")
	}
	location := cfg.Location
	if location == "" {
		location = defaultVertexLocation
	}

	client, err := genai.NewClient(ctx, cfg.Project, location)
	if err != nil {
		return nil, fmt.Errorf("llm: create vertex ai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &VertexAI{client: client, model: model, tokens: int32(maxTokens(cfg))}, nil
}

func (v *VertexAI) Generate(ctx context.Context, system, prompt string) (string, error) {
	model := v.client.GenerativeModel(v.model)
	model.SetTemperature(0.2)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(v.tokens)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("llm: vertex ai generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("llm: no response candidates returned")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func (v *VertexAI) Close() error {
	return v.client.Close()
}
