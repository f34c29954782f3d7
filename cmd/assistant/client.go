package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

const systemPromptTemplate = `You are a recruiting assistant for hiring managers and HR staff.
You answer questions about candidates' interview progress using the tools below and never invent data.

TOOLS:
- interview_lookup: application status plus every live interview (mode, status, schedule, scores)
- ai_quota_check: how many AI interviews an application has used and whether another is allowed
- interview_questions: generate and store questions for an AI interview
- scorecard_export: write completed interview scorecards of a job to Google Sheets%s

RULES:
1. Use interview_lookup before commenting on an application.
2. Check ai_quota_check before suggesting another AI interview.
3. Only call interview_questions when asked to prepare questions.
4. If a tool fails, explain the error plainly and suggest the next step.`

const maxToolRounds = 10

// Client bridges a Gemini chat to the interview service's MCP tools
type Client struct {
	session *mcp.ClientSession
	gemini  *genai.Client
	model   *genai.GenerativeModel
	tools   []*mcp.Tool
}

// Options configure NewClient
type Options struct {
	Endpoint string
	Token    string
	APIKey   string
	Model    string
	SheetsID string
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))

	mcpClient := mcp.NewClient(&mcp.Implementation{Name: "recruito-assistant", Version: "0.1.0"}, nil)
	session, err := mcpClient.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   opts.Endpoint,
		HTTPClient: httpClient,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", opts.Endpoint, err)
	}

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("list tools: %w", err)
	}

	gemini, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("gemini: %w", err)
	}

	model := gemini.GenerativeModel(opts.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt(opts.SheetsID))}}
	model.Tools = geminiTools(listed.Tools)

	return &Client{session: session, gemini: gemini, model: model, tools: listed.Tools}, nil
}

func systemPrompt(sheetsID string) string {
	if sheetsID == "" {
		return fmt.Sprintf(systemPromptTemplate, "")
	}
	return fmt.Sprintf(systemPromptTemplate, fmt.Sprintf(
		"\n\nFor scorecard_export always use spreadsheet_id %q unless the user names another one.", sheetsID))
}

func (c *Client) Close() error {
	return errors.Join(c.gemini.Close(), c.session.Close())
}

// Ask runs one user request to completion and returns the model's final answer
func (c *Client) Ask(ctx context.Context, query string, progress func(string)) (string, error) {
	chat := c.model.StartChat()
	parts := []genai.Part{genai.Text(query)}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := chat.SendMessage(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("gemini: %w", err)
		}

		var (
			text      strings.Builder
			responses []genai.Part
		)
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				switch p := part.(type) {
				case genai.FunctionCall:
					progress(p.Name)
					responses = append(responses, genai.FunctionResponse{
						Name:     p.Name,
						Response: c.callTool(ctx, p.Name, p.Args),
					})
				case genai.Text:
					text.WriteString(string(p))
				}
			}
		}

		if len(responses) > 0 {
			parts = responses
			continue
		}
		if text.Len() > 0 {
			return text.String(), nil
		}
		if len(resp.Candidates) == 0 {
			return "", errors.New("gemini returned no candidates")
		}
	}
	return "", fmt.Errorf("no answer after %d tool rounds", maxToolRounds)
}

// callTool never fails: errors become part of the function response so the
// model can explain them.
func (c *Client) callTool(ctx context.Context, name string, args map[string]any) map[string]any {
	if args == nil {
		args = map[string]any{}
	}

	callCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	res, err := c.session.CallTool(callCtx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return toolResponse(res)
}

func toolResponse(res *mcp.CallToolResult) map[string]any {
	var texts []string
	for _, content := range res.Content {
		if t, ok := content.(*mcp.TextContent); ok {
			texts = append(texts, t.Text)
		}
	}

	out := map[string]any{}
	if res.IsError {
		out["error"] = strings.Join(texts, "\n")
		return out
	}
	if res.StructuredContent != nil {
		out["result"] = res.StructuredContent
	} else if len(texts) > 0 {
		out["result"] = strings.Join(texts, "\n")
	} else {
		out["result"] = "ok"
	}
	return out
}
