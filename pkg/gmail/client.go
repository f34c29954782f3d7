package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client sends mail as a delegated Gmail user
type Client struct {
	service *gmail.Service
	sender  string
}

type Config struct {
	// CredentialsPath is the OAuth client secret JSON.
	CredentialsPath string
	// TokenPath holds a previously authorized token with a refresh token.
	TokenPath string
	// Sender is the From address; the authorized account must own it.
	Sender string
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.CredentialsPath == "" || cfg.TokenPath == "" {
		return nil, fmt.Errorf("gmail: credentials and token paths are required")
	}

	b, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("gmail: read credentials: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("gmail: parse credentials: %w", err)
	}

	tok, err := tokenFromFile(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("gmail: read token: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &Client{service: service, sender: cfg.Sender}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// Send delivers a plain text message
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	raw := BuildMessage(c.sender, to, subject, body)
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	if _, err := c.service.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail: send to %s: %w", to, err)
	}
	return nil
}

// BuildMessage renders an RFC 5322 plain text message
func BuildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	if from != "" {
		b.WriteString("From: " + from + "\r\n")
	}
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
