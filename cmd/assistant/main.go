// Command assistant is a Gemini-backed chat over the interview service's MCP tools.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := optionsFromEnv(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "assistant:", err)
		os.Exit(1)
	}

	client, err := NewClient(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "assistant:", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	fmt.Printf("Connected to %s with %d tools\n", opts.Endpoint, len(client.tools))

	progress := func(tool string) { fmt.Printf("  [%s]\n", tool) }

	if len(os.Args) > 1 {
		answer, err := client.Ask(ctx, strings.Join(os.Args[1:], " "), progress)
		if err != nil {
			fmt.Fprintln(os.Stderr, "assistant:", err)
			os.Exit(1)
		}
		fmt.Println(answer)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "quit", "exit", "q":
			return
		}

		answer, err := client.Ask(ctx, input, progress)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(answer)
	}
}

func optionsFromEnv(getenv func(string) string) (Options, error) {
	opts := Options{
		Endpoint: getenv("MCP_URL"),
		Token:    getenv("RECRUITO_TOKEN"),
		APIKey:   getenv("GEMINI_API_KEY"),
		Model:    getenv("GEMINI_MODEL"),
		SheetsID: getenv("GOOGLE_SHEETS_ID"),
	}
	if opts.APIKey == "" {
		opts.APIKey = getenv("GOOGLE_API_KEY")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "http://localhost:8080"
	}
	if !strings.HasSuffix(opts.Endpoint, "/mcp/stream") {
		opts.Endpoint = strings.TrimSuffix(opts.Endpoint, "/") + "/mcp/stream"
	}

	var missing []string
	if opts.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if opts.Token == "" {
		missing = append(missing, "RECRUITO_TOKEN")
	}
	if len(missing) > 0 {
		return Options{}, fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	return opts, nil
}
