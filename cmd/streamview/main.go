// Command streamview sends one prompt to an agent runtime and renders
// the streamed turn live: text blocks, tool invocations with status,
// transfer notices and a final metadata footer.
//
// Configuration comes from the environment:
//
//	AGENT_RUNTIME_URL   runtime invocation URL (required)
//	AGENT_BEARER_TOKEN  bearer token for the runtime (required)
//	AGENT_ENDPOINT      endpoint qualifier (optional)
//
// The prompt is the joined command-line arguments.
package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	transcript "github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/core/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	invokeURL := os.Getenv("AGENT_RUNTIME_URL")
	if invokeURL == "" {
		return fmt.Errorf("AGENT_RUNTIME_URL is not set")
	}
	token := os.Getenv("AGENT_BEARER_TOKEN")
	if token == "" {
		return fmt.Errorf("AGENT_BEARER_TOKEN is not set")
	}

	prompt := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if prompt == "" {
		return fmt.Errorf("usage: streamview <prompt>")
	}

	clientOpts := []transport.ClientOption{
		transport.WithTokenSource(transport.StaticTokenSource(token)),
	}
	if endpoint := os.Getenv("AGENT_ENDPOINT"); endpoint != "" {
		clientOpts = append(clientOpts, transport.WithEndpoint(endpoint))
	}

	session := transcript.NewSession(
		transcript.WithClient(transport.NewClient(invokeURL, clientOpts...)),
	)

	p := tea.NewProgram(newModel(session, prompt), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}
	return nil
}
