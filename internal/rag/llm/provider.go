package llm

import "context"

// Reply is one finished generation, after any tool rounds have settled.
type Reply struct {
	Answer    string
	ToolsUsed []string
}

type Provider interface {
	Generate(ctx context.Context, query string, matches []string, messageHistory []string) (Reply, error)
}
