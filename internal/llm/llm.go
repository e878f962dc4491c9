package llm

import "context"

// Provider is a single text-generation backend. Generate returns the raw
// reply text for a fully built prompt; any failure (transport, timeout,
// malformed payload) is an error the chain converts into fallback
// advancement.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	maxReplyTokens = 150
	temperature    = 0.7
)
