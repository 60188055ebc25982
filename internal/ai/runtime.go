package ai

import "context"

// Runtime is implemented by chat backends such as OpenRouter and a local
// Ollama. It is the LLM connector behind the dashboard chat.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// StreamRuntime is an optional extension that supports streaming output.
// Implementors should invoke onDelta with each partial content chunk.
type StreamRuntime interface {
	GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
)

// NormalizeProvider maps user spellings onto a provider identifier.
// It returns "" for unknown providers.
func NormalizeProvider(name string) string {
	switch name {
	case "openrouter", "OpenRouter", "OPENROUTER":
		return ProviderOpenRouter
	case "ollama", "Ollama", "local", "LOCAL":
		return ProviderOllama
	}
	return ""
}
