package llm

import (
	"context"
)

// LLM is a text generation backend.
type LLM interface {
	// Generate answers prompt under the given system instructions.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// IsModelAvailable checks if the configured model is available
	IsModelAvailable(ctx context.Context) error
}
