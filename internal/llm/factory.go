package llm

import (
	"fmt"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/llm/ollama"
	"github.com/tahcohcat/healplay/internal/llm/openai"
)

type Provider string

const (
	ProviderNone   Provider = "none"
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// NewLLMClient creates the client selected by llm.provider. Provider "none"
// (or empty) returns a nil client.
func NewLLMClient(cfg *config.Config) (LLM, error) {
	switch Provider(cfg.LLM.Provider) {
	case ProviderNone, "":
		return nil, nil
	case ProviderOllama:
		return ollama.NewClient(&cfg.Ollama)
	case ProviderOpenAI:
		return openai.NewClient(&cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
