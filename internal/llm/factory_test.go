package llm

import (
	"testing"

	"github.com/tahcohcat/healplay/config"
)

func TestNewLLMClient(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "none"
	c, err := NewLLMClient(cfg)
	if err != nil || c != nil {
		t.Fatalf("none provider = %v, %v", c, err)
	}

	cfg.LLM.Provider = "openai"
	if _, err := NewLLMClient(cfg); err == nil {
		t.Fatal("openai without key should fail")
	}

	cfg.LLM.Provider = "bard"
	if _, err := NewLLMClient(cfg); err == nil {
		t.Fatal("unknown provider should fail")
	}
}
