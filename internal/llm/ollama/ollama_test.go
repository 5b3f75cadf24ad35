package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"

	"github.com/tahcohcat/healplay/config"
)

func TestGenerate(t *testing.T) {
	var got api.GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(api.GenerateResponse{Model: "llama-test", Response: `{"feedback":"Well noticed"}`, Done: true})
		case "/api/tags":
			json.NewEncoder(w).Encode(api.ListResponse{Models: []api.ListModelResponse{{Name: "llama-test"}}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewClient(&config.OllamaConfig{Host: srv.URL, Model: "llama-test", Timeout: 5})
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.Generate(context.Background(), "be kind", "I felt calmer")
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"feedback":"Well noticed"}` {
		t.Fatalf("out = %s", out)
	}
	if got.System != "be kind" || got.Prompt != "I felt calmer" || got.Model != "llama-test" {
		t.Fatalf("request = %+v", got)
	}

	if err := c.IsModelAvailable(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestInvalidHost(t *testing.T) {
	if _, err := NewClient(&config.OllamaConfig{Host: "://bad"}); err == nil {
		t.Fatal("expected error")
	}
}
