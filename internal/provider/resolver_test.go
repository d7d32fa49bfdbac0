package provider

import (
	"testing"

	"github.com/tasktalk/tasktalk/internal/config"
)

func TestParseModelString(t *testing.T) {
	cases := []struct {
		in     string
		provID string
		model  string
	}{
		{"gemini/gemini-2.5-flash", "gemini", "gemini-2.5-flash"},
		{"openai/gpt-4o-mini", "openai", "gpt-4o-mini"},
		{"Gemini/gemini-2.5-pro", "gemini", "gemini-2.5-pro"},
		{"gpt-4o-mini", "", "gpt-4o-mini"},
		{"openrouter/meta/llama-3", "openrouter", "meta/llama-3"},
	}
	for _, tc := range cases {
		provID, model := ParseModelString(tc.in)
		if provID != tc.provID || model != tc.model {
			t.Fatalf("%q: got (%q, %q), want (%q, %q)", tc.in, provID, model, tc.provID, tc.model)
		}
	}
}

func TestResolveGemini(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers.Gemini.APIKey = "k"

	prov, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := prov.(*GeminiProvider); !ok {
		t.Fatalf("expected GeminiProvider, got %T", prov)
	}
}

func TestResolveOpenAI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model.Name = "openai/gpt-4o-mini"
	cfg.Providers.OpenAI.APIKey = "k"

	prov, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := prov.(*OpenAIProvider); !ok {
		t.Fatalf("expected OpenAIProvider, got %T", prov)
	}
	if prov.DefaultModel() != "gpt-4o-mini" {
		t.Fatalf("unexpected default model: %q", prov.DefaultModel())
	}
}

func TestResolveMissingKey(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := Resolve(cfg); err == nil {
		t.Fatal("expected error without API keys")
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Model.Name = "mystery/model-x"
	cfg.Providers.Gemini.APIKey = "k"

	if _, err := Resolve(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
