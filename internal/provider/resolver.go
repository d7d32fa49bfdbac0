package provider

import (
	"fmt"
	"strings"

	"github.com/tasktalk/tasktalk/internal/config"
)

// ParseModelString splits a "provider/model" string into provider ID and
// model name. A bare model name yields an empty provider ID.
func ParseModelString(s string) (providerID, modelName string) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, "/", 2)
	if len(parts) < 2 {
		return "", s
	}
	return strings.ToLower(parts[0]), parts[1]
}

// Resolve creates the appropriate LLMProvider from config. The model name
// is "provider/model"; a bare model name falls back to whichever provider
// has an API key configured, preferring Gemini.
func Resolve(cfg *config.Config) (LLMProvider, error) {
	provID, model := ParseModelString(cfg.Model.Name)
	if provID == "" {
		if cfg.Providers.Gemini.APIKey != "" {
			provID = "gemini"
		} else if cfg.Providers.OpenAI.APIKey != "" {
			provID = "openai"
		} else {
			return nil, fmt.Errorf("no provider API key configured")
		}
	}

	switch provID {
	case "gemini", "google":
		if cfg.Providers.Gemini.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is not configured")
		}
		return NewGeminiProvider(cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.APIBase, model), nil
	case "openai", "openrouter":
		if cfg.Providers.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai API key is not configured")
		}
		return NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase, model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provID)
	}
}
