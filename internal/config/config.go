// Package config provides configuration types and loading for tasktalk.
package config

// Config is the root configuration struct.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Model     ModelConfig     `json:"model"`
	Providers ProvidersConfig `json:"providers"`
	Server    ServerConfig    `json:"server"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	DataDir string `json:"dataDir" envconfig:"DATA_DIR"`
}

// ModelConfig groups LLM model and conversation settings.
type ModelConfig struct {
	// Name is "provider/model", e.g. "gemini/gemini-2.5-flash".
	Name          string  `json:"name" envconfig:"NAME"`
	MaxTokens     int     `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature   float64 `json:"temperature" envconfig:"TEMPERATURE"`
	HistoryWindow int     `json:"historyWindow" envconfig:"HISTORY_WINDOW"`
}

// ProvidersConfig contains LLM provider configurations.
type ProvidersConfig struct {
	Gemini ProviderConfig `json:"gemini"`
	OpenAI ProviderConfig `json:"openai"`
}

// ProviderConfig contains settings for a single LLM provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	APIBase string `json:"apiBase,omitempty" envconfig:"API_BASE"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `json:"host" envconfig:"HOST"`
	Port int    `json:"port" envconfig:"PORT"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name:          "gemini/gemini-2.5-flash",
			MaxTokens:     1024,
			Temperature:   0.7,
			HistoryWindow: 10,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
	}
}
