package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".tasktalk"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("TASKTALK_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := resolveHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := resolveHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

func resolveHomeDir() (string, error) {
	if h := strings.TrimSpace(os.Getenv("TASKTALK_HOME")); h != "" {
		if strings.HasPrefix(h, "~") {
			base, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(base, h[1:]), nil
		}
		return h, nil
	}
	return os.UserHomeDir()
}

// Load reads the config file (if present), then applies environment
// variable overrides per group.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Export KEY=VALUE pairs from an env file before reading the process
	// environment so both paths below see them.
	applyEnvFile()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil // use defaults if we can't find a config path
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	envconfig.Process("TASKTALK_PATHS", &cfg.Paths)
	envconfig.Process("TASKTALK_MODEL", &cfg.Model)
	envconfig.Process("TASKTALK_GEMINI", &cfg.Providers.Gemini)
	envconfig.Process("TASKTALK_OPENAI", &cfg.Providers.OpenAI)
	envconfig.Process("TASKTALK_SERVER", &cfg.Server)

	// Fallback to conventional provider key variables.
	if cfg.Providers.Gemini.APIKey == "" {
		cfg.Providers.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Providers.OpenAI.APIKey == "" {
		cfg.Providers.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if cfg.Paths.DataDir == "" {
		if home, err := resolveHomeDir(); err == nil {
			cfg.Paths.DataDir = filepath.Join(home, ConfigDir)
		} else {
			cfg.Paths.DataDir = "."
		}
	}
	if strings.HasPrefix(cfg.Paths.DataDir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Paths.DataDir = filepath.Join(home, cfg.Paths.DataDir[1:])
		}
	}

	if cfg.Model.HistoryWindow <= 0 {
		cfg.Model.HistoryWindow = 10
	}
	if cfg.Model.MaxTokens <= 0 {
		cfg.Model.MaxTokens = 1024
	}

	return cfg, nil
}

// Save writes the config to its canonical path, creating the directory if
// needed.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// DatabasePath returns the SQLite database location under the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "tasktalk.db")
}

// applyEnvFile exports variables from the first env file found, without
// overriding anything already set on the process. Candidates, in order:
// $TASKTALK_ENV_FILE, ~/.tasktalk/env, ./.env.
func applyEnvFile() {
	var candidates []string
	if explicit := strings.TrimSpace(os.Getenv("TASKTALK_ENV_FILE")); explicit != "" {
		candidates = append(candidates, explicit)
	}
	if home, err := resolveHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ConfigDir, "env"))
	}
	candidates = append(candidates, ".env")

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			line = strings.TrimPrefix(line, "export ")
			key, val, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			val = strings.TrimSpace(val)
			if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
				val = val[1 : len(val)-1]
			}
			if key == "" {
				continue
			}
			if _, exists := os.LookupEnv(key); exists {
				continue
			}
			os.Setenv(key, val)
		}
		return
	}
}
