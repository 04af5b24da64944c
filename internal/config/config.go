// Package config loads zaica's own runtime knobs. Provider authentication
// and the HTTP/SSE transport are external collaborators (spec §1); this
// package only resolves the settings the core agentic loop, tool registry,
// and REPL consume directly.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds resolved runtime configuration.
type Config struct {
	Model    string `yaml:"model"`
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`

	MaxContextTokens  int `yaml:"max_context_tokens"`
	MaxIterations     int `yaml:"max_iterations"`
	SubAgentMaxIter   int `yaml:"subagent_max_iterations"`
	BashTimeoutSecs   int `yaml:"bash_timeout_seconds"`
	SpinnerIntervalMs int `yaml:"spinner_interval_ms"`

	Yolo     bool `yaml:"-"`
	Infinity bool `yaml:"-"`
}

// Default returns sensible defaults, grounded on the teacher's
// DefaultAgentConfig pattern (agent.go).
func Default() Config {
	return Config{
		Model:             "gpt-4o",
		Provider:          "openai",
		MaxContextTokens:  128000,
		MaxIterations:     50,
		SubAgentMaxIter:   50,
		BashTimeoutSecs:   30,
		SpinnerIntervalMs: 80,
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default}, ${VAR:?error}, and $VAR.
// Grounded on the teacher's loader.go pattern verbatim.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::(-|\?)([^}]*))?\}|\$([A-Z_][A-Z0-9_]*)`)

// LoadFile reads a YAML config file, expanding environment variables
// (loading any sibling .env file first) before parsing.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	expanded, err := expandEnvVars(string(data))
	if err != nil {
		return cfg, fmt.Errorf("expanding environment variables: %w", err)
	}

	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

func expandEnvVars(input string) (string, error) {
	var outerErr error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if groups[4] != "" {
			return os.Getenv(groups[4])
		}
		name, modifier, extra := groups[1], groups[2], groups[3]
		val, set := os.LookupEnv(name)
		switch {
		case set:
			return val
		case modifier == "-":
			return extra
		case modifier == "?":
			if outerErr == nil {
				outerErr = fmt.Errorf("required variable %s is not set: %s", name, extra)
			}
			return ""
		default:
			return ""
		}
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

// DumpJSON renders the resolved config for --dump-config.
func (c Config) DumpJSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ConfigDir returns ~/.config/zaica, honoring HOME per spec §6.
func ConfigDir() (string, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return "", fmt.Errorf("HOME is not set")
	}
	return filepath.Join(home, ".config", "zaica"), nil
}

// SessionsDir returns ~/.config/zaica/sessions.
func SessionsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// HistoryFile returns ~/.config/zaica/history.
func HistoryFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// SkillsDir returns ~/.config/zaica/skills.
func SkillsDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "skills"), nil
}

// ProjectSkillsDir returns ./.zaica/skills, which overrides user-global
// skills of the same name (spec §6).
func ProjectSkillsDir() string {
	return filepath.Join(".zaica", "skills")
}
