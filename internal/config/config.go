package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultOrg is the organization scope applied when none is configured.
const DefaultOrg = "canopus-dev"

// Config holds the gitsleuth API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	GitHub  GitHubConfig  `yaml:"github"`
	LLM     LLMConfig     `yaml:"llm"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// GitHubConfig holds GitHub access and search settings. Org is the
// organization scope appended to every search query.
type GitHubConfig struct {
	Org              string       `yaml:"org"`
	Token            string       `yaml:"token"`
	SearchTimeoutSec int          `yaml:"search_timeout_sec"` // bounds one aggregate fan-out, -1 disables
	Limits           SearchLimits `yaml:"limits"`
}

// SearchLimits holds per-category result caps.
type SearchLimits struct {
	Issues       int `yaml:"issues"`
	PullRequests int `yaml:"pull_requests"`
	Code         int `yaml:"code"`
	Commits      int `yaml:"commits"`
}

// LLMConfig holds language model provider settings. The API key for the
// anthropic provider arrives per request; APIKey here only serves the
// openai-compatible provider.
type LLMConfig struct {
	Provider   string `yaml:"provider"` // anthropic (default), openai
	Model      string `yaml:"model"`
	MaxTokens  int    `yaml:"max_tokens"`
	TimeoutSec int    `yaml:"timeout_sec"` // bounds one completion call, -1 disables
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Chat requests wait on two LLM calls plus the search fan-out.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.GitHub.Org == "" {
		c.GitHub.Org = DefaultOrg
	}
	if c.GitHub.SearchTimeoutSec == 0 {
		c.GitHub.SearchTimeoutSec = 30
	}
	if c.GitHub.Limits.Issues <= 0 {
		c.GitHub.Limits.Issues = 20
	}
	if c.GitHub.Limits.PullRequests <= 0 {
		c.GitHub.Limits.PullRequests = 20
	}
	if c.GitHub.Limits.Code <= 0 {
		c.GitHub.Limits.Code = 15
	}
	if c.GitHub.Limits.Commits <= 0 {
		c.GitHub.Limits.Commits = 10
	}
	c.LLM.ApplyDefaults()
}

// ApplyDefaults fills empty LLM fields with default values.
func (c *LLMConfig) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
	if c.Model == "" {
		c.Model = defaultModel(c.Provider)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 2048
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = 60
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "claude-sonnet-4-20250514"
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.LLM.Provider {
	case "anthropic", "openai":
		// ok
	default:
		return fmt.Errorf("llm.provider must be \"anthropic\" or \"openai\", got %q", c.LLM.Provider)
	}
	if c.LLM.Provider == "openai" && c.LLM.APIKey == "" && c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.api_key or llm.base_url is required for the openai provider")
	}
	if strings.ContainsAny(c.GitHub.Org, " \t\"") {
		return fmt.Errorf("github.org must be a bare organization login, got %q", c.GitHub.Org)
	}
	return nil
}

// SearchTimeout returns the aggregate fan-out deadline, 0 meaning none.
func (c *GitHubConfig) SearchTimeout() int {
	if c.SearchTimeoutSec < 0 {
		return 0
	}
	return c.SearchTimeoutSec
}

// Timeout returns the completion call deadline, 0 meaning none.
func (c *LLMConfig) Timeout() int {
	if c.TimeoutSec < 0 {
		return 0
	}
	return c.TimeoutSec
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
