package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter" or
	// "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig also serves OpenAI-compatible APIs through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // default https://openrouter.ai/api/v1
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the provider defaults used by the draft command.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// envBinding maps one MATHLINGO_* variable onto a Config field.
type envBinding struct {
	name string
	set  func(*Config, string)
}

var envBindings = []envBinding{
	{"MATHLINGO_LLM_PROVIDER", func(c *Config, v string) { c.Provider = v }},
	{"MATHLINGO_ANTHROPIC_API_KEY", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"MATHLINGO_ANTHROPIC_MODEL", func(c *Config, v string) { c.Anthropic.Model = v }},
	{"MATHLINGO_OPENAI_API_KEY", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"MATHLINGO_OPENAI_MODEL", func(c *Config, v string) { c.OpenAI.Model = v }},
	{"MATHLINGO_OPENAI_BASE_URL", func(c *Config, v string) { c.OpenAI.BaseURL = v }},
	{"MATHLINGO_GEMINI_API_KEY", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"MATHLINGO_GEMINI_MODEL", func(c *Config, v string) { c.Gemini.Model = v }},
	{"MATHLINGO_OPENROUTER_API_KEY", func(c *Config, v string) { c.OpenRouter.APIKey = v }},
	{"MATHLINGO_OPENROUTER_MODEL", func(c *Config, v string) { c.OpenRouter.Model = v }},
}

// ConfigFromEnv builds a Config from MATHLINGO_* environment variables on
// top of DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			b.set(&cfg, v)
		}
	}
	return cfg
}

// WithOverrides applies the llm section of the application config. Empty
// values keep what the environment or the defaults chose.
func (c Config) WithOverrides(provider, model string, timeout time.Duration) Config {
	if provider != "" {
		c.Provider = provider
	}
	if timeout > 0 {
		c.Timeout = timeout
	}
	if model == "" {
		return c
	}
	switch c.Provider {
	case "anthropic":
		c.Anthropic.Model = model
	case "openai":
		c.OpenAI.Model = model
	case "gemini":
		c.Gemini.Model = model
	case "openrouter":
		c.OpenRouter.Model = model
	}
	return c
}

// DiscoverConfig checks the vendors' standard key variables (Gemini, then
// OpenAI, Anthropic and OpenRouter) and configures the first provider
// found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	return Config{}, false
}

// HasKey reports whether the selected provider has credentials.
func (c Config) HasKey() bool {
	return c.Validate() == nil
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "anthropic":
		key, env = c.Anthropic.APIKey, "MATHLINGO_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "MATHLINGO_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "MATHLINGO_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "MATHLINGO_OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
