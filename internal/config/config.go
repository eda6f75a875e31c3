package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	// DBPath overrides the default SQLite location. Empty means
	// store.DefaultDBPath.
	DBPath string `mapstructure:"db_path"`

	// TemplatesDir holds the per-chapter template and question feeds.
	// Empty means the built-in fallback set is served.
	TemplatesDir string `mapstructure:"templates_dir"`

	// Chapters lists the chapter ids to load, in learning-path order.
	Chapters []string `mapstructure:"chapters"`

	// LogMode is "dev" or "prod".
	LogMode string `mapstructure:"log_mode"`

	Engine EngineConfig `mapstructure:"engine"`
	Server ServerConfig `mapstructure:"server"`
	LLM    LLMConfig    `mapstructure:"llm"`
}

// EngineConfig controls question generation and selection.
type EngineConfig struct {
	FreeInputEnabled      bool   `mapstructure:"free_input_enabled"`
	BatchSize             int    `mapstructure:"batch_size"`
	MaxRegenerateAttempts int    `mapstructure:"max_regenerate_attempts"`
	GateReviewSchedule    bool   `mapstructure:"gate_review_schedule"`
	Seed                  uint64 `mapstructure:"seed"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	GinMode string `mapstructure:"gin_mode"`

	// CORSOrigins are the browser origins allowed to call the API. Empty
	// disables CORS headers.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LLMConfig selects the provider used for template drafting. API keys are
// read from the environment by the llm package.
type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DefaultChapters is the learning path shipped with the application.
var DefaultChapters = []string{"chapter_1", "chapter_2", "chapter_3", "chapter_4", "chapter_5"}

// EnvPrefix is the prefix for environment overrides, e.g.
// MATHLINGO_ENGINE_BATCH_SIZE.
const EnvPrefix = "MATHLINGO"

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("templates_dir", "")
	v.SetDefault("chapters", DefaultChapters)
	v.SetDefault("log_mode", "dev")
	v.SetDefault("engine.free_input_enabled", false)
	v.SetDefault("engine.batch_size", 10)
	v.SetDefault("engine.max_regenerate_attempts", 5)
	v.SetDefault("engine.gate_review_schedule", false)
	v.SetDefault("engine.seed", 0)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.cors_origins", []string{"http://localhost:4200"})
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout", "60s")
}

// Default returns the configuration with only defaults applied.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from configFile (when non-empty) or from
// mathlingo.yaml in the working directory or $XDG_CONFIG_HOME/mathlingo,
// then applies MATHLINGO_* environment overrides.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("mathlingo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := configHome(); dir != "" {
			v.AddConfigPath(filepath.Join(dir, "mathlingo"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if len(c.Chapters) == 0 {
		return fmt.Errorf("config: chapters must not be empty")
	}
	if c.Engine.BatchSize <= 0 {
		return fmt.Errorf("config: engine.batch_size must be positive, got %d", c.Engine.BatchSize)
	}
	if c.Engine.MaxRegenerateAttempts < 0 {
		return fmt.Errorf("config: engine.max_regenerate_attempts must not be negative, got %d", c.Engine.MaxRegenerateAttempts)
	}
	return nil
}

func configHome() string {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
