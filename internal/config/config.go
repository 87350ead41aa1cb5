// Package config loads gateway configuration from defaults, an optional YAML
// file, and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"answer-gateway/internal/provider"
)

// ConfigFileEnv names the environment variable holding the config file path.
const ConfigFileEnv = "GATEWAY_CONFIG"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Context    ContextConfig    `yaml:"context"`
	Simulation SimulationConfig `yaml:"simulation"`
	AWS        AWSConfig        `yaml:"aws"`
}

type ServerConfig struct {
	Addr               string   `yaml:"addr" env:"ADDR"`
	LogLevel           string   `yaml:"log_level" env:"LOG_LEVEL"`
	Diagnostics        bool     `yaml:"diagnostics" env:"DIAGNOSTICS"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
}

type ProvidersConfig struct {
	Preferred string          `yaml:"preferred" env:"AI_PROVIDER"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Model   string `yaml:"model" env:"OPENAI_MODEL"`
	UIModel string `yaml:"ui_model" env:"OPENAI_UI_MODEL"`
}

type AnthropicConfig struct {
	APIKey  string `yaml:"api_key" env:"ANTHROPIC_API_KEY"`
	BaseURL string `yaml:"base_url" env:"ANTHROPIC_BASE_URL"`
	Model   string `yaml:"model" env:"ANTHROPIC_MODEL"`
}

type ContextConfig struct {
	APIKey     string        `yaml:"api_key" env:"CONTEXT7_API_KEY"`
	BaseURL    string        `yaml:"base_url" env:"CONTEXT7_BASE_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"CONTEXT7_TIMEOUT"`
	LibraryIDs []string      `yaml:"library_ids" env:"CONTEXT7_LIBRARY_IDS"`
	CacheTable string        `yaml:"cache_table" env:"CONTEXT_CACHE_TABLE"`
	CacheTTL   time.Duration `yaml:"cache_ttl" env:"CONTEXT_CACHE_TTL"`
}

type SimulationConfig struct {
	WordDelay       time.Duration `yaml:"word_delay" env:"SIMULATED_WORD_DELAY"`
	WithoutProvider bool          `yaml:"without_provider" env:"SIMULATE_WITHOUT_PROVIDER"`
}

type AWSConfig struct {
	ParamPrefix string `yaml:"param_prefix" env:"PARAM_PREFIX"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:               ":3000",
			LogLevel:           "info",
			CORSAllowedOrigins: []string{"*"},
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				Model:   "gpt-4o-mini",
				UIModel: "gpt-4o",
			},
			Anthropic: AnthropicConfig{
				Model: "claude-3-5-sonnet-20241022",
			},
		},
		Context: ContextConfig{
			BaseURL:  "https://api.context7.com",
			Timeout:  3 * time.Second,
			CacheTTL: time.Hour,
		},
		Simulation: SimulationConfig{
			WordDelay:       50 * time.Millisecond,
			WithoutProvider: true,
		},
	}
}

// Load layers defaults, the YAML file at path (or $GATEWAY_CONFIG), and
// environment variables, then validates the result. An empty path with no
// $GATEWAY_CONFIG skips the file.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the gateway cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if p := strings.TrimSpace(c.Providers.Preferred); p != "" {
		if _, err := provider.ParseID(p); err != nil {
			errs = append(errs, fmt.Errorf("providers.preferred: %w", err))
		}
	}
	if c.Providers.OpenAI.Model == "" || c.Providers.OpenAI.UIModel == "" {
		errs = append(errs, errors.New("providers.openai models must not be empty"))
	}
	if c.Providers.Anthropic.Model == "" {
		errs = append(errs, errors.New("providers.anthropic.model must not be empty"))
	}
	if c.Context.Timeout <= 0 {
		errs = append(errs, errors.New("context.timeout must be positive"))
	}
	if c.Context.CacheTable != "" && c.Context.CacheTTL <= 0 {
		errs = append(errs, errors.New("context.cache_ttl must be positive"))
	}
	if c.Simulation.WordDelay < 0 {
		errs = append(errs, errors.New("simulation.word_delay must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// SlogLevel parses Server.LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.Server.LogLevel))); err != nil {
		return 0, fmt.Errorf("server.log_level: %w", err)
	}
	return lvl, nil
}

// ProviderSettings projects the provider section onto resolver input.
// Validate must have accepted c.
func (c Config) ProviderSettings() provider.Settings {
	var preferred provider.ID
	if p := strings.TrimSpace(c.Providers.Preferred); p != "" {
		preferred, _ = provider.ParseID(p)
	}
	return provider.Settings{
		Preferred: preferred,
		Credentials: map[provider.ID]string{
			provider.OpenAI:    strings.TrimSpace(c.Providers.OpenAI.APIKey),
			provider.Anthropic: strings.TrimSpace(c.Providers.Anthropic.APIKey),
		},
		Models: map[provider.ID]provider.Models{
			provider.OpenAI: {
				Text:       c.Providers.OpenAI.Model,
				Structured: c.Providers.OpenAI.UIModel,
			},
			provider.Anthropic: {
				Text:       c.Providers.Anthropic.Model,
				Structured: c.Providers.Anthropic.Model,
			},
		},
	}
}
