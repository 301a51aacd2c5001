// Package config is the process-wide settings layer: environment variables,
// the optional model_config.yaml file, and construction of the model client.
// It is loaded once at startup and handed to the workflow as read-only
// values; the coordinator itself never touches credentials or the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/martinemde/percolate/coffee"
	"github.com/martinemde/percolate/llm"
	"github.com/martinemde/percolate/workflow"
)

// Settings holds everything configurable from the environment.
type Settings struct {
	// Provider credentials. At least one key must be set to build a client.
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	DeepSeekAPIKey  string `env:"DEEPSEEK_API_KEY"`

	// Model selection. Empty values fall back to the model config file,
	// then to the provider's latest catalog entry.
	Provider    string  `env:"PERCOLATE_PROVIDER"`
	Model       string  `env:"PERCOLATE_MODEL"`
	Temperature float64 `env:"PERCOLATE_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"PERCOLATE_MAX_TOKENS" envDefault:"4000"`

	// Agent behavior.
	MaxIterations int `env:"AGENT_MAX_ITERATIONS" envDefault:"3"`
	MaxToolRounds int `env:"AGENT_MAX_TOOL_ROUNDS" envDefault:"3"`

	// Coffee domain bounds.
	TempMinF float64 `env:"COFFEE_TEMP_MIN_F" envDefault:"195"`
	TempMaxF float64 `env:"COFFEE_TEMP_MAX_F" envDefault:"205"`
	TempMinC float64 `env:"COFFEE_TEMP_MIN_C" envDefault:"90"`
	TempMaxC float64 `env:"COFFEE_TEMP_MAX_C" envDefault:"96"`
	RatioMin float64 `env:"COFFEE_RATIO_MIN" envDefault:"12"`
	RatioMax float64 `env:"COFFEE_RATIO_MAX" envDefault:"18"`

	// Server.
	ListenAddr string `env:"PERCOLATE_LISTEN_ADDR" envDefault:":8080"`

	// Logging.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// ModelFile mirrors model_config.yaml. Environment variables win over file
// values.
type ModelFile struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Load parses settings from the environment.
func Load() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &s, nil
}

// LoadModelFile reads a model_config.yaml. A missing file is not an error;
// it returns a zero ModelFile.
func LoadModelFile(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ModelFile{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var mf ModelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &mf, nil
}

// Merge folds file values into the settings for every field the
// environment left unset.
func (s *Settings) Merge(mf *ModelFile) {
	if mf == nil {
		return
	}
	if s.Provider == "" {
		s.Provider = mf.Provider
	}
	if s.Model == "" {
		s.Model = mf.Model
	}
	if os.Getenv("PERCOLATE_TEMPERATURE") == "" && mf.Temperature != 0 {
		s.Temperature = mf.Temperature
	}
	if os.Getenv("PERCOLATE_MAX_TOKENS") == "" && mf.MaxTokens != 0 {
		s.MaxTokens = mf.MaxTokens
	}
}

// Bounds returns the coffee validation bounds.
func (s *Settings) Bounds() coffee.Bounds {
	return coffee.Bounds{
		TempMinF: s.TempMinF,
		TempMaxF: s.TempMaxF,
		TempMinC: s.TempMinC,
		TempMaxC: s.TempMaxC,
		RatioMin: s.RatioMin,
		RatioMax: s.RatioMax,
	}
}

// apiKeyFor returns the configured key for a provider name.
func (s *Settings) apiKeyFor(provider string) string {
	switch provider {
	case "openai":
		return s.OpenAIAPIKey
	case "anthropic":
		return s.AnthropicAPIKey
	case "deepseek":
		return s.DeepSeekAPIKey
	}
	return ""
}

// ResolveProvider picks the provider: explicit setting, else inferred from
// the model id, else the first provider with a configured key.
func (s *Settings) ResolveProvider() (string, error) {
	if s.Provider != "" {
		return s.Provider, nil
	}
	if s.Model != "" {
		if info := llm.GetModelInfo(s.Model); info != nil {
			return info.Provider, nil
		}
	}
	for _, p := range []string{"openai", "anthropic", "deepseek"} {
		if s.apiKeyFor(p) != "" {
			return p, nil
		}
	}
	return "", fmt.Errorf("no provider configured: set PERCOLATE_PROVIDER or one of OPENAI_API_KEY, ANTHROPIC_API_KEY, DEEPSEEK_API_KEY")
}

// NewClient builds the model client from the settings. The workflow layer
// receives this as an opaque capability.
func (s *Settings) NewClient() (*llm.Client, string, string, error) {
	provider, err := s.ResolveProvider()
	if err != nil {
		return nil, "", "", err
	}

	key := s.apiKeyFor(provider)
	if key == "" {
		return nil, "", "", fmt.Errorf("no API key configured for provider %q", provider)
	}

	model := s.Model
	if model == "" {
		if info := llm.GetLatestModel(provider); info != nil {
			model = info.ID
		}
	}
	if model == "" {
		return nil, "", "", fmt.Errorf("no model configured for provider %q", provider)
	}

	adapter, err := llm.NewGollmAdapter(provider, key,
		llm.WithModel(model),
		llm.WithMaxTokens(s.MaxTokens),
		llm.WithTemperature(s.Temperature),
	)
	if err != nil {
		return nil, "", "", fmt.Errorf("build %s adapter: %w", provider, err)
	}

	client := llm.NewClient(
		llm.WithProvider(provider, adapter),
		llm.WithDefaultProvider(provider),
	)
	return client, provider, model, nil
}

// WorkflowConfig builds the coordinator configuration for one run.
func (s *Settings) WorkflowConfig(provider, model string, logger *slog.Logger) workflow.Config {
	cfg := workflow.DefaultConfig()
	cfg.Provider = provider
	cfg.Model = model
	temp := s.Temperature
	cfg.Temperature = &temp
	cfg.MaxTokens = s.MaxTokens
	cfg.MaxIterations = s.MaxIterations
	cfg.MaxToolRounds = s.MaxToolRounds
	cfg.Bounds = s.Bounds()
	cfg.Logger = logger
	return cfg
}

// Logger builds the process logger from the settings.
func (s *Settings) Logger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(s.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
