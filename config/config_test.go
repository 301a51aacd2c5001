package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, s.MaxIterations)
	assert.Equal(t, 3, s.MaxToolRounds)
	assert.Equal(t, 195.0, s.TempMinF)
	assert.Equal(t, 205.0, s.TempMaxF)
	assert.Equal(t, 12.0, s.RatioMin)
	assert.Equal(t, 18.0, s.RatioMax)
	assert.Equal(t, ":8080", s.ListenAddr)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AGENT_MAX_ITERATIONS", "5")
	t.Setenv("COFFEE_RATIO_MAX", "17")
	t.Setenv("PERCOLATE_MODEL", "deepseek-chat")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, s.MaxIterations)
	assert.Equal(t, 17.0, s.RatioMax)
	assert.Equal(t, "deepseek-chat", s.Model)
}

func TestLoadModelFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"provider: deepseek\nmodel: deepseek-chat\ntemperature: 0.3\nmax_tokens: 2000\n"), 0o644))

	mf, err := LoadModelFile(path)
	require.NoError(t, err)
	assert.Equal(t, "deepseek", mf.Provider)
	assert.Equal(t, "deepseek-chat", mf.Model)
	assert.Equal(t, 0.3, mf.Temperature)
	assert.Equal(t, 2000, mf.MaxTokens)
}

func TestLoadModelFileMissing(t *testing.T) {
	mf, err := LoadModelFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &ModelFile{}, mf)
}

func TestLoadModelFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed"), 0o644))

	_, err := LoadModelFile(path)
	assert.Error(t, err)
}

func TestMergeEnvWins(t *testing.T) {
	t.Setenv("PERCOLATE_TEMPERATURE", "0.9")

	s, err := Load()
	require.NoError(t, err)
	s.Model = "" // file should fill it
	s.Merge(&ModelFile{Provider: "openai", Model: "gpt-5.2", Temperature: 0.2, MaxTokens: 1000})

	assert.Equal(t, "openai", s.Provider)
	assert.Equal(t, "gpt-5.2", s.Model)
	assert.Equal(t, 0.9, s.Temperature, "environment value must win over file")
	assert.Equal(t, 1000, s.MaxTokens, "unset env falls back to file")
}

func TestResolveProvider(t *testing.T) {
	s := &Settings{Provider: "anthropic"}
	p, err := s.ResolveProvider()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p)

	s = &Settings{Model: "deepseek-chat"}
	p, err = s.ResolveProvider()
	require.NoError(t, err)
	assert.Equal(t, "deepseek", p, "provider inferred from model catalog")

	s = &Settings{AnthropicAPIKey: "sk-test"}
	p, err = s.ResolveProvider()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p, "provider inferred from available key")

	s = &Settings{}
	_, err = s.ResolveProvider()
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	s := &Settings{Provider: "openai"}
	_, _, _, err := s.NewClient()
	assert.Error(t, err)
}

func TestBounds(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	b := s.Bounds()
	assert.Equal(t, 195.0, b.TempMinF)
	assert.Equal(t, 96.0, b.TempMaxC)
	assert.Equal(t, 18.0, b.RatioMax)
}

func TestWorkflowConfig(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	s.MaxIterations = 4

	cfg := s.WorkflowConfig("openai", "gpt-5.2", s.Logger())
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-5.2", cfg.Model)
	assert.Equal(t, 4, cfg.MaxIterations)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.7, *cfg.Temperature)
}
