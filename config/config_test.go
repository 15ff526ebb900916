package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/devcli/devcli/providers/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) (cwd string, home string) {
	t.Helper()
	cwd = t.TempDir()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OLLAMA_HOST", "")
	t.Setenv("DEVCLI_OLLAMA_BASE_URL", "")
	t.Setenv("DEVCLI_MAX_TOKENS", "")
	cfgFile = ""
	t.Cleanup(func() { cfgFile = "" })
	return cwd, home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigs_Defaults(t *testing.T) {
	cwd, _ := setupEnv(t)

	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.MaxTokens)
	assert.Equal(t, 4.0, cfg.CharsPerToken)
	assert.Equal(t, 8000, cfg.BudgetChars())
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "llama3.1", cfg.DefaultModel)
	assert.Empty(t, cfg.ConfigFile)
	assert.Contains(t, cfg.Models, "llama3.1")
	assert.Contains(t, cfg.Models, "deepseek-r1")
	assert.Equal(t, "deepseek-r1:7b", cfg.Models["deepseek-r1"].ModelName)
	assert.Equal(t, int64(100_000), cfg.MaxFileSize)
	assert.Contains(t, cfg.Extensions, ".go")
	assert.Contains(t, cfg.Extensions, ".md")
	assert.NotContains(t, cfg.Extensions, ".lock")
}

func TestLoadConfigs_ProjectFileMergesModels(t *testing.T) {
	cwd, _ := setupEnv(t)
	writeFile(t, filepath.Join(cwd, "devcli-config.yaml"), `
max_tokens: 500
default_model: qwen
project_ignore:
  - dist
models:
  qwen:
    provider: ollama
    model_name: qwen2.5-coder:7b
    temperature: 0.2
`)

	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.MaxTokens)
	assert.Equal(t, []string{"dist"}, cfg.ProjectIgnore)
	assert.Equal(t, filepath.Join(cwd, "devcli-config.yaml"), cfg.ConfigFile)
	require.Contains(t, cfg.Models, "qwen")
	require.NotNil(t, cfg.Models["qwen"].Temperature)
	assert.InDelta(t, 0.2, *cfg.Models["qwen"].Temperature, 0.0001)
	assert.Contains(t, cfg.Models, "llama3.1")
}

func TestLoadConfigs_UserFileFallback(t *testing.T) {
	cwd, home := setupEnv(t)
	writeFile(t, filepath.Join(home, ".devcli", "config.yaml"), "max_tokens: 750\n")

	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)
	assert.Equal(t, 750, cfg.MaxTokens)
}

func TestLoadConfigs_EnvOverridesFile(t *testing.T) {
	cwd, _ := setupEnv(t)
	writeFile(t, filepath.Join(cwd, "devcli-config.yaml"), "max_tokens: 500\n")
	t.Setenv("DEVCLI_MAX_TOKENS", "300")

	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.MaxTokens)
}

func TestLoadConfigs_InvalidValue(t *testing.T) {
	cwd, _ := setupEnv(t)
	writeFile(t, filepath.Join(cwd, "devcli-config.yaml"), "max_tokens: 0\n")

	_, err := LoadConfigs(nil, cwd)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "max_tokens", cfgErr.Field)
}

func TestValidate(t *testing.T) {
	cwd, _ := setupEnv(t)
	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)

	cfg.LogLevel = "loud"
	var cfgErr *ConfigError
	require.True(t, errors.As(cfg.Validate(), &cfgErr))
	assert.Equal(t, "log_level", cfgErr.Field)

	cfg.LogLevel = "debug"
	cfg.DefaultModel = "missing"
	require.True(t, errors.As(cfg.Validate(), &cfgErr))
	assert.Equal(t, "default_model", cfgErr.Field)
}

func TestResolveModel(t *testing.T) {
	cwd, _ := setupEnv(t)
	t.Setenv("OLLAMA_HOST", "127.0.0.1:9999")

	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)

	model, err := cfg.ResolveModel("")
	require.NoError(t, err)
	assert.Equal(t, "llama3.1", model.ModelName)
	assert.Equal(t, "http://127.0.0.1:9999", model.BaseURL)
	assert.Equal(t, cfg.RequestTimeout, model.Timeout)

	_, err = cfg.ResolveModel("gpt-17")
	assert.ErrorIs(t, err, models.ErrModelNotConfigured)
}

func TestUpdateConfig_PersistsTypedValue(t *testing.T) {
	cwd, home := setupEnv(t)
	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)

	require.NoError(t, cfg.UpdateConfig("max_tokens", "4096"))
	require.NoError(t, cfg.UpdateConfig("project_ignore", "dist, build ,"))
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, []string{"dist", "build"}, cfg.ProjectIgnore)
	assert.Equal(t, filepath.Join(home, ".devcli", "config.yaml"), cfg.ConfigFile)

	reloaded, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)
	assert.Equal(t, 4096, reloaded.MaxTokens)
	assert.Equal(t, []string{"dist", "build"}, reloaded.ProjectIgnore)
}

func TestUpdateConfig_Rejects(t *testing.T) {
	cwd, _ := setupEnv(t)
	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(cfg.UpdateConfig("colour", "red"), &cfgErr))
	assert.Equal(t, "colour", cfgErr.Field)

	require.True(t, errors.As(cfg.UpdateConfig("max_tokens", "many"), &cfgErr))
	assert.Equal(t, "max_tokens", cfgErr.Field)

	require.True(t, errors.As(cfg.UpdateConfig("max_tokens", "-1"), &cfgErr))
	assert.Equal(t, "max_tokens", cfgErr.Field)
	assert.Equal(t, 2000, cfg.MaxTokens)
}

func TestAddModel(t *testing.T) {
	cwd, _ := setupEnv(t)
	writeFile(t, filepath.Join(cwd, "devcli-config.yaml"), "theme: monokai\n")

	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)
	require.NoError(t, cfg.AddModel("Coder", "ollama", "qwen2.5-coder:14b", ""))

	reloaded, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)
	assert.Equal(t, "monokai", reloaded.Theme)

	model, err := reloaded.ResolveModel("coder")
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5-coder:14b", model.ModelName)
	assert.Equal(t, "ollama", model.Provider)
}

func TestIgnoreRules(t *testing.T) {
	cwd, _ := setupEnv(t)
	writeFile(t, filepath.Join(cwd, ".devcli-ignore"), "*.log\n")

	cfg, err := LoadConfigs(nil, cwd)
	require.NoError(t, err)
	cfg.ProjectIgnore = []string{"dist"}

	rules, err := cfg.IgnoreRules(cwd)
	require.NoError(t, err)
	assert.Greater(t, rules.Len(), 2)
}
