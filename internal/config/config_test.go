package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "OPENROUTER_API_KEY", "HOUSING_API_KEY", "HOUSING_MODEL", "HOUSING_CORRELATION_THRESHOLD"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Model)
	assert.Equal(t, "data analyst", cfg.Role)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 300, cfg.MaxTokens)
	assert.Equal(t, filepath.Join("data", "daft_housing_data.csv"), cfg.DataPath)
	assert.Equal(t, "housing_summary.txt", cfg.OutputPath)
	assert.Equal(t, 0.05, cfg.CorrelationThreshold)
	assert.Equal(t, "report", cfg.DropMode)
	assert.Equal(t, 1, cfg.Verbosity)
	assert.Equal(t, 1, cfg.RetryMaxAttempts)
	assert.Empty(t, cfg.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: from-file\ncorrelation_threshold: 0.2\napi_key: file-key\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Model)
	assert.Equal(t, 0.2, cfg.CorrelationThreshold)
	assert.Equal(t, "file-key", cfg.APIKey)

	t.Setenv("HOUSING_MODEL", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Model)
	assert.Equal(t, "sk-env", cfg.APIKey)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Set("drop_mode", "dataset"))
	require.NoError(t, cfg.Set("max_tokens", "500"))
	require.NoError(t, cfg.Set("temperature", "0.2"))
	require.NoError(t, Save(cfg, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dataset", again.DropMode)
	assert.Equal(t, 500, again.MaxTokens)
	assert.Equal(t, 0.2, again.Temperature)

	v, err := again.Get("max_tokens")
	require.NoError(t, err)
	assert.Equal(t, "500", v)
}

func TestSetRejectsBadInput(t *testing.T) {
	cfg := &Global{}
	assert.Error(t, cfg.Set("max_tokens", "lots"))
	assert.Error(t, cfg.Set("temperature", "warm"))
	assert.Error(t, cfg.Set("no_such_key", "x"))
	_, err := cfg.Get("no_such_key")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	cfg.DropMode = "sometimes"
	cfg.CorrelationThreshold = 1.5
	cfg.Provider = "acme"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drop_mode")
	assert.Contains(t, err.Error(), "correlation_threshold")
	assert.Contains(t, err.Error(), "provider")
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("OPENAI_API_KEY=sk-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("OPENAI_API_KEY") })

	require.NoError(t, LoadDotEnv(env, filepath.Join(dir, "absent.env")))
	assert.Equal(t, "sk-dotenv", os.Getenv("OPENAI_API_KEY"))

	cfg, err := Load(filepath.Join(dir, "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sk-dotenv", cfg.APIKey)
}
