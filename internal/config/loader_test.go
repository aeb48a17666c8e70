package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.HomeAssistant.TokenTTL.Std())
	assert.Equal(t, 30*time.Second, cfg.Grocy.RequestTimeout.Std())
	assert.Equal(t, 3, cfg.Grocy.RetryAttempts)
	assert.Equal(t, MCPTransportSSE, cfg.Server.Transport)
	assert.Equal(t, 8010, cfg.Server.Port)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
grocy:
  apiUrl: http://homeassistant.local:8123/api/hassio_ingress/abc/api
  apiKey: file-key
  requestTimeout: 5s
  retryAttempts: 2
homeAssistant:
  token: file-token
  tokenTTL: 90s
server:
  port: 9000
  transport: stdio
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://homeassistant.local:8123/api/hassio_ingress/abc/api", cfg.Grocy.APIURL)
	assert.Equal(t, "file-key", cfg.Grocy.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Grocy.RequestTimeout.Std())
	assert.Equal(t, 2, cfg.Grocy.RetryAttempts)
	assert.Equal(t, 90*time.Second, cfg.HomeAssistant.TokenTTL.Std())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, MCPTransportStdio, cfg.Server.Transport)

	// Defaults survive for fields the file does not mention.
	assert.Equal(t, 250*time.Millisecond, cfg.Grocy.RetryInterval.Std())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := `
grocy:
  apiKey: file-key
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	t.Setenv("GROCY_API_KEY", "env-key")
	t.Setenv("HA_TOKEN", "env-token")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Grocy.APIKey)
	assert.Equal(t, "env-token", cfg.HomeAssistant.Token)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("grocy: ["), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() GrocerConfig {
		cfg := GetDefaultConfig()
		cfg.Grocy.APIKey = "key"
		cfg.HomeAssistant.Token = "token"
		return cfg
	}

	t.Run("complete config passes", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing api key fails", func(t *testing.T) {
		cfg := valid()
		cfg.Grocy.APIKey = ""
		assert.ErrorContains(t, cfg.Validate(), "GROCY_API_KEY")
	})

	t.Run("missing ha token fails", func(t *testing.T) {
		cfg := valid()
		cfg.HomeAssistant.Token = ""
		assert.ErrorContains(t, cfg.Validate(), "HA_TOKEN")
	})

	t.Run("zero retry attempts fails", func(t *testing.T) {
		cfg := valid()
		cfg.Grocy.RetryAttempts = 0
		assert.ErrorContains(t, cfg.Validate(), "retryAttempts")
	})

	t.Run("unknown transport fails", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Transport = "carrier-pigeon"
		assert.ErrorContains(t, cfg.Validate(), "transport")
	})
}
