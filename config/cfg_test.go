package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "480px", cfg.Render.Breakpoint)
	assert.True(t, cfg.Render.KeepComments)
	assert.Empty(t, cfg.Render.Fonts)
	assert.False(t, cfg.Include.AllowHTTP)
	assert.Equal(t, 10*time.Second, cfg.Include.Timeout)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
	assert.Equal(t, time.Second, cfg.Server.ReloadInterval)
	assert.Equal(t, "normal", cfg.Logging.ConsoleLogger.Level)
	assert.Equal(t, "none", cfg.Logging.FileLogger.Level)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	p := writeConfig(t, `version: 1
render:
  breakpoint: 600px
  keep_comments: false
  fonts:
    Raleway: https://fonts.example.com/raleway.css
include:
  allow_http: true
  allowed_origins: ["https://cdn.example.com"]
  timeout: 3s
server:
  listen: 0.0.0.0:9000
`)
	cfg, err := LoadConfiguration(p)
	require.NoError(t, err)

	assert.Equal(t, "600px", cfg.Render.Breakpoint)
	assert.False(t, cfg.Render.KeepComments)
	assert.Equal(t, map[string]string{"Raleway": "https://fonts.example.com/raleway.css"}, cfg.Render.Fonts)
	assert.True(t, cfg.Include.AllowHTTP)
	assert.Equal(t, []string{"https://cdn.example.com"}, cfg.Include.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Include.Timeout)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
	// untouched values keep their defaults
	assert.Equal(t, ".", cfg.Server.Templates)
	assert.Equal(t, "normal", cfg.Logging.ConsoleLogger.Level)
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "version: 1\nrender:\n  beautify: true\n"},
		{"wrong version", "version: 2\n"},
		{"bad log level", "logging:\n  console:\n    level: loud\n"},
		{"bad listen address", "server:\n  listen: nowhere\n"},
		{"bad origin", "include:\n  denied_origins: [\"not a url\"]\n"},
		{"malformed yaml", "render: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfiguration(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	require.NoError(t, err)
	assert.Contains(t, string(data), "breakpoint: 480px")

	cfg, err := LoadConfiguration("")
	require.NoError(t, err)
	out, err := Dump(cfg)
	require.NoError(t, err)

	var back Config
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, *cfg, back)
}
