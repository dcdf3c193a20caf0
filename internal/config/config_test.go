package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-formpost/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "generate", cfg.Operation)
	assert.Equal(t, "generated.pptx", cfg.Filename)
	assert.Equal(t, 5*time.Minute, cfg.GetTimeout())
	assert.Nil(t, cfg.Interactive)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formpost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server: http://slides.internal:8000
output_dir: decks
timeout: 90s
interactive: false
fields:
  provider: anthropic
  model: claude
files:
  template_file: brand.potx
logging:
  level: debug
`), 0o644))

	t.Setenv("FORMPOST_FIELD_MODEL", "claude-sonnet")
	t.Setenv("FORMPOST_FIELD_API_KEY", "sk-env")
	t.Setenv("FORMPOST_OVERWRITE", "true")
	t.Setenv("FORMPOST_TIMEOUT", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://slides.internal:8000", cfg.Server)
	assert.Equal(t, "decks", cfg.OutputDir)
	assert.Equal(t, 2*time.Minute, cfg.GetTimeout())
	assert.True(t, cfg.Overwrite)
	require.NotNil(t, cfg.Interactive)
	assert.False(t, *cfg.Interactive)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, map[string]string{
		"provider": "anthropic",
		"model":    "claude-sonnet",
		"api_key":  "sk-env",
	}, cfg.Fields)

	values := cfg.FormValues()
	assert.Equal(t, "sk-env", values.Get("api_key"))
	assert.Equal(t, []model.File{{Path: "brand.potx"}}, values.Files("template_file"))
}

func TestLoad_InvalidEnvironmentBoolean(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FORMPOST_INTERACTIVE", "sometimes")

	_, err := Load("")
	require.ErrorContains(t, err, "FORMPOST_INTERACTIVE")
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formpost.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields: [unclosed"), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "config: parse")
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FORMPOST_SPEC=./openapi.yaml\nFORMPOST_OPERATION=from-file\n"), 0o644))

	t.Setenv("FORMPOST_OPERATION", "from-process")
	t.Setenv("FORMPOST_SPEC", "")
	require.NoError(t, os.Unsetenv("FORMPOST_SPEC"))

	require.NoError(t, LoadEnvFiles(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "./openapi.yaml", os.Getenv("FORMPOST_SPEC"))
	assert.Equal(t, "from-process", os.Getenv("FORMPOST_OPERATION"), "existing variables win")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"operation": func(c *Config) { c.Operation = " " },
		"filename":  func(c *Config) { c.Filename = "" },
		"server":    func(c *Config) { c.Server = "ftp://example.com" },
		"timeout":   func(c *Config) { c.Timeout = "soon" },
		"negative":  func(c *Config) { c.Timeout = "-1s" },
		"log level": func(c *Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Server = "https://slides.example.com/api"
	cfg.Timeout = ""
	require.NoError(t, cfg.Validate())
	assert.Zero(t, cfg.GetTimeout())
}
