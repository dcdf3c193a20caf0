// Package config loads formpost settings from formpost.yaml, .env files and
// FORMPOST_* environment variables, in that order of precedence (later wins).
// Command line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formpost/pkg/model"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "formpost.yaml"

// EnvPrefix prefixes every environment variable understood by Load.
const EnvPrefix = "FORMPOST_"

const (
	envFieldPrefix = EnvPrefix + "FIELD_"
	envFilePrefix  = EnvPrefix + "FILE_"
)

var validLevels = []string{"debug", "info", "warn", "error"}

// Config holds everything needed to submit a form.
type Config struct {
	// Server overrides the base URL declared by the form definition.
	Server string `yaml:"server"`
	// Spec is a path or http(s) URL of an OpenAPI document. Empty selects the
	// built-in definition.
	Spec      string `yaml:"spec"`
	Operation string `yaml:"operation"`
	OutputDir string `yaml:"output_dir"`
	Filename  string `yaml:"filename"`
	Overwrite bool   `yaml:"overwrite"`
	Timeout   string `yaml:"timeout"`
	// Interactive forces prompting on or off. Nil means prompt when stdin
	// is a terminal.
	Interactive *bool             `yaml:"interactive,omitempty"`
	Fields      map[string]string `yaml:"fields,omitempty"`
	Files       map[string]string `yaml:"files,omitempty"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LoggingConfig configures the CLI logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Operation: "generate",
		OutputDir: ".",
		Filename:  "generated.pptx",
		Timeout:   "5m",
		Fields:    map[string]string{},
		Files:     map[string]string{},
		Logging:   LoggingConfig{Level: "warn"},
	}
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	return nil
}

// Load reads path (DefaultPath when empty) over the defaults and applies
// FORMPOST_* overrides. A missing default file is not an error; a missing
// explicit path is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if cfg.Fields == nil {
		cfg.Fields = map[string]string{}
	}
	if cfg.Files == nil {
		cfg.Files = map[string]string{}
	}

	if err := cfg.applyEnvOverrides(os.Environ()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies FORMPOST_* variables from environ ("KEY=value").
func (c *Config) applyEnvOverrides(environ []string) error {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		switch {
		case strings.HasPrefix(key, envFieldPrefix):
			c.Fields[envName(key, envFieldPrefix)] = value
			continue
		case strings.HasPrefix(key, envFilePrefix):
			c.Files[envName(key, envFilePrefix)] = value
			continue
		}

		switch strings.TrimPrefix(key, EnvPrefix) {
		case "SERVER":
			c.Server = value
		case "SPEC":
			c.Spec = value
		case "OPERATION":
			c.Operation = value
		case "OUTPUT_DIR":
			c.OutputDir = value
		case "FILENAME":
			c.Filename = value
		case "TIMEOUT":
			c.Timeout = value
		case "LOG_LEVEL":
			c.Logging.Level = value
		case "OVERWRITE":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			c.Overwrite = b
		case "INTERACTIVE":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			c.Interactive = &b
		}
	}
	return nil
}

// envName maps FORMPOST_FIELD_API_KEY to api_key.
func envName(key, prefix string) string {
	return strings.ToLower(strings.TrimPrefix(key, prefix))
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Operation) == "" {
		return errors.New("config: operation is required")
	}
	if strings.TrimSpace(c.Filename) == "" {
		return errors.New("config: filename is required")
	}
	if c.Server != "" {
		u, err := url.Parse(c.Server)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config: server %q must be an http(s) URL", c.Server)
		}
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("config: timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("config: timeout %s is negative", c.Timeout)
		}
	}
	level := strings.ToLower(c.Logging.Level)
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("config: log level %q is not one of %s", c.Logging.Level, strings.Join(validLevels, ", "))
}

// GetTimeout returns the submission timeout; zero means no limit.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// FormValues converts the configured fields and files into form values.
func (c *Config) FormValues() model.Values {
	values := model.NewValues()
	for _, name := range sortedKeys(c.Fields) {
		values.Set(name, c.Fields[name])
	}
	for _, name := range sortedKeys(c.Files) {
		if path := strings.TrimSpace(c.Files[name]); path != "" {
			values.AttachFile(name, model.File{Path: path})
		}
	}
	return values
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
