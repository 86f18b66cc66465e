// Package config loads and validates navindex configuration files.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
)

// CurrentVersion is the configuration schema version written by Init.
const CurrentVersion = "1"

// Config represents the application configuration.
type Config struct {
	Version  string         `yaml:"version"`
	Site     SiteConfig     `yaml:"site"`
	Markdown MarkdownConfig `yaml:"markdown,omitempty"`
	Verify   VerifyConfig   `yaml:"verify,omitempty"`
	Store    StoreConfig    `yaml:"store,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Daemon   DaemonConfig   `yaml:"daemon,omitempty"`
	Git      *GitConfig     `yaml:"git,omitempty"`
	Retry    RetryConfig    `yaml:"retry,omitempty"`
}

// Load reads a configuration file, expands environment variables, applies defaults
// and validates the result. Variables from .env and .env.local are loaded first;
// values already present in the process environment win.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).Build()
	}
	return Parse(data)
}

// Parse decodes configuration YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}

	if err := ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.NewError(errors.CategoryAlreadyExists, "configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := Example()
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(example); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	_ = enc.Close()

	if err := os.WriteFile(configPath, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).Build()
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := &Config{
		Version: CurrentVersion,
		Site: SiteConfig{
			Dir:       "./html",
			Title:     "DA16200 SDK",
			ChunkSize: DefaultChunkSize,
		},
		Markdown: MarkdownConfig{
			Dir:   "./docs",
			Page:  "related_pages",
			Title: "Related Pages",
		},
		Store:  StoreConfig{Path: "./navindex.db"},
		Server: ServerConfig{Addr: ":8080"},
		Verify: VerifyConfig{
			NATS: &NATSConfig{
				URL:      "${NATS_URL}",
				Subject:  "navindex.broken_hrefs",
				KVBucket: "navindex_reports",
			},
		},
	}
	_ = ApplyDefaults(cfg)
	return cfg
}

func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", "file", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "file", name)
	}
}

// String renders a short human summary used in startup logs.
func (c *Config) String() string {
	return fmt.Sprintf("site=%s chunk_size=%d store=%s server=%s", c.Site.Dir, c.Site.ChunkSize, c.Store.Path, c.Server.Addr)
}

// Default returns a configuration with every default applied, used when no
// configuration file exists.
func Default() *Config {
	cfg := &Config{}
	_ = ApplyDefaults(cfg)
	return cfg
}
