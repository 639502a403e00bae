// Package config loads and normalizes docexpand configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docexpand/internal/load"
	"git.home.luguber.info/inful/docexpand/internal/tabs"
)

// Config is the top-level configuration for a docexpand run.
type Config struct {
	Docs         DocsConfig        `yaml:"docs"`
	Output       OutputConfig      `yaml:"output"`
	Placeholders map[string]string `yaml:"placeholders"`
	Languages    []string          `yaml:"languages,omitempty"`
	Concurrency  int               `yaml:"concurrency,omitempty"`
	Watch        WatchConfig       `yaml:"watch,omitempty"`
	Events       EventsConfig      `yaml:"events,omitempty"`
	State        StateConfig       `yaml:"state,omitempty"`
}

// DocsConfig selects the input corpus.
type DocsConfig struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions,omitempty"`
}

// OutputConfig controls where expanded documents are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// WatchConfig tunes the long-running watch mode.
type WatchConfig struct {
	Debounce           string `yaml:"debounce,omitempty"`            // e.g. "2s"
	RevalidateInterval string `yaml:"revalidate_interval,omitempty"` // e.g. "10m", "" disables
	MetricsAddr        string `yaml:"metrics_addr,omitempty"`        // e.g. ":9187", "" disables
}

// DebounceDuration returns the parsed debounce window (default 2s).
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// RevalidateDuration returns the parsed periodic revalidation interval,
// or 0 when disabled.
func (w WatchConfig) RevalidateDuration() time.Duration {
	if w.RevalidateInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(w.RevalidateInterval)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// EventsConfig enables publishing broken-reference events to NATS so
// downstream tooling (issue creation, dashboards) can react.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// StateConfig locates the SQLite run-history database.
type StateConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Default returns a configuration with environment overrides and defaults
// applied, for running without a config file.
func Default() *Config {
	_ = godotenv.Load()
	cfg := &Config{}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration file, expands ${ENV} references, applies
// environment overrides and defaults.
func Load(configPath string) (*Config, error) {
	// A .env next to the working directory may hold the release version;
	// missing files are fine.
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnvOverrides maps DOCEXPAND_* variables onto the config. The release
// version is the value most often injected by CI.
func (c *Config) applyEnvOverrides() {
	if c.Placeholders == nil {
		c.Placeholders = map[string]string{}
	}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if ph, found := strings.CutPrefix(name, "DOCEXPAND_PLACEHOLDER_"); found && ph != "" {
			c.Placeholders[ph] = value
		}
	}
	if v := os.Getenv("DOCEXPAND_VERSION"); v != "" {
		c.Placeholders["VERSION"] = v
	}
}

func (c *Config) applyDefaults() {
	if c.Docs.Root == "" {
		c.Docs.Root = "./docs"
	}
	if len(c.Docs.Extensions) == 0 {
		c.Docs.Extensions = load.DefaultExtensions
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./build"
	}
	if len(c.Languages) == 0 {
		c.Languages = tabs.DefaultLanguages
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.Events.Enabled {
		if c.Events.NATSURL == "" {
			c.Events.NATSURL = "nats://127.0.0.1:4222"
		}
		if c.Events.Subject == "" {
			c.Events.Subject = "docexpand.references.broken"
		}
	}
	if c.State.Path == "" {
		c.State.Path = ".docexpand/state.db"
	}
}

const defaultConfig = `# docexpand configuration
docs:
  root: ./docs
  # extensions: [.md, .mdx]

output:
  directory: ./build

# Values substituted for $NAME$ tokens. DOCEXPAND_VERSION overrides VERSION,
# DOCEXPAND_PLACEHOLDER_<NAME> overrides any entry.
placeholders:
  VERSION: "3.5.0"

# languages: [python, scala, java, bash, sql, xml, text]
# concurrency: 4

watch:
  debounce: 2s
  # revalidate_interval: 10m
  # metrics_addr: ":9187"

events:
  enabled: false
  # nats_url: nats://127.0.0.1:4222
  # subject: docexpand.references.broken

state:
  path: .docexpand/state.db
`

// Init writes a commented starter configuration. It refuses to overwrite an
// existing file unless force is set.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", configPath, err)
	}
	return nil
}
