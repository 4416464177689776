// Package config loads and validates the site configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Serve   ServeConfig   `yaml:"serve"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Title         string `yaml:"title"`
	BaseURL       string `yaml:"base_url,omitempty"`
	DefaultLocale string `yaml:"default_locale"`
}

// ContentConfig locates the source content tree.
type ContentConfig struct {
	Dir string `yaml:"dir"`
	// AssetsBase is the absolute URL prefix static assets are served under.
	AssetsBase string `yaml:"assets_base,omitempty"`
}

// OutputConfig controls where and how the rendered tree is written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`
	// CacheFile is the SQLite render cache path. Empty disables the cache.
	CacheFile string `yaml:"cache_file,omitempty"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr         string   `yaml:"addr,omitempty"`
	RebuildEvery Duration `yaml:"rebuild_every,omitempty"`
}

// Duration decodes yaml values like "5m" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads the configuration file, expanding ${VAR} references from the
// environment (a .env file alongside the process is honored when present).
func Load(path string) (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Documentation"
	}
	if c.Site.DefaultLocale == "" {
		c.Site.DefaultLocale = "en"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "./content"
	}
	if c.Content.AssetsBase == "" {
		c.Content.AssetsBase = "/assets"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./site"
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8080"
	}
}

const defaultConfig = `site:
  title: Documentation
  default_locale: en

content:
  dir: ./content

output:
  directory: ./site
  clean: true
  cache_file: .sitegen-cache.db

serve:
  addr: ":8080"
`

// Init writes a starter configuration file. It refuses to overwrite an
// existing file unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", path)
	}
	return os.WriteFile(path, []byte(defaultConfig), 0o644)
}
