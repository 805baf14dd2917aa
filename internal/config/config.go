package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Source is an extra RSS/Atom feed shown alongside the API categories.
type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type NewsAPIConfig struct {
	BaseURL             string `yaml:"base_url"`
	APIKey              string `yaml:"api_key,omitempty"`
	Country             string `yaml:"country"`
	RecommendedCategory string `yaml:"recommended_category"`
	Timeout             string `yaml:"timeout"`
	Retries             int    `yaml:"retries"`
	RequestsPerMinute   int    `yaml:"requests_per_minute"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"` // "sqlite", "redis" or "memory"
	Path        string `yaml:"path,omitempty"`
	RedisURL    string `yaml:"redis_url,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

type Config struct {
	NewsAPI        NewsAPIConfig `yaml:"newsapi"`
	Storage        StorageConfig `yaml:"storage"`
	Categories     []string      `yaml:"categories"`
	SearchDebounce string        `yaml:"search_debounce"`
	LogLevel       string        `yaml:"log_level"`
	Sources        []Source      `yaml:"sources"`
}

// APIKey returns the configured key, falling back to NEWS_API_KEY.
func (c *Config) APIKey() string {
	if c.NewsAPI.APIKey != "" {
		return c.NewsAPI.APIKey
	}
	return os.Getenv("NEWS_API_KEY")
}

func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.NewsAPI.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

func (c *Config) DebounceDuration() time.Duration {
	if c.SearchDebounce == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.SearchDebounce)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// StoragePath resolves the sqlite database location.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(xdg.DataHome, "headlines", "headlines.db")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "headlines", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path, or the default location when path is empty.
// Fields missing from the file keep their embedded defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: the embedded defaults are usable as-is
			_ = writeDefaults(path)
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.NewsAPI.BaseURL)
	if err != nil {
		return fmt.Errorf("newsapi: invalid base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("newsapi: base_url scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.NewsAPI.Retries < 0 {
		return fmt.Errorf("newsapi: retries must be >= 0, got %d", cfg.NewsAPI.Retries)
	}
	if cfg.NewsAPI.RequestsPerMinute < 0 {
		return fmt.Errorf("newsapi: requests_per_minute must be >= 0, got %d", cfg.NewsAPI.RequestsPerMinute)
	}

	switch cfg.Storage.Backend {
	case "sqlite", "memory":
	case "redis":
		if cfg.Storage.RedisURL == "" {
			return fmt.Errorf("storage: redis backend requires redis_url")
		}
	default:
		return fmt.Errorf("storage: unknown backend %q (valid: sqlite, redis, memory)", cfg.Storage.Backend)
	}

	if cfg.SearchDebounce != "" {
		d, err := time.ParseDuration(cfg.SearchDebounce)
		if err != nil {
			return fmt.Errorf("invalid search_debounce: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("search_debounce must not be negative")
		}
	}

	validTypes := map[string]bool{"rss": true, "atom": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: rss, atom)", s.Name, s.Type)
		}
	}
	return nil
}
