package blogfront

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/eringen/blogfront/views"
)

// EnvPrefix prefixes every environment override, e.g. BLOGFRONT_API_BASE_URL.
const EnvPrefix = "BLOGFRONT_"

// SiteConfig holds all configuration for a blogfront instance.
type SiteConfig struct {
	Name        string `koanf:"name"`        // Site name (default "Blog")
	Description string `koanf:"description"` // Meta description

	Addr string `koanf:"addr"` // Listen address (default ":3000")

	APIBaseURL string        `koanf:"api_base_url"` // Blog API root (default "http://localhost:8000/blog/api")
	APITimeout time.Duration `koanf:"api_timeout"`  // Per-request timeout; 0 waits indefinitely

	SessionSecret       string        `koanf:"session_secret"`        // Required: cookie signing secret
	CookieSecure        bool          `koanf:"cookie_secure"`         // Set true for HTTPS
	SessionDatabasePath string        `koanf:"session_database_path"` // SQLite path (default "data/sessions.db")
	SessionIdleTTL      time.Duration `koanf:"session_idle_ttl"`      // In-memory eviction (default 30min)
	SessionRetention    time.Duration `koanf:"session_retention"`     // Persisted session lifetime (default 24h)

	MarkdownMode string `koanf:"markdown_mode"` // sanitized (default), unsanitized or plain
	CodeStyle    string `koanf:"code_style"`    // Highlighting style (default "github")

	LoginMaxAttempts int           `koanf:"login_max_attempts"` // Failed logins per window (default 5)
	LoginWindow      time.Duration `koanf:"login_window"`       // Login throttle window (default 1min)

	Categories []views.CategoryOption `koanf:"categories"` // Tab and radio catalogue

	Debug bool `koanf:"debug"` // Debug logging
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://localhost:8000/blog/api"
	}
	if c.SessionDatabasePath == "" {
		c.SessionDatabasePath = "data/sessions.db"
	}
	if c.SessionIdleTTL == 0 {
		c.SessionIdleTTL = 30 * time.Minute
	}
	if c.SessionRetention == 0 {
		c.SessionRetention = 24 * time.Hour
	}
	if c.LoginMaxAttempts == 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
	if len(c.Categories) == 0 {
		c.Categories = views.DefaultCategories()
	}
}

// Validate checks the values New cannot default.
func (c *SiteConfig) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("blogfront: session_secret is required")
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("blogfront: api_timeout must be non-negative")
	}
	seen := make(map[int]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID <= 0 || cat.Slug == "" {
			return fmt.Errorf("blogfront: category %q needs a positive id and a slug", cat.Name)
		}
		if seen[cat.ID] {
			return fmt.Errorf("blogfront: duplicate category id %d", cat.ID)
		}
		seen[cat.ID] = true
	}
	return nil
}

// LoadConfig reads the YAML file at path when it exists, then overlays
// BLOGFRONT_* environment variables. Unset values keep their defaults.
func LoadConfig(path string) (SiteConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return SiteConfig{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg SiteConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the application logger (default: zap production logger).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
