package folio

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string // Site name (default "Portfolio")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD
	Image       string // Default og:image

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/folio.db")
	StaticDir    string // Static assets and uploads (default "public")

	AdminEmail    string // Bootstrap admin account, upserted on start when set
	AdminPassword string
	SessionSecret string        // Required: cookie and token signing secret
	CookieSecure  bool          // Set true for HTTPS
	SessionTTL    time.Duration // Admin session lifetime (default 12h)

	SkipSeed     bool          // Do not seed an empty store
	FeedCacheTTL time.Duration // Sitemap and feed cache TTL (default 5min)

	LogLevel  string // debug, info, warn, error (default "info")
	LogFormat string // "text" for console output, anything else for JSON
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 12 * time.Hour
	}
	if c.FeedCacheTTL == 0 {
		c.FeedCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first when present; variables already set
// win.
func LoadConfig() SiteConfig {
	_ = godotenv.Load()
	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           strings.TrimSuffix(os.Getenv("SITE_URL"), "/"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Author:        os.Getenv("SITE_AUTHOR"),
		Image:         os.Getenv("SITE_IMAGE"),
		Addr:          os.Getenv("ADDR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		StaticDir:     os.Getenv("STATIC_DIR"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  envBool("COOKIE_SECURE", false),
		SkipSeed:      !envBool("SEED_ON_EMPTY", true),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     EnvOr("LOG_FORMAT", "json"),
	}
	if d, err := time.ParseDuration(os.Getenv("SESSION_TTL")); err == nil {
		cfg.SessionTTL = d
	}
	cfg.setDefaults()
	return cfg
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// NewLogger builds the application logger. format "text" writes colored
// console lines to stderr; anything else writes JSON.
func NewLogger(level, format string) zerolog.Logger {
	return newLogger(os.Stderr, level, format)
}

func newLogger(out io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format == "text" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir overrides the directory for static assets and uploads.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the logger built from LogLevel and LogFormat.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Log = l
		a.customLog = true
	}
}

// WithClock replaces the time source for createdAt stamps and uploads.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
