package mkmtrees

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/ejrshadbolt/mkmtrees-sub001/blob"
	"github.com/ejrshadbolt/mkmtrees-sub001/turnstile"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string // Site name (default "MKM Trees")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/mkmtrees.db")
	LogLevel     string // debug, info, warn or error (default "info")

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	CORSOrigins []string // Origins allowed to call /api (default: same origin only)

	MediaDir       string        // Local blob directory when R2 is not configured (default "data/media")
	R2             blob.S3Config // R2 bucket; used when Bucket and credentials are set
	MediaPublicURL string        // Public base URL of the bucket; empty serves via /media/

	TurnstileSecretKey string // Empty disables bot verification
	TurnstileSiteKey   string

	FormRateLimit int // Public form posts per IP per minute (default 10)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "MKM Trees"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/mkmtrees.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MediaDir == "" {
		c.MediaDir = "data/media"
	}
	if c.FormRateLimit == 0 {
		c.FormRateLimit = 10
	}
}

// r2Configured reports whether enough R2 settings exist to build an S3 client.
func (c *SiteConfig) r2Configured() bool {
	return c.R2.Bucket != "" && c.R2.AccessKeyID != "" && c.R2.SecretAccessKey != "" &&
		(c.R2.AccountID != "" || c.R2.Endpoint != "")
}

// ConfigFromEnv reads a SiteConfig from the environment. A .env file in the
// working directory is loaded first when present.
func ConfigFromEnv() SiteConfig {
	_ = godotenv.Load()
	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Addr:          os.Getenv("ADDR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		SessionSecret: os.Getenv("ADMIN_SESSION_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
		CORSOrigins:   FilterEmpty(strings.Split(os.Getenv("CORS_ORIGINS"), ",")),
		MediaDir:      os.Getenv("MEDIA_DIR"),
		R2: blob.S3Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			Bucket:          os.Getenv("R2_BUCKET"),
			Endpoint:        os.Getenv("R2_ENDPOINT"),
		},
		MediaPublicURL:     os.Getenv("MEDIA_PUBLIC_URL"),
		TurnstileSecretKey: os.Getenv("TURNSTILE_SECRET_KEY"),
		TurnstileSiteKey:   os.Getenv("TURNSTILE_SITE_KEY"),
	}
	if n, err := strconv.Atoi(os.Getenv("FORM_RATE_LIMIT")); err == nil && n > 0 {
		cfg.FormRateLimit = n
	}
	return cfg
}

func logLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore uses an already opened store instead of DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithBlobStore replaces the media blob store.
func WithBlobStore(b blob.Store) Option {
	return func(a *App) {
		a.Blob = b
	}
}

// WithVerifier replaces the Turnstile verifier used by the contact form.
func WithVerifier(v turnstile.Verifier) Option {
	return func(a *App) {
		a.Verifier = v
	}
}
