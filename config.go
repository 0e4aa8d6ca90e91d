package headlessadmin

import (
	"os"
	"time"
)

// DefaultBaseURL is the production backend. Overridable through Config or the
// HEADLESS_ADMIN_API_URL environment variable.
const DefaultBaseURL = "https://api-fuelabc.onrender.com"

// EnvBaseURL is the environment variable consulted by ConfigFromEnv.
const EnvBaseURL = "HEADLESS_ADMIN_API_URL"

type Config struct {
	// BaseURL is the backend root. Endpoints are routed beneath it according
	// to the known root path prefixes (see Transport).
	BaseURL string

	// CacheTTL bounds how long a cached read may be served. Entries older
	// than this are treated as absent.
	CacheTTL time.Duration

	// RequestTimeout caps every request round trip, refresh included.
	RequestTimeout time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		CacheTTL:       5 * time.Minute,
		RequestTimeout: 15 * time.Second,
	}
}

// ConfigFromEnv is DefaultConfig with the backend root taken from the
// environment when set.
func ConfigFromEnv() Config {
	c := DefaultConfig()
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	return c
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	return c
}
