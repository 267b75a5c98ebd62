package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	PexelsAPIKey         string
	PexelsAPIBase        string
	PexelsRatePerHour    int
	FetchTimeout         time.Duration
	DebounceDelay        time.Duration
	DefaultQuery         string
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
}

// Defaults used when a Config field is left zero.
const (
	DefaultPexelsAPIBase = "https://api.pexels.com"
	DefaultQuery         = "Trending"
	DefaultDebounceDelay = 500 * time.Millisecond
	DefaultFetchTimeout  = 15 * time.Second
)

var cfg Config

// Cfg exposes the engine configuration for sub-packages (pexels).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.PexelsAPIBase == "" {
		c.PexelsAPIBase = DefaultPexelsAPIBase
	}
	if c.DefaultQuery == "" {
		c.DefaultQuery = DefaultQuery
	}
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = DefaultDebounceDelay
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.FetchTimeout}
	}
	cfg = c
	Cfg = &cfg
	initLimiter(c.PexelsRatePerHour)
}
