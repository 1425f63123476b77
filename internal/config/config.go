// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the match service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// EmbeddingDim is the corpus embedding dimensionality. Requests whose
	// embedding length differs are rejected before any query is built.
	EmbeddingDim int

	CacheTTL          time.Duration
	CacheMaxEntries   int
	CachePurgeEvery   time.Duration
	FallbackThreshold int
	ProbeLimit        int
	DefaultPageSize   int
	DefaultRadiusKM   float64
	MatchTimeout      time.Duration
	SearchMaxRetries  int
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("MATCH_PORT")
	if port == "" {
		port = "8083"
	}

	cfg := &Config{
		Port:        port,
		DatabaseURL: dbURL,
		RedisURL:    redisURL,
	}

	var err error
	if cfg.EmbeddingDim, err = intEnv("EMBEDDING_DIM", 768); err != nil {
		return nil, err
	}
	ttlSec, err := intEnv("CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(ttlSec) * time.Second

	if cfg.CacheMaxEntries, err = intEnv("CACHE_MAX_ENTRIES", 1000); err != nil {
		return nil, err
	}
	purgeMin, err := intEnv("CACHE_PURGE_INTERVAL_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	cfg.CachePurgeEvery = time.Duration(purgeMin) * time.Minute

	if cfg.FallbackThreshold, err = intEnv("FALLBACK_THRESHOLD", 5); err != nil {
		return nil, err
	}
	if cfg.ProbeLimit, err = intEnv("PROBE_LIMIT", 6); err != nil {
		return nil, err
	}
	if cfg.DefaultPageSize, err = intEnv("DEFAULT_PAGE_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.DefaultPageSize < 5 {
		cfg.DefaultPageSize = 5
	}
	if cfg.DefaultPageSize > 50 {
		cfg.DefaultPageSize = 50
	}

	radius, err := intEnv("DEFAULT_RADIUS_KM", 50)
	if err != nil {
		return nil, err
	}
	cfg.DefaultRadiusKM = float64(radius)

	timeoutSec, err := intEnv("MATCH_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	cfg.MatchTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.SearchMaxRetries, err = intEnv("SEARCH_MAX_RETRIES", 3); err != nil {
		return nil, err
	}

	return cfg, nil
}

// intEnv parses an optional positive-integer variable, falling back to def.
func intEnv(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}
