// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken    string
	ListenAddr     string
	DBPath         string
	FetchTimeout   time.Duration
	HighChurnLines int
	RecentLimit    int
}

// Load reads configuration from environment variables and returns a validated
// Config. PRTRIAGE_GITHUB_TOKEN is optional; without it, enrichment runs
// unauthenticated at reduced rate limits. Optional variables with defaults:
// PRTRIAGE_LISTEN_ADDR (127.0.0.1:8080), PRTRIAGE_DB_PATH (prtriage.db),
// PRTRIAGE_FETCH_TIMEOUT (20s), PRTRIAGE_HIGH_CHURN_LINES (500),
// PRTRIAGE_RECENT_LIMIT (50).
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:    os.Getenv("PRTRIAGE_GITHUB_TOKEN"),
		ListenAddr:     "127.0.0.1:8080",
		DBPath:         "prtriage.db",
		FetchTimeout:   20 * time.Second,
		HighChurnLines: 500,
		RecentLimit:    50,
	}

	if v, ok := os.LookupEnv("PRTRIAGE_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}

	if v, ok := os.LookupEnv("PRTRIAGE_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("PRTRIAGE_FETCH_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PRTRIAGE_FETCH_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.FetchTimeout = parsed
	}

	if v, ok := os.LookupEnv("PRTRIAGE_HIGH_CHURN_LINES"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("PRTRIAGE_HIGH_CHURN_LINES must be a positive integer, got %q", v)
		}
		cfg.HighChurnLines = parsed
	}

	if v, ok := os.LookupEnv("PRTRIAGE_RECENT_LIMIT"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("PRTRIAGE_RECENT_LIMIT must be a positive integer, got %q", v)
		}
		cfg.RecentLimit = parsed
	}

	return cfg, nil
}
