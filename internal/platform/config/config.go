// Package config builds runtime configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strings"
	"time"

	"propflow/internal/ingest/sources"
)

// Config captures everything the server needs at startup.
type Config struct {
	Addr           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	RequestTimeout time.Duration
	Sources        []sources.Descriptor
}

// Default coverage when none is configured: Tarrant County ZIP codes.
var defaultCoverage = []string{"76101", "76102", "76104"}

// FromEnv builds the config from environment variables. Descriptors are
// built for every known provider; ones without credentials degrade to the
// synthetic extractor at registration time, so a bare environment still runs.
func FromEnv() Config {
	return Config{
		Addr:           getenv("PROPFLOW_ADDR", ":8080"),
		LogLevel:       getenv("PROPFLOW_LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RequestTimeout: durationEnv("PROPFLOW_REQUEST_TIMEOUT", 10*time.Second),
		Sources: []sources.Descriptor{
			{
				Name:      sources.SourceAttom,
				Priority:  1,
				Cadence:   sources.CadenceDaily,
				Coverage:  listEnv("ATTOM_COVERAGE", defaultCoverage),
				APIKey:    os.Getenv("ATTOM_API_KEY"),
				RateLimit: sources.RateBudget{PerMinute: 60, PerHour: 1000},
			},
			{
				Name:      sources.SourceCounty,
				Priority:  2,
				Cadence:   sources.CadenceWeekly,
				Coverage:  listEnv("COUNTY_COVERAGE", defaultCoverage),
				APIKey:    os.Getenv("COUNTY_API_KEY"),
				RateLimit: sources.RateBudget{PerMinute: 30, PerHour: 500},
			},
			{
				Name:      sources.SourceRentcast,
				Priority:  3,
				Cadence:   sources.CadenceDaily,
				Coverage:  listEnv("RENTCAST_COVERAGE", defaultCoverage),
				APIKey:    os.Getenv("RENTCAST_API_KEY"),
				RateLimit: sources.RateBudget{PerMinute: 45, PerHour: 900},
			},
			{
				Name:     sources.SourceMock,
				Priority: 4,
				Cadence:  sources.CadenceDaily,
				Coverage: listEnv("MOCK_COVERAGE", defaultCoverage),
			},
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func listEnv(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
