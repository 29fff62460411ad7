package app

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Env      string
	HTTPAddr string

	// ShareDir is served statically under /share/.
	ShareDir string

	// CORSAllow lists allowed origins; "*" means any (the clients are
	// served from arbitrary hosts).
	CORSAllow []string

	// RateLimit is HTTP requests allowed per client IP per minute.
	RateLimit int
}

func LoadConfig() Config {
	cfg := Config{
		Env:      getEnv("APP_ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		ShareDir: getEnv("SHARE_DIR", "share"),
	}
	cfg.RateLimit = getEnvInt("RATE_LIMIT", 120)
	cfg.CORSAllow = splitCSV(getEnv("CORS_ALLOW", "*"))
	return cfg
}

// getEnv returns the env var or a default
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses an int env var with a fallback
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		var i int
		_, _ = fmt.Sscanf(v, "%d", &i)
		if i > 0 {
			return i
		}
	}
	return def
}

// splitCSV trims and filters a comma-separated list
func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
