package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvAPIBaseURL     = "FILEKEEPER_API_BASE_URL"
	EnvRequestTimeout = "FILEKEEPER_REQUEST_TIMEOUT"
	EnvStorePath      = "FILEKEEPER_STORE_PATH"
	EnvLogLevel       = "FILEKEEPER_LOG_LEVEL"
	EnvLogFile        = "FILEKEEPER_LOG_FILE"
)

func parseEnv(cfg *Config) error {
	cfg.APIBaseURL = envOr(EnvAPIBaseURL, cfg.APIBaseURL)
	cfg.StorePath = envOr(EnvStorePath, cfg.StorePath)
	cfg.LogLevel = envOr(EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = envOr(EnvLogFile, cfg.LogFile)

	if v := os.Getenv(EnvRequestTimeout); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseTimeout accepts a Go duration ("90s", "2m") or a bare number of
// seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %d", secs)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}
