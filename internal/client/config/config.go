package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the FileKeeper CLI.
type Config struct {
	// APIBaseURL is the root every API path is appended to.
	APIBaseURL string
	// RequestTimeout bounds each HTTP request end to end.
	RequestTimeout time.Duration
	// StorePath is the SQLite file that keeps the session between runs.
	StorePath string
	LogLevel  string
	// LogFile, when set, receives a rotated copy of the log.
	LogFile string
}

func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 180 * time.Second
	c.StorePath = "filekeeper.db"
	c.LogLevel = "info"
	c.LogFile = ""
}

// Load builds a Config from defaults, then the JSON file named by -c or
// -config, then the environment, then flags. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args. It panics on a malformed source.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
