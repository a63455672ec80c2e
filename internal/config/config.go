package config

import (
	"errors"
	"os"
	"time"
)

type Config struct {
	Addr           string
	DSN            string
	Secret         string
	RequestTimeout time.Duration
}

// Load reads configuration from the environment. The signing secret has no
// default: tokens issued under an ad-hoc secret would stop verifying across
// restarts, so startup fails without one.
func Load() (Config, error) {
	addr := envString("SCRIBE_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	cfg := Config{
		Addr:           addr,
		DSN:            envString("SCRIBE_DB", "scribe.db"),
		Secret:         os.Getenv("SCRIBE_SECRET"),
		RequestTimeout: envDuration("SCRIBE_REQUEST_TIMEOUT", 5*time.Second),
	}
	if cfg.Secret == "" {
		return Config{}, errors.New("SCRIBE_SECRET is required")
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
