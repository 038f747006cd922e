package config

import (
	"fmt"
	"strconv"
	"time"
)

// parseEnv overlays environment variables. PORT is honoured for platforms
// that only hand out a port; ADDR wins when both are set.
func parseEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	if port, ok := lookupEnv("PORT"); ok && port != "" {
		cfg.Addr = ":" + port
	}

	strs := map[string]*string{
		"ADDR":            &cfg.Addr,
		"DATABASE_DSN":    &cfg.DatabaseDSN,
		"SESSION_BACKEND": &cfg.SessionBackend,
		"REDIS_ADDR":      &cfg.RedisAddr,
		"REDIS_PASSWORD":  &cfg.RedisPassword,
		"LOG_LEVEL":       &cfg.LogLevel,
		"LOG_FORMAT":      &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := lookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookupEnv("SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}
	if v, ok := lookupEnv("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v, ok := lookupEnv("COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = b
	}
	return nil
}
