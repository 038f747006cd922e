package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

// Duration accepts either a Go duration string ("30m") or integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// jsonConfig is the on-disk shape of the config file. Pointer fields
// distinguish "absent" from zero so an omitted key keeps the default.
type jsonConfig struct {
	Addr            *string   `json:"addr"`
	DatabaseDSN     *string   `json:"database_dsn"`
	SessionBackend  *string   `json:"session_backend"`
	SessionTTL      *Duration `json:"session_ttl"`
	CookieSecure    *bool     `json:"cookie_secure"`
	RedisAddr       *string   `json:"redis_addr"`
	RedisPassword   *string   `json:"redis_password"`
	LogLevel        *string   `json:"log_level"`
	LogFormat       *string   `json:"log_format"`
	ShutdownTimeout *Duration `json:"shutdown_timeout"`
}

// configFilePath extracts the -c / -config value from args, ignoring every other flag.
func configFilePath(args []string) string {
	var path string

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(filterArgs(args, []string{"-c", "-config", "--c", "--config"}))

	return path
}

func parseJSON(cfg *Config, args []string) error {
	path := configFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if jc.SessionTTL != nil && jc.SessionTTL.Duration < 0 {
		return errors.New("parse config file: session_ttl is negative")
	}

	setString(&cfg.Addr, jc.Addr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SessionBackend, jc.SessionBackend)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.CookieSecure != nil {
		cfg.CookieSecure = *jc.CookieSecure
	}
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
