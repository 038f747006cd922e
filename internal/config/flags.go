package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// parseFlags overlays command-line flags.
//
//	-a string     listen address (e.g. ":8080")
//	-d string     SQLite DSN
//	-s string     session backend: memory or redis
//	-t duration   session lifetime
//	-r string     redis address
//	-l string     log level
//	-secure       mark session cookies Secure
func parseFlags(cfg *Config, args []string) error {
	args = filterArgs(args, []string{"-a", "-d", "-s", "-t", "-r", "-l", "-secure"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SessionBackend, "s", cfg.SessionBackend, "session backend (memory|redis)")
	fs.DurationVar(&cfg.SessionTTL, "t", cfg.SessionTTL, "session lifetime")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.BoolVar(&cfg.CookieSecure, "secure", cfg.CookieSecure, "mark session cookies Secure")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}

// filterArgs keeps only the allowed flags and their values, so each parser
// can ignore flags that belong to another one.
//
// Both "-f value" and "-f=value" forms are recognised. A bare boolean flag
// followed by a non-flag argument will swallow it; pass booleans as -f=true.
func filterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}
	return filtered
}
