package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the call
// routing administration service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	DefaultTimezone string
	ShutdownTimeout time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields and reports every
// invalid entry at once instead of stopping at the first.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:callroute.db?_foreign_keys=on",
		DefaultTimezone: "UTC",
		ShutdownTimeout: 10 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CALLROUTE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CALLROUTE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CALLROUTE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if timezone := strings.TrimSpace(os.Getenv("CALLROUTE_DEFAULT_TIMEZONE")); timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			invalid = append(invalid, "CALLROUTE_DEFAULT_TIMEZONE")
		} else {
			cfg.DefaultTimezone = timezone
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("CALLROUTE_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CALLROUTE_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
