/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string
	DBBackend   DatabaseBackend
	DBDSN       string

	// Streaming collaborator (Subsonic-compatible server fronting the files)
	StreamBaseURL string

	// Per-station advance lock. With an empty RedisAddr a process-local
	// keyed mutex is used instead of a Redis lease.
	AdvanceLockEnabled bool
	RedisAddr          string
	RedisPassword      string
	RedisDB            int

	// Tune-in offset behaviour ("joining a broadcast already in progress")
	TuneInEnabled     bool
	TuneInMaxFraction float64
	TuneInMinHeadSec  int
	TuneInMinTailSec  int
	TuneInProbability float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("SKALD_ENV", "development"),
		HTTPBind:    getEnv("SKALD_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("SKALD_HTTP_PORT", 8080),
		MetricsBind: getEnv("SKALD_METRICS_BIND", "127.0.0.1:9000"),
		DBBackend:   DatabaseBackend(getEnv("SKALD_DB_BACKEND", string(DatabasePostgres))),
		DBDSN:       getEnv("SKALD_DB_DSN", ""),

		StreamBaseURL: getEnv("SKALD_STREAM_BASE_URL", ""),

		AdvanceLockEnabled: getEnvBool("SKALD_ADVANCE_LOCK_ENABLED", true),
		RedisAddr:          getEnv("SKALD_REDIS_ADDR", ""),
		RedisPassword:      getEnv("SKALD_REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("SKALD_REDIS_DB", 0),

		TuneInEnabled:     getEnvBool("SKALD_TUNEIN_ENABLED", true),
		TuneInMaxFraction: getEnvFloat("SKALD_TUNEIN_MAX_FRACTION", 0.5),
		TuneInMinHeadSec:  getEnvInt("SKALD_TUNEIN_MIN_HEAD_SEC", 15),
		TuneInMinTailSec:  getEnvInt("SKALD_TUNEIN_MIN_TAIL_SEC", 45),
		TuneInProbability: getEnvFloat("SKALD_TUNEIN_PROBABILITY", 0.75),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("SKALD_DB_DSN must be provided")
	}

	if cfg.TuneInMaxFraction <= 0 || cfg.TuneInMaxFraction > 1 {
		return nil, fmt.Errorf("SKALD_TUNEIN_MAX_FRACTION must be in (0,1], got %v", cfg.TuneInMaxFraction)
	}

	if cfg.TuneInProbability < 0 || cfg.TuneInProbability > 1 {
		return nil, fmt.Errorf("SKALD_TUNEIN_PROBABILITY must be in [0,1], got %v", cfg.TuneInProbability)
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}
