package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ErrMissingAPIToken is returned by Validate when no WAQI token is configured.
var ErrMissingAPIToken = errors.New("AQICN API token not found in environment")

// DefaultZones lists the zones the batch runs, in order. Spellings match the
// Zone column of the station roster.
var DefaultZones = []string{
	"Central Zone",
	"City S.P.Zone",
	"Civil Line",
	"Karolbagh",
	"Keshavpuram",
	"Najafgarh Zone",
	"Narela",
}

type Config struct {
	Log struct {
		Level  string
		Format string
	}

	WAQI struct {
		APIToken string
		BaseURL  string
		Timeout  time.Duration
		Delay    time.Duration
	}

	Roster struct {
		CSVPath   string
		OutputDir string
	}

	Batch struct {
		Zones    []string
		Schedule string
	}

	Wards struct {
		TextPath   string
		OutputPath string
	}

	// Warnings collects settings that were rejected and replaced by their
	// defaults. LoadConfig runs before the logger exists, so callers log
	// them with LogWarnings.
	Warnings []string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "console")

	// WAQI API configuration
	cfg.WAQI.APIToken = getEnv("AQICN_API_TOKEN", os.Getenv("aqicn_api"))
	cfg.WAQI.BaseURL = strings.TrimRight(getEnv("WAQI_BASE_URL", "https://api.waqi.info"), "/")
	cfg.WAQI.Timeout = cfg.parseDuration("REQUEST_TIMEOUT", 15*time.Second, false)
	cfg.WAQI.Delay = cfg.parseDuration("REQUEST_DELAY", time.Second, true)

	// Ward roster and output
	cfg.Roster.CSVPath = getEnv("ROSTER_CSV_PATH", "data_source/Ward_monitoring.csv")
	cfg.Roster.OutputDir = getEnv("OUTPUT_DIR", "dynamic_ward_data")

	// Batch configuration
	cfg.Batch.Zones = splitList(os.Getenv("ZONES"))
	if len(cfg.Batch.Zones) == 0 {
		cfg.Batch.Zones = append([]string(nil), DefaultZones...)
	}
	cfg.Batch.Schedule = getEnv("BATCH_SCHEDULE", "")

	// Ward text parser
	cfg.Wards.TextPath = getEnv("WARDS_TEXT_PATH", "wards.txt")
	cfg.Wards.OutputPath = getEnv("WARDS_TS_PATH", "frontend/lib/delhi-wards.ts")

	return cfg, nil
}

// Validate checks the settings needed to talk to the WAQI API.
func (c *Config) Validate() error {
	if c.WAQI.APIToken == "" {
		return ErrMissingAPIToken
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration reads key as a Go duration. Unparsable or negative values,
// and zero unless allowZero is set, fall back to def.
func (c *Config) parseDuration(key string, def time.Duration, allowZero bool) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return def
	}

	duration, err := time.ParseDuration(value)
	switch {
	case err != nil:
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q is not a duration, using %s", key, value, def))
		return def
	case duration < 0 || (duration == 0 && !allowZero):
		c.Warnings = append(c.Warnings, fmt.Sprintf("%s=%q must be positive, using %s", key, value, def))
		return def
	}
	return duration
}

// LogWarnings reports the settings LoadConfig replaced with defaults.
func (c *Config) LogWarnings(logger *zap.Logger) {
	for _, w := range c.Warnings {
		logger.Warn("Invalid configuration value", zap.String("detail", w))
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
