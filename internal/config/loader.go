package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const (
	envPrefix  = "MINAT_"
	envConfig  = "MINAT_CONFIG"
	envDotFile = "MINAT_ENV_FILE"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if MINAT_CONFIG is set
//  3. env (prefix MINAT_), including values from a .env file
//
// The .env file is read from MINAT_ENV_FILE or ./.env. It never overrides
// variables already present in the environment.
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	dotenv := os.Getenv(envDotFile)
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotenv, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// MINAT_DATA_PATH -> data_path. Underscores are kept to match the flat tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataPath == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case utf8.RuneCountInString(c.CSVDelimiter) != 1:
		return fmt.Errorf("%w: csv_delimiter must be one character, got %q", ErrInvalidConfig, c.CSVDelimiter)
	case c.PreviewRows < 0:
		return fmt.Errorf("%w: preview_rows must not be negative", ErrInvalidConfig)
	case c.HistogramBins <= 0:
		return fmt.Errorf("%w: histogram_bins must be positive", ErrInvalidConfig)
	case c.ChartWidth <= 0 || c.ChartHeight <= 0:
		return fmt.Errorf("%w: chart size must be positive", ErrInvalidConfig)
	case !metricNamePart.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	case !metricNamePart.MatchString(c.MetricsSubsystem):
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name", ErrInvalidConfig, c.MetricsSubsystem)
	}
	for i := 1; i < len(c.MetricsBuckets); i++ {
		if c.MetricsBuckets[i] <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be increasing", ErrInvalidConfig)
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
