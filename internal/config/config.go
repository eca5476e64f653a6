// Package config defines dashboard configuration and its loading layers.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// DataPath is the CSV or XLSX file the dashboard reads.
	DataPath string `koanf:"data_path"`

	// DataSheet selects the worksheet of an XLSX source. Empty means the first.
	DataSheet string `koanf:"data_sheet"`

	// DataEncoding names the text encoding of CSV sources.
	DataEncoding string `koanf:"data_encoding"`

	// CSVDelimiter is the single-character CSV field separator.
	CSVDelimiter string `koanf:"csv_delimiter"`

	// WatchData reloads the data set when the file changes.
	WatchData bool `koanf:"watch_data"`

	// PreviewRows is the number of rows shown in the data preview.
	PreviewRows int `koanf:"preview_rows"`

	// HistogramBins is the number of bins of the interest histogram.
	HistogramBins int `koanf:"histogram_bins"`

	// ChartWidth and ChartHeight size the rendered SVG charts in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBuckets are the latency histogram buckets in milliseconds.
	// Empty keeps the built-in buckets.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// Source column names.
	ColumnBrand        string `koanf:"column_brand"`
	ColumnLocationType string `koanf:"column_location_type"`
	ColumnAgeCategory  string `koanf:"column_age_category"`
	ColumnLoginTime    string `koanf:"column_login_time"`
	ColumnInterest     string `koanf:"column_interest"`
	ColumnHour         string `koanf:"column_hour"`
	ColumnDay          string `koanf:"column_day"`
}

// New creates a Config with defaults. The context is reserved for loaders
// that need it and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8501",
		DataPath:           "data_simulasi.csv",
		DataEncoding:       "utf-8",
		CSVDelimiter:       ",",
		PreviewRows:        5,
		HistogramBins:      20,
		ChartWidth:         720,
		ChartHeight:        360,
		MetricsNamespace:   "minat",
		MetricsSubsystem:   "dashboard",
		ColumnBrand:        "Merk HP",
		ColumnLocationType: "Tipe Lokasi",
		ColumnAgeCategory:  "Kategori Usia",
		ColumnLoginTime:    "Jam Login",
		ColumnInterest:     "Minat Digital",
		ColumnHour:         "Jam",
		ColumnDay:          "Hari",
	}
}

// Delimiter returns the CSV delimiter as a rune.
func (c *Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}
