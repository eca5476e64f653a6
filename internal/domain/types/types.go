// Package types contains common types used across the application
package types

import "github.com/okian/minat/internal/domain/stats"

// Options lists the filter choices offered to the user, taken from the
// unfiltered data in first-seen order.
type Options struct {
	Brands        []string `json:"brands"`
	LocationTypes []string `json:"location_types"`
	AgeCategories []string `json:"age_categories"`
}

// Table is a rendered tabular preview.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Dashboard is everything the page shows for one filter selection.
type Dashboard struct {
	// Available is false when the source is missing or empty; only Error and
	// Warning are set then.
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
	Warning   string `json:"warning,omitempty"`

	Total    int `json:"total"`
	Filtered int `json:"filtered"`

	Options  Options `json:"options"`
	Selected Options `json:"selected"`

	Preview Table         `json:"preview"`
	Summary stats.Summary `json:"summary"`

	Histogram  []stats.Bin       `json:"histogram"`
	ByBrand    []stats.GroupMean `json:"by_brand"`
	ByLocation []stats.GroupMean `json:"by_location"`
	ByHour     []stats.GroupMean `json:"by_hour"`
}
