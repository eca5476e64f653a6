package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/minat/internal/adapters/source"
	"github.com/okian/minat/internal/domain/filter"
	"github.com/okian/minat/internal/domain/model"
	"github.com/okian/minat/internal/domain/stats"
	"github.com/okian/minat/internal/domain/types"
)

const (
	defaultPreviewRows   = 5
	defaultHistogramBins = 20
)

// StateConfig carries the presentation settings baked into an AppState.
type StateConfig struct {
	// Source is the data file path shown in messages.
	Source        string
	PreviewRows   int
	HistogramBins int
}

// AppState is the immutable full data set plus what every recompute needs
// from it. It is built once per load and shared read-only.
type AppState struct {
	records  *model.RecordSet
	options  types.Options
	loadErr  error
	source   string
	loadedAt time.Time

	previewRows   int
	histogramBins int
}

// NewAppState builds the state for a loaded record set. loadErr is the
// loader's recoverable error, if any.
func NewAppState(rs *model.RecordSet, loadErr error, cfg StateConfig) *AppState {
	if rs == nil {
		rs = model.Empty()
	}
	if cfg.PreviewRows < 0 {
		cfg.PreviewRows = defaultPreviewRows
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = defaultHistogramBins
	}
	return &AppState{
		records: rs,
		options: types.Options{
			Brands:        filter.Domain(rs, model.FieldBrand),
			LocationTypes: filter.Domain(rs, model.FieldLocationType),
			AgeCategories: filter.Domain(rs, model.FieldAgeCategory),
		},
		loadErr:       loadErr,
		source:        cfg.Source,
		loadedAt:      time.Now(),
		previewRows:   cfg.PreviewRows,
		histogramBins: cfg.HistogramBins,
	}
}

// Records returns the full record set.
func (s *AppState) Records() *model.RecordSet { return s.records }

// Options returns the filter domains of the full set.
func (s *AppState) Options() types.Options { return s.options }

// LoadErr returns the recoverable load error, if any.
func (s *AppState) LoadErr() error { return s.loadErr }

// LoadedAt returns when the state was built.
func (s *AppState) LoadedAt() time.Time { return s.loadedAt }

// Available reports whether there is anything to show.
func (s *AppState) Available() bool {
	return s.loadErr == nil && s.records.Len() > 0
}

// Warning is the message shown in place of the dashboard.
func (s *AppState) Warning() string {
	return fmt.Sprintf("Tidak ada data untuk ditampilkan. Pastikan '%s' tersedia dan berisi data.", s.source)
}

func (s *AppState) errorText() string {
	if s.loadErr == nil {
		return ""
	}
	if errors.Is(s.loadErr, source.ErrMissingSource) {
		return fmt.Sprintf("Error: '%s' not found. Please make sure the file is in the same directory.", s.source)
	}
	return s.loadErr.Error()
}

// Recompute filters the full set by sel and aggregates every output of the
// dashboard. It reads state and never modifies it.
func Recompute(state *AppState, sel filter.Selection) (types.Dashboard, error) {
	if !state.Available() {
		return types.Dashboard{
			Available: false,
			Error:     state.errorText(),
			Warning:   state.Warning(),
			Total:     state.records.Len(),
			Options:   emptyOptions(),
			Selected:  emptyOptions(),
		}, nil
	}

	full := state.records
	brands, locations, ages := sel.Resolve(full)
	view := filter.Apply(full, brands, locations, ages)

	d := types.Dashboard{
		Available: true,
		Total:     full.Len(),
		Filtered:  view.Len(),
		Options:   state.options,
		Selected: types.Options{
			Brands:        selected(state.options.Brands, brands),
			LocationTypes: selected(state.options.LocationTypes, locations),
			AgeCategories: selected(state.options.AgeCategories, ages),
		},
		Preview: preview(view, state.previewRows),
		Summary: stats.Summarize(view),
	}

	interest := make([]float64, view.Len())
	for i := range interest {
		interest[i] = view.Record(i).Interest
	}
	d.Histogram = stats.Histogram(interest, state.histogramBins)

	var err error
	if d.ByBrand, err = stats.MeanByGroup(view, model.FieldBrand, model.FieldInterest); err != nil {
		return types.Dashboard{}, fmt.Errorf("group by brand: %w", err)
	}
	if d.ByLocation, err = stats.MeanByGroup(view, model.FieldLocationType, model.FieldInterest); err != nil {
		return types.Dashboard{}, fmt.Errorf("group by location: %w", err)
	}
	if d.ByHour, err = stats.MeanByGroup(view, model.FieldHour, model.FieldInterest); err != nil {
		return types.Dashboard{}, fmt.Errorf("group by hour: %w", err)
	}
	return d, nil
}

// selected keeps the options that are in set, in option order.
func selected(options []string, set filter.Set) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if set.Has(o) {
			out = append(out, o)
		}
	}
	return out
}

func preview(rs *model.RecordSet, n int) types.Table {
	head := rs.Head(n)
	cols := head.Columns()
	t := types.Table{
		Columns: make([]string, len(cols)),
		Rows:    make([][]string, head.Len()),
	}
	for j, c := range cols {
		t.Columns[j] = c.Name
	}
	for i := range t.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = head.Cell(i, c)
		}
		t.Rows[i] = row
	}
	return t
}

func emptyOptions() types.Options {
	return types.Options{Brands: []string{}, LocationTypes: []string{}, AgeCategories: []string{}}
}
