package api

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/minat/internal/domain/model"
	"github.com/okian/minat/internal/domain/stats"
	"github.com/okian/minat/internal/domain/types"
	"github.com/okian/minat/pkg/logger"
	"github.com/okian/minat/pkg/metrics"
)

const pageTitle = "Simple Dashboard Presentasi Data Simulasi"

// dashboardHandler renders the single dashboard page.
type dashboardHandler struct {
	deps   Dependencies
	charts ChartRenderer
	logger logger.Logger
}

func newDashboardHandler(deps Dependencies, charts ChartRenderer, l logger.Logger) *dashboardHandler {
	return &dashboardHandler{deps: deps, charts: charts, logger: l}
}

type choice struct {
	Value    string
	Selected bool
}

type multiselect struct {
	Label   string
	Param   string
	Choices []choice
}

type chartSection struct {
	Heading string
	Name    string
	Href    template.URL
	SVG     template.HTML
}

type pageView struct {
	Title     string
	Available bool
	Error     string
	Warning   string

	Filters  []multiselect
	RowCount string

	Preview     types.Table
	Numeric     types.Table
	Categorical types.Table
	Types       types.Table

	Charts []chartSection
}

// HandleDashboard handles GET / with the filter selection in the query.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	d, err := h.deps.Dashboard(r.Context(), parseSelection(r.URL.Query()))
	if err != nil {
		h.logError(r, "recompute failed", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	view := h.buildView(r, d)
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		h.logError(r, "page render failed", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *dashboardHandler) buildView(r *http.Request, d types.Dashboard) pageView {
	v := pageView{
		Title:     pageTitle,
		Available: d.Available,
		Error:     d.Error,
		Warning:   d.Warning,
	}
	if !d.Available {
		return v
	}

	v.Filters = []multiselect{
		newMultiselect("Pilih Merk HP:", paramBrand, d.Options.Brands, d.Selected.Brands),
		newMultiselect("Pilih Tipe Lokasi:", paramLocation, d.Options.LocationTypes, d.Selected.LocationTypes),
		newMultiselect("Pilih Kategori Usia:", paramAge, d.Options.AgeCategories, d.Selected.AgeCategories),
	}
	v.RowCount = fmt.Sprintf("Jumlah baris setelah filter: %d dari %d", d.Filtered, d.Total)
	query := encodeSelection(d.Selected.Brands, d.Selected.LocationTypes, d.Selected.AgeCategories)
	v.Preview = d.Preview
	v.Numeric = numericTable(d.Summary.Numeric)
	v.Categorical = categoricalTable(d.Summary.Categorical)
	v.Types = typesTable(d.Summary.Types)

	sections := []struct{ heading, name string }{
		{"Distribusi Minat Digital", ChartHistogram},
		{"Minat Digital Berdasarkan Merk HP", ChartBrand},
		{"Minat Digital Berdasarkan Tipe Lokasi", ChartLocation},
		{"Minat Digital Berdasarkan Waktu Login (Jam)", ChartHour},
	}
	for _, s := range sections {
		var buf bytes.Buffer
		if err := h.charts.Render(&buf, s.name, d); err != nil {
			metrics.RecordChartRender(s.name, "error")
			h.logError(r, "chart render failed", err)
			buf.Reset()
			_ = h.charts.placeholder(&buf, s.heading)
		} else {
			metrics.RecordChartRender(s.name, "ok")
		}
		//nolint:gosec // the query is url-encoded and chart labels are escaped before rendering
		v.Charts = append(v.Charts, chartSection{
			Heading: s.heading,
			Name:    s.name,
			Href:    template.URL("/charts/" + s.name + ".svg?" + query),
			SVG:     template.HTML(buf.String()),
		})
	}
	return v
}

func (h *dashboardHandler) logError(r *http.Request, msg string, err error) {
	if h.logger == nil {
		return
	}
	h.logger.Error(r.Context(), msg, logger.String("path", r.URL.Path), logger.Error(err))
}

func newMultiselect(label, param string, options, selected []string) multiselect {
	on := make(map[string]bool, len(selected))
	for _, s := range selected {
		on[s] = true
	}
	m := multiselect{Label: label, Param: param, Choices: make([]choice, len(options))}
	for i, o := range options {
		m.Choices[i] = choice{Value: o, Selected: on[o]}
	}
	return m
}

// numericTable lays out numeric stats with one column per data column and one
// row per statistic.
func numericTable(cols []stats.NumericStats) types.Table {
	t := types.Table{Columns: []string{""}}
	labels := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	t.Rows = make([][]string, len(labels))
	for i, l := range labels {
		t.Rows[i] = []string{l}
	}
	for _, c := range cols {
		t.Columns = append(t.Columns, c.Column)
		values := []float64{float64(c.Count), c.Mean, c.Std, c.Min, c.Q25, c.Q50, c.Q75, c.Max}
		for i, v := range values {
			t.Rows[i] = append(t.Rows[i], formatNumber(v))
		}
	}
	return t
}

func categoricalTable(cols []stats.CategoricalStats) types.Table {
	t := types.Table{
		Columns: []string{""},
		Rows:    [][]string{{"count"}, {"unique"}, {"top"}, {"freq"}},
	}
	for _, c := range cols {
		t.Columns = append(t.Columns, c.Column)
		top := c.Top
		if c.Count == 0 {
			top = "NaN"
		}
		t.Rows[0] = append(t.Rows[0], strconv.Itoa(c.Count))
		t.Rows[1] = append(t.Rows[1], strconv.Itoa(c.Unique))
		t.Rows[2] = append(t.Rows[2], top)
		t.Rows[3] = append(t.Rows[3], strconv.Itoa(c.Freq))
	}
	return t
}

func typesTable(cols []stats.ColumnType) types.Table {
	t := types.Table{Columns: []string{"", "Data Type"}, Rows: make([][]string, len(cols))}
	for i, c := range cols {
		t.Rows[i] = []string{c.Column, dtypeName(c.Kind)}
	}
	return t
}

func dtypeName(k model.Kind) string {
	switch k {
	case model.KindInteger:
		return "int64"
	case model.KindFloat:
		return "float64"
	case model.KindTimestamp:
		return "datetime64[ns]"
	default:
		return "object"
	}
}

// formatNumber prints up to six decimals without trailing zeros. NaN prints as "NaN".
func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}
