package api

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/minat/internal/domain/stats"
	"github.com/okian/minat/internal/domain/types"
	"github.com/okian/minat/pkg/logger"
	"github.com/okian/minat/pkg/metrics"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Chart names as used in /charts/{name}.svg.
const (
	ChartHistogram = "histogram"
	ChartBrand     = "brand"
	ChartLocation  = "location"
	ChartHour      = "hour"
)

// ChartNames lists the charts in page order.
var ChartNames = []string{ChartHistogram, ChartBrand, ChartLocation, ChartHour}

// Colors follow the qualitative palettes the page uses per chart.
var (
	histogramColor = "636EFA"
	brandPalette   = []string{"E41A1C", "377EB8", "4DAF4A", "984EA3", "FF7F00", "FFFF33", "A65628", "F781BF", "999999"}
	locationColors = []string{"66C2A5", "FC8D62", "8DA0CB", "E78AC3", "A6D854", "FFD92F", "E5C494", "B3B3B3"}
	hourColor      = "66C5CC"
)

// ChartRenderer draws dashboard charts as SVG.
type ChartRenderer struct {
	Width  int
	Height int
}

// DefaultChartRenderer returns a renderer sized for a two-column page.
func DefaultChartRenderer() ChartRenderer {
	return ChartRenderer{Width: 720, Height: 360}
}

// Render writes the named chart of d to w.
func (c ChartRenderer) Render(w io.Writer, name string, d types.Dashboard) error {
	switch name {
	case ChartHistogram:
		return c.Histogram(w, d.Histogram)
	case ChartBrand:
		return c.Bars(w, "Rata-rata Minat Digital per Merk HP", d.ByBrand, brandPalette)
	case ChartLocation:
		return c.Bars(w, "Rata-rata Minat Digital per Tipe Lokasi", d.ByLocation, locationColors)
	case ChartHour:
		return c.HourLine(w, d.ByHour)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

// Histogram draws one bar per bin, centered on the bin.
func (c ChartRenderer) Histogram(w io.Writer, bins []stats.Bin) error {
	const title = "Histogram Minat Digital"
	if len(bins) == 0 {
		return c.placeholder(w, title)
	}
	xs := make([]float64, len(bins))
	ys := make([]float64, len(bins))
	top := 0
	for i, b := range bins {
		xs[i] = (b.Lower + b.Upper) / 2
		ys[i] = float64(b.Count)
		top = max(top, b.Count)
	}
	if top == 0 {
		top = 1
	}
	color := drawing.ColorFromHex(histogramColor)

	ch := chart.Chart{
		Title:      title,
		Width:      c.Width,
		Height:     c.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Skor Minat Digital",
			Range: &chart.ContinuousRange{Min: bins[0].Lower, Max: bins[len(bins)-1].Upper},
		},
		YAxis: chart.YAxis{
			Name:  "count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top) * 1.1},
		},
		Series: []chart.Series{
			chart.HistogramSeries{
				Name:  "Minat Digital",
				Style: chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1},
				InnerSeries: chart.ContinuousSeries{
					XValues: xs,
					YValues: ys,
				},
			},
		},
	}
	return ch.Render(chart.SVG, w)
}

// Bars draws the mean of each group. Groups without a defined mean are left
// out. The SVG writer emits text verbatim, so labels from the data are escaped.
func (c ChartRenderer) Bars(w io.Writer, title string, groups []stats.GroupMean, palette []string) error {
	bars := make([]chart.Value, 0, len(groups))
	top := 0.0
	for i, g := range groups {
		if math.IsNaN(g.Mean) {
			continue
		}
		bars = append(bars, chart.Value{
			Label: html.EscapeString(g.Key),
			Value: g.Mean,
			Style: fill(palette[i%len(palette)]),
		})
		top = math.Max(top, g.Mean)
	}
	if len(bars) == 0 {
		return c.placeholder(w, title)
	}
	return c.barChart(w, title, bars, top)
}

// HourLine draws mean interest per login hour with markers. Hours without
// rows are not drawn, so the line joins the hours that are present.
func (c ChartRenderer) HourLine(w io.Writer, groups []stats.GroupMean) error {
	const title = "Rata-rata Minat Digital Berdasarkan Jam Login"
	xs := make([]float64, 0, len(groups))
	ys := make([]float64, 0, len(groups))
	for _, g := range groups {
		if math.IsNaN(g.Mean) {
			continue
		}
		xs = append(xs, g.Number)
		ys = append(ys, g.Mean)
	}
	if len(xs) == 0 {
		return c.placeholder(w, title)
	}

	ticks := make([]chart.Tick, 24)
	for h := range ticks {
		ticks[h] = chart.Tick{Value: float64(h), Label: strconv.Itoa(h)}
	}
	lo, hi := paddedRange(ys)
	color := drawing.ColorFromHex(hourColor)

	ch := chart.Chart{
		Title:      title,
		Width:      c.Width,
		Height:     c.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Jam Login (0-23)",
			Range: &chart.ContinuousRange{Min: 0, Max: 23},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "Rata-rata Minat Digital",
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Minat Digital",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: color,
					DotWidth:    4,
					DotColor:    color,
				},
			},
		},
	}
	return ch.Render(chart.SVG, w)
}

// barChart leaves labels unwrapped. Wrapping may cut an escaped label inside
// an entity.
func (c ChartRenderer) barChart(w io.Writer, title string, bars []chart.Value, top float64) error {
	spacing := 8
	width := (c.Width - 120 - spacing*len(bars)) / len(bars)
	if width < 4 {
		width, spacing = 4, 2
	}
	if top <= 0 {
		top = 1
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      c.Width,
		Height:     c.Height,
		BarWidth:   width,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{FontSize: 8, TextWrap: chart.TextWrapNone},
		YAxis: chart.YAxis{
			Name:  "Rata-rata Minat Digital",
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}
	return bc.Render(chart.SVG, w)
}

// placeholder is a plain SVG telling the user the chart has no data.
func (c ChartRenderer) placeholder(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><text x="50%%" y="30" text-anchor="middle" font-family="sans-serif" font-size="14">%s</text><text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="12" fill="#888">Tidak ada data</text></svg>`,
		c.Width, c.Height, html.EscapeString(title))
	return err
}

// paddedRange returns a y range around values that never has zero width.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func fill(hex string) chart.Style {
	c := drawing.ColorFromHex(hex)
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}

// ChartHandler serves single charts as SVG documents.
type ChartHandler struct {
	deps     Dependencies
	renderer ChartRenderer
	logger   logger.Logger
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps Dependencies, renderer ChartRenderer, l logger.Logger) *ChartHandler {
	return &ChartHandler{deps: deps, renderer: renderer, logger: l}
}

// HandleChart handles GET /charts/{name}.svg with the page's filter parameters.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/charts/"), ".svg")
	if !ok || !knownChart(name) {
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrUnknownChart, fmt.Errorf("%q", r.URL.Path)))
		return
	}

	d, err := h.deps.Dashboard(r.Context(), parseSelection(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "recompute_failed", WrapKind(op, ErrRecompute, err))
		return
	}
	if !d.Available {
		writeError(w, http.StatusServiceUnavailable, "no_data", NewKind(op, ErrNoData))
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, d); err != nil {
		metrics.RecordChartRender(name, "error")
		if h.logger != nil {
			h.logger.Error(r.Context(), "chart render failed", logger.String("chart", name), logger.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "render_failed", WrapKind(op, ErrRender, err))
		return
	}
	metrics.RecordChartRender(name, "ok")
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(buf.Bytes())
}

func knownChart(name string) bool {
	for _, n := range ChartNames {
		if n == name {
			return true
		}
	}
	return false
}
