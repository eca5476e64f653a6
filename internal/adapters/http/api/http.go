// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/minat/internal/domain/filter"
	"github.com/okian/minat/internal/domain/types"
	"github.com/okian/minat/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Dashboard recomputes every output for one filter selection.
	Dashboard(ctx context.Context, sel filter.Selection) (types.Dashboard, error)

	// Options returns the filter domains of the unfiltered data.
	Options(ctx context.Context) types.Options
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *dashboardHandler
	dataHandler      *DataHandler
	chartHandler     *ChartHandler
}

// Option configures a Server.
type Option func(*settings)

type settings struct {
	logger logger.Logger
	charts ChartRenderer
}

// WithLogger sets the logger used for render failures.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChartSize sets the pixel size of rendered charts.
func WithChartSize(width, height int) Option {
	return func(s *settings) {
		if width > 0 && height > 0 {
			s.charts = ChartRenderer{Width: width, Height: height}
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := settings{charts: DefaultChartRenderer()}
	for _, opt := range opts {
		opt(&s)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: newDashboardHandler(deps, s.charts, s.logger),
		dataHandler:      NewDataHandler(deps),
		chartHandler:     NewChartHandler(deps, s.charts, s.logger),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/dashboard", MetricsMiddleware(s.dataHandler.HandleDashboard, "api_dashboard"))
	mux.HandleFunc("/api/options", MetricsMiddleware(s.dataHandler.HandleOptions, "api_options"))
	mux.HandleFunc("/charts/", MetricsMiddleware(s.chartHandler.HandleChart, "charts"))
	mux.HandleFunc("/", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
