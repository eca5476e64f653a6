package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/okian/minat/internal/adapters/http/api"
	"github.com/okian/minat/internal/adapters/http/site"
	"github.com/okian/minat/internal/adapters/http/swagger"
	"github.com/okian/minat/internal/adapters/source"
	app "github.com/okian/minat/internal/app"
	"github.com/okian/minat/internal/config"
	"github.com/okian/minat/pkg/logger"
	"github.com/okian/minat/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Runtime metrics are exported from our own registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	metrics.Init(metricsOptions(cfg)...)

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.String("data_path", cfg.DataPath), logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// metricsOptions names the metrics from cfg and labels them with the data file.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithConstLabels(map[string]string{"source": filepath.Base(cfg.DataPath)}),
	}
}

// newService wires the data loader and the dashboard service from cfg.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	loader := source.NewLoader(cfg.DataPath,
		source.WithColumns(source.Columns{
			Brand:        cfg.ColumnBrand,
			LocationType: cfg.ColumnLocationType,
			AgeCategory:  cfg.ColumnAgeCategory,
			LoginTime:    cfg.ColumnLoginTime,
			Interest:     cfg.ColumnInterest,
			Hour:         cfg.ColumnHour,
			Day:          cfg.ColumnDay,
		}),
		source.WithEncoding(cfg.DataEncoding),
		source.WithDelimiter(cfg.Delimiter()),
		source.WithSheet(cfg.DataSheet),
	)
	return app.New(
		app.WithLoader(loader),
		app.WithLogger(log),
		app.WithPreviewRows(cfg.PreviewRows),
		app.WithHistogramBins(cfg.HistogramBins),
		app.WithWatch(cfg.WatchData),
	)
}

// newMux registers every route of the dashboard.
func newMux(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc, svc,
		api.WithLogger(log),
		api.WithChartSize(cfg.ChartWidth, cfg.ChartHeight),
	).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater refreshes runtime gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	metrics.UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateSystemMetrics()
		}
	}
}
