// Package service owns the dashboard state and implements the dependencies
// required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/minat/internal/adapters/source"
	"github.com/okian/minat/internal/domain/filter"
	"github.com/okian/minat/internal/domain/model"
	"github.com/okian/minat/internal/domain/types"
	"github.com/okian/minat/pkg/logger"
	"github.com/okian/minat/pkg/metrics"
)

const defaultWatchDebounce = 250 * time.Millisecond

// Loader reads the data set. Load may be memoized; Read always goes to the source.
type Loader interface {
	Load(ctx context.Context) (*model.RecordSet, error)
	Read(ctx context.Context) (*model.RecordSet, error)
	Path() string
}

// Service holds the current AppState and recomputes dashboards from it.
type Service struct {
	mu sync.Mutex

	loader Loader
	state  atomic.Pointer[AppState]

	// Configuration
	previewRows   int
	histogramBins int
	watch         bool
	watchDebounce time.Duration

	// State
	started bool
	cancel  context.CancelFunc
	done    chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets the data source.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPreviewRows sets how many filtered rows the preview shows.
func WithPreviewRows(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.previewRows = n
		}
	}
}

// WithHistogramBins sets the bin count of the interest histogram.
func WithHistogramBins(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.histogramBins = n
		}
	}
}

// WithWatch reloads the data set whenever the source file changes.
func WithWatch(enabled bool) Option {
	return func(s *Service) {
		s.watch = enabled
	}
}

// WithWatchDebounce sets how long file events must settle before a reload.
func WithWatchDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.watchDebounce = d
		}
	}
}

// New constructs a Service. Without WithLoader it reads data_simulasi.csv.
func New(opts ...Option) *Service {
	s := &Service{
		previewRows:   defaultPreviewRows,
		histogramBins: defaultHistogramBins,
		watchDebounce: defaultWatchDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = source.NewLoader("data_simulasi.csv")
	}
	return s
}

// Start loads the data set and, if enabled, starts watching the source.
// A missing source is not an error: the state then carries the warning.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting dashboard service...", logger.String("source", s.loader.Path()))

	state, err := s.build(ctx, s.loader.Load)
	if err != nil {
		return err
	}
	s.state.Store(state)

	if s.watch {
		if err := s.startWatcher(ctx); err != nil {
			s.logger.Warn(ctx, "data watcher disabled", logger.Error(err))
			metrics.RecordErrorByComponent("watcher", "start")
		}
	}

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("rows", state.Records().Len()),
		logger.Bool("available", state.Available()),
		logger.Bool("watch", s.watch),
	)
	return nil
}

// Stop shuts down the watcher, if any.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping dashboard service...")
	if s.cancel != nil {
		s.cancel()
		<-s.done
		s.cancel, s.done = nil, nil
	}
	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// State returns the current AppState, or an empty one before Start.
func (s *Service) State() *AppState {
	if st := s.state.Load(); st != nil {
		return st
	}
	return NewAppState(model.Empty(), nil, s.stateConfig())
}

// Dashboard recomputes every output for sel against the current state.
func (s *Service) Dashboard(ctx context.Context, sel filter.Selection) (types.Dashboard, error) {
	start := time.Now()
	d, err := Recompute(s.State(), sel)
	if err != nil {
		metrics.RecordErrorByComponent("recompute", "aggregate")
		return types.Dashboard{}, err
	}
	took := time.Since(start)
	metrics.RecordRecompute(d.Filtered, float64(took.Microseconds())/1000)
	if s.logger != nil {
		s.logger.Debug(ctx, "dashboard recomputed",
			logger.Int("filtered", d.Filtered),
			logger.Int("total", d.Total),
			logger.Duration("took", took),
		)
	}
	return d, nil
}

// Options returns the filter domains of the full data set.
func (s *Service) Options(_ context.Context) types.Options {
	return s.State().Options()
}

// Reload reads the source again and swaps in the new state. On failure the
// previous state stays in place.
func (s *Service) Reload(ctx context.Context) error {
	state, err := s.build(ctx, s.loader.Read)
	if err != nil {
		return err
	}
	if lerr := state.LoadErr(); lerr != nil {
		return lerr
	}
	s.state.Store(state)
	if s.logger != nil {
		s.logger.Info(ctx, "data set reloaded", logger.Int("rows", state.Records().Len()))
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	st := s.State()
	stats := map[string]interface{}{
		"started":   started,
		"source":    s.loader.Path(),
		"available": st.Available(),
		"rows":      st.Records().Len(),
		"loadedAt":  st.LoadedAt().UTC().Format(time.RFC3339),
		"watch":     s.watch,
	}
	if err := st.LoadErr(); err != nil {
		stats["loadError"] = err.Error()
	}
	metrics.UpdateDatasetRows(st.Records().Len())
	return stats
}

func (s *Service) stateConfig() StateConfig {
	return StateConfig{
		Source:        s.loader.Path(),
		PreviewRows:   s.previewRows,
		HistogramBins: s.histogramBins,
	}
}

// build runs load and turns its result into a state. ErrMissingSource is
// kept in the state; any other error is returned.
func (s *Service) build(ctx context.Context, load func(context.Context) (*model.RecordSet, error)) (*AppState, error) {
	start := time.Now()
	rs, err := load(ctx)
	took := float64(time.Since(start).Microseconds()) / 1000

	switch {
	case err == nil:
		metrics.RecordDatasetLoad(metrics.LoadOK, took)
	case errors.Is(err, source.ErrMissingSource):
		metrics.RecordDatasetLoad(metrics.LoadMissing, took)
		metrics.RecordErrorByComponent("loader", "missing_source")
		if s.logger != nil {
			s.logger.Warn(ctx, "data source missing", logger.String("source", s.loader.Path()), logger.Error(err))
		}
		return NewAppState(model.Empty(), err, s.stateConfig()), nil
	default:
		metrics.RecordDatasetLoad(metrics.LoadError, took)
		metrics.RecordErrorByComponent("loader", "load")
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	metrics.UpdateDatasetRows(rs.Len())
	return NewAppState(rs, nil, s.stateConfig()), nil
}

func (s *Service) startWatcher(ctx context.Context) error {
	w, err := source.NewWatcher(s.loader.Path(), s.watchDebounce)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go func() {
		defer close(done)
		defer func() { _ = w.Close() }()
		err := w.Run(wctx, func(ctx context.Context) {
			if err := s.Reload(ctx); err != nil {
				s.logger.Warn(ctx, "reload failed; keeping previous data", logger.Error(err))
				metrics.RecordErrorByComponent("watcher", "reload")
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error(wctx, "data watcher stopped", logger.Error(err))
			metrics.RecordErrorByComponent("watcher", "run")
		}
	}()
	return nil
}
