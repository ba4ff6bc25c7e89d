package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"propflow/internal/ingest/metrics"
	"propflow/internal/ingest/sources"
	"propflow/internal/property"
)

// ErrPipelineNotFound is returned when a run is requested for a source name
// that was never registered.
var ErrPipelineNotFound = errors.New("pipeline not registered")

// Manager is the registry mapping source name to configured pipeline. All
// pipelines share one transformer, validator, and loader; each gets its own
// extractor adapter chosen by the sources factory.
type Manager struct {
	mu        sync.RWMutex
	pipelines map[sources.SourceName]*Pipeline
	order     []sources.SourceName

	transformer Transformer
	validator   Validator
	loader      Loader
	logger      *slog.Logger
	metrics     *metrics.Metrics
	sourceOpts  []sources.Option
	factory     func(desc sources.Descriptor) Extractor
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the manager's logger, shared with its pipelines.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithManagerMetrics sets the metrics sink shared with the pipelines.
func WithManagerMetrics(mx *metrics.Metrics) ManagerOption {
	return func(m *Manager) { m.metrics = mx }
}

// WithSourceOptions forwards options to the extractor factory, mainly for
// overriding HTTP clients and base URLs in tests.
func WithSourceOptions(opts ...sources.Option) ManagerOption {
	return func(m *Manager) { m.sourceOpts = opts }
}

// WithExtractorFactory replaces the adapter selection entirely. Tests use
// this to inject extractors with scripted behavior.
func WithExtractorFactory(factory func(desc sources.Descriptor) Extractor) ManagerOption {
	return func(m *Manager) { m.factory = factory }
}

// NewManager constructs a Manager around the shared stages.
func NewManager(t Transformer, v Validator, l Loader, opts ...ManagerOption) *Manager {
	m := &Manager{
		pipelines:   make(map[sources.SourceName]*Pipeline),
		transformer: t,
		validator:   v,
		loader:      l,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register builds the extractor for the descriptor and stores the configured
// pipeline under the descriptor's name. Re-registering a name replaces the
// prior pipeline but keeps its position in the run order.
func (m *Manager) Register(desc sources.Descriptor) {
	var extractor Extractor
	if m.factory != nil {
		extractor = m.factory(desc)
	} else {
		opts := append([]sources.Option{sources.WithLogger(m.logger)}, m.sourceOpts...)
		extractor = sources.New(desc, opts...)
	}

	p := New(desc, extractor, m.transformer, m.validator, m.loader,
		WithLogger(m.logger),
		WithMetrics(m.metrics),
	)

	m.mu.Lock()
	if _, exists := m.pipelines[desc.Name]; !exists {
		m.order = append(m.order, desc.Name)
	}
	m.pipelines[desc.Name] = p
	m.mu.Unlock()

	m.logger.Info("pipeline registered",
		"source", desc.Name,
		"adapter", extractor.Source(),
		"coverage", len(desc.Coverage),
		"cadence", desc.Cadence,
	)
}

// RunPipeline runs exactly one registered pipeline. The unregistered-name
// error is the only way a caller sees an error instead of a summary.
func (m *Manager) RunPipeline(ctx context.Context, name sources.SourceName) (property.RunSummary, error) {
	m.mu.RLock()
	p, ok := m.pipelines[name]
	m.mu.RUnlock()
	if !ok {
		return property.RunSummary{}, fmt.Errorf("%w: %s", ErrPipelineNotFound, name)
	}
	return p.Run(ctx), nil
}

// RunAll runs every registered pipeline sequentially in registration order.
// Each pipeline's failure is contained in its own summary, so one broken
// source never stops the ones after it.
func (m *Manager) RunAll(ctx context.Context) []property.RunSummary {
	m.mu.RLock()
	order := make([]sources.SourceName, len(m.order))
	copy(order, m.order)
	pipelines := make(map[sources.SourceName]*Pipeline, len(m.pipelines))
	for name, p := range m.pipelines {
		pipelines[name] = p
	}
	m.mu.RUnlock()

	summaries := make([]property.RunSummary, 0, len(order))
	for _, name := range order {
		summaries = append(summaries, pipelines[name].Run(ctx))
	}
	return summaries
}

// Sources returns the registered source names in registration order.
func (m *Manager) Sources() []sources.SourceName {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]sources.SourceName, len(m.order))
	copy(out, m.order)
	return out
}
