// Package pipeline orchestrates one source's extract, transform, validate,
// and load sequence, and manages the registry of configured pipelines.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"propflow/internal/ingest/load"
	"propflow/internal/ingest/metrics"
	"propflow/internal/ingest/sources"
	"propflow/internal/property"
)

// Extractor pulls raw records for a source.
type Extractor interface {
	Source() sources.SourceName
	Extract(ctx context.Context, desc sources.Descriptor) ([]property.RawRecord, error)
}

// Transformer normalizes raw records into canonical entities.
type Transformer interface {
	Transform(records []property.RawRecord) []property.Property
}

// Validator checks one canonical entity.
type Validator interface {
	Validate(p *property.Property) property.ValidationResult
}

// Loader persists a batch of valid entities.
type Loader interface {
	Load(ctx context.Context, properties []property.Property) load.Result
}

// Pipeline runs one source through the fixed stage sequence. Stages never
// overlap: extraction completes before transformation starts, and so on.
type Pipeline struct {
	desc        sources.Descriptor
	extractor   Extractor
	transformer Transformer
	validator   Validator
	loader      Loader
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the pipeline's metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// New wires a pipeline for one source descriptor.
func New(desc sources.Descriptor, e Extractor, t Transformer, v Validator, l Loader, opts ...Option) *Pipeline {
	p := &Pipeline{
		desc:        desc,
		extractor:   e,
		transformer: t,
		validator:   v,
		loader:      l,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full pass for the pipeline's source and always returns a
// structured summary. An extractor failure is the only whole-run failure:
// it yields success=false with zero counts and the failure message. Any
// one record's problems only ever cost that record.
func (p *Pipeline) Run(ctx context.Context) property.RunSummary {
	start := time.Now()
	summary := property.RunSummary{
		RunID:     uuid.New(),
		Source:    string(p.desc.Name),
		StartedAt: start,
	}

	raw, err := p.extractor.Extract(ctx, p.desc)
	if err != nil {
		return p.fail(ctx, summary, start, fmt.Errorf("extraction failed: %w", err))
	}

	summary.Processed = len(raw)
	p.metrics.AddExtracted(summary.Source, len(raw))

	if len(raw) == 0 {
		summary.Success = true
		summary.Errors = append(summary.Errors, "No data extracted from source")
		summary.Duration = time.Since(start)
		p.metrics.ObserveRun(summary.Source, true, summary.Duration)
		p.logger.InfoContext(ctx, "pipeline run produced no data",
			"source", summary.Source,
			"run_id", summary.RunID,
		)
		return summary
	}

	properties := p.transformer.Transform(raw)

	results, err := p.validateAll(ctx, properties)
	if err != nil {
		return p.fail(ctx, summary, start, err)
	}

	valid := make([]property.Property, 0, len(properties))
	for i, res := range results {
		if res.Valid {
			properties[i].DataConfidence = res.Confidence
			valid = append(valid, properties[i])
			continue
		}
		summary.Errors = append(summary.Errors,
			fmt.Sprintf("%s: %s", properties[i].Address, strings.Join(res.Errors, "; ")))
	}
	p.metrics.AddValidationFailures(summary.Source, len(properties)-len(valid))

	loaded := p.loader.Load(ctx, valid)
	summary.Added = loaded.Added
	summary.Updated = loaded.Updated
	summary.Skipped = loaded.Skipped
	p.metrics.AddLoaded(summary.Source, loaded.Added, loaded.Updated, loaded.Skipped)

	summary.Success = true
	summary.Duration = time.Since(start)
	p.metrics.ObserveRun(summary.Source, true, summary.Duration)

	p.logger.InfoContext(ctx, "pipeline run complete",
		"source", summary.Source,
		"run_id", summary.RunID,
		"processed", summary.Processed,
		"added", summary.Added,
		"updated", summary.Updated,
		"skipped", summary.Skipped,
		"invalid", len(properties)-len(valid),
		"duration_ms", summary.Duration.Milliseconds(),
	)
	return summary
}

// validateAll fans validation out across goroutines. Checks are pure and
// share no state, so the only coordination needed is the join.
func (p *Pipeline) validateAll(ctx context.Context, properties []property.Property) ([]property.ValidationResult, error) {
	results := make([]property.ValidationResult, len(properties))

	g, ctx := errgroup.WithContext(ctx)
	for i := range properties {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = p.validator.Validate(&properties[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validation cancelled: %w", err)
	}
	return results, nil
}

func (p *Pipeline) fail(ctx context.Context, summary property.RunSummary, start time.Time, err error) property.RunSummary {
	summary.Success = false
	summary.Errors = append(summary.Errors, err.Error())
	summary.Duration = time.Since(start)
	p.metrics.ObserveRun(summary.Source, false, summary.Duration)
	p.logger.ErrorContext(ctx, "pipeline run failed",
		"source", summary.Source,
		"run_id", summary.RunID,
		"error", err,
	)
	return summary
}
