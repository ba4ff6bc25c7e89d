// Package load persists validated canonical entities with per-record failure
// isolation.
package load

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"propflow/internal/property"
	"propflow/internal/property/store"
)

// Store is the keyed upsert contract the loader needs from a backend.
type Store interface {
	FindByID(ctx context.Context, id string) (*property.Property, error)
	Insert(ctx context.Context, p *property.Property) error
	Update(ctx context.Context, p *property.Property) error
}

// Result counts the outcome of one load batch.
type Result struct {
	Added   int
	Updated int
	Skipped int
}

// Loader upserts entities one at a time. Re-running the same batch against
// an already-populated store always counts updates, never duplicate adds.
type Loader struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithClock sets the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// New constructs a Loader.
func New(s Store, opts ...Option) *Loader {
	l := &Loader{
		store:  s,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load persists each entity sequentially: existing ids are updated, new ids
// inserted. A store failure on one record is logged and counted as skipped;
// it never aborts the rest of the batch.
func (l *Loader) Load(ctx context.Context, properties []property.Property) Result {
	var result Result
	now := l.now()

	for i := range properties {
		p := properties[i]

		existing, err := l.store.FindByID(ctx, p.ID)
		switch {
		case err == nil:
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = now
			if err := l.store.Update(ctx, &p); err != nil {
				l.skip(ctx, p.ID, "update", err, &result)
				continue
			}
			result.Updated++

		case errors.Is(err, store.ErrNotFound):
			p.CreatedAt = now
			p.UpdatedAt = now
			if err := l.store.Insert(ctx, &p); err != nil {
				l.skip(ctx, p.ID, "insert", err, &result)
				continue
			}
			result.Added++

		default:
			l.skip(ctx, p.ID, "lookup", err, &result)
		}
	}

	return result
}

func (l *Loader) skip(ctx context.Context, id, op string, err error, result *Result) {
	result.Skipped++
	l.logger.ErrorContext(ctx, "property persistence failed, skipping record",
		"property_id", id,
		"operation", op,
		"error", err,
	)
}
