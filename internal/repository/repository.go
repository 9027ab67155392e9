// Package repository is the only layer that talks to the store.
//
// Each method issues exactly one store call, logs it at debug level and
// warns when it takes longer than the configured slow-operation
// threshold. Faults are returned as the store produced them.
package repository

import (
	"context"
	"time"

	"github.com/deppfellow/guitars-serverless/internal/model"
	"github.com/deppfellow/guitars-serverless/internal/store"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// GuitarRepository reads and writes guitars in one table.
type GuitarRepository struct {
	table  store.Table[model.Guitar]
	name   string
	logger *zerolog.Logger

	// slow is the slow-operation threshold; zero disables the warning.
	slow time.Duration

	// product names the datastore in New Relic segments. Empty skips the
	// segment, for drivers whose client is already instrumented.
	product newrelic.DatastoreProduct
}

// NewGuitarRepository wraps table. name is the table name used in logs.
func NewGuitarRepository(table store.Table[model.Guitar], name string, logger *zerolog.Logger, slow time.Duration) *GuitarRepository {
	return &GuitarRepository{
		table:  table,
		name:   name,
		logger: logger,
		slow:   slow,
	}
}

// WithDatastoreSegments records a New Relic datastore segment per call.
func (r *GuitarRepository) WithDatastoreSegments(product newrelic.DatastoreProduct) *GuitarRepository {
	r.product = product
	return r
}

func (r *GuitarRepository) List(ctx context.Context) ([]model.Guitar, error) {
	done := r.track(ctx, "scan", 0)
	guitars, err := r.table.Scan(ctx)
	done(err, zerolog.Dict().Int("count", len(guitars)))

	return guitars, err
}

func (r *GuitarRepository) GetByID(ctx context.Context, id int) (model.Guitar, bool, error) {
	done := r.track(ctx, "get", id)
	guitar, found, err := r.table.Get(ctx, id)
	done(err, zerolog.Dict().Bool("found", found))

	return guitar, found, err
}

// Save writes g unconditionally, replacing any record with the same key.
func (r *GuitarRepository) Save(ctx context.Context, g model.Guitar) error {
	done := r.track(ctx, "put", g.Key())
	err := r.table.Put(ctx, g)
	done(err, nil)

	return err
}

// Delete removes the record for id. A missing record is not an error.
func (r *GuitarRepository) Delete(ctx context.Context, id int) error {
	done := r.track(ctx, "delete", id)
	err := r.table.Delete(ctx, id)
	done(err, nil)

	return err
}

// Ping reports whether the store is reachable.
func (r *GuitarRepository) Ping(ctx context.Context) error {
	return r.table.Ping(ctx)
}

// track starts timing op and returns the func that logs its outcome.
func (r *GuitarRepository) track(ctx context.Context, op string, id int) func(error, *zerolog.Event) {
	start := time.Now()
	logger := r.loggerFrom(ctx)

	var segment *newrelic.DatastoreSegment
	if r.product != "" {
		if txn := newrelic.FromContext(ctx); txn != nil {
			segment = &newrelic.DatastoreSegment{
				StartTime:  txn.StartSegmentNow(),
				Product:    r.product,
				Collection: r.name,
				Operation:  op,
			}
		}
	}

	return func(err error, fields *zerolog.Event) {
		if segment != nil {
			segment.End()
		}

		duration := time.Since(start)

		event := logger.Debug()
		if r.slow > 0 && duration > r.slow {
			event = logger.Warn()
		}
		event = event.
			Str("table", r.name).
			Str("op", op).
			Dur("duration", duration)
		if id != 0 {
			event = event.Int("id", id)
		}
		if fields != nil {
			event = event.Dict("result", fields)
		}
		if err != nil {
			event = event.Err(err)
		}

		switch {
		case r.slow > 0 && duration > r.slow:
			event.Msg("slow store operation")
		default:
			event.Msg("store operation")
		}
	}
}

// loggerFrom prefers the invocation-scoped logger stored in ctx.
func (r *GuitarRepository) loggerFrom(ctx context.Context) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return r.logger
}
