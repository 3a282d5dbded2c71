package db

import (
	"context"
	"time"
)

// call runs a single store call inside a span, tagging any failure with kind.
// The call is issued exactly once.
func (db *DB) call(ctx context.Context, operation string, kind ErrorKind, fn func(ctx context.Context) error) (err error) {
	ctx, end := db.spans.StartStoreSpan(ctx, operation, db.region, db.tableName)
	start := time.Now()

	defer func() {
		elapsed := time.Since(start)
		end(err)
		db.metrics.Observe(operation, elapsed, err)

		if err != nil {
			db.logger.Error().Err(err).Str("operation", operation).Dur("latency", elapsed).Msg("store call failed")
			return
		}
		db.logger.Debug().Str("operation", operation).Dur("latency", elapsed).Msg("store call")
	}()

	if callErr := fn(ctx); callErr != nil {
		return newError(kind, callErr)
	}
	return nil
}
