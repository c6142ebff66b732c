/*
store.go - Persistence interface for series and the calculation journal

PURPOSE:
  Defines the boundary between the domain logic and the database.
  Series are plain records (save, get, list, delete). The calculation
  journal is append-only.

APPEND-ONLY JOURNAL:
  - AppendCalculation(): the only journal write
  - NO update or delete of calculations

IDEMPOTENCY:
  A calculation may carry an idempotency key. If the key already exists,
  AppendCalculation returns ErrDuplicateIdempotencyKey and the earlier
  entry can be fetched with CalculationByKey and replayed.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - cashflow/store/memory.go: In-memory for tests and dev

SEE ALSO:
  - journal.go: Higher-level interface using Store
*/
package cashflow

import "context"

// Store handles persistence of series and journal entries.
type Store interface {
	// SaveSeries persists a new series.
	SaveSeries(ctx context.Context, s Series) error

	// GetSeries returns ErrSeriesNotFound for an unknown ID.
	GetSeries(ctx context.Context, id SeriesID) (Series, error)

	// ListSeries returns all series ordered by creation time.
	ListSeries(ctx context.Context) ([]Series, error)

	// DeleteSeries returns ErrSeriesNotFound for an unknown ID.
	DeleteSeries(ctx context.Context, id SeriesID) error

	// AppendCalculation adds a journal entry. Fails if the idempotency key exists.
	AppendCalculation(ctx context.Context, c Calculation) error

	// ListCalculations returns journal entries, newest first.
	ListCalculations(ctx context.Context, filter CalculationFilter) ([]Calculation, error)

	// CalculationByKey returns ErrCalculationNotFound for an unknown key.
	CalculationByKey(ctx context.Context, idempotencyKey string) (Calculation, error)
}
