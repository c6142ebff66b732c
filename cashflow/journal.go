/*
journal.go - Append-only calculation journal

PURPOSE:
  Every evaluation served through the API is recorded: the function, the
  numeric domain, the request as received and the result as returned.
  The journal is what makes retries safe. A request repeated with the same
  idempotency key gets the journaled result back instead of a second entry.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: No update, no delete
  2. IDEMPOTENT: One entry per idempotency key

EXAMPLE FLOW:
  1. POST /api/rate with Idempotency-Key: k1 → computed, recorded
  2. Client times out and retries with k1  → journaled result replayed
  3. Same key, different function           → ErrDuplicateIdempotencyKey

SEE ALSO:
  - store.go: Low-level persistence interface
  - api/handlers.go: Records and replays calculations
*/
package cashflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Journal records calculations on top of a Store.
type Journal struct {
	Store Store
	// Now is overridable for tests.
	Now func() time.Time
}

func NewJournal(store Store) *Journal {
	return &Journal{Store: store, Now: func() time.Time { return time.Now().UTC() }}
}

// Record marshals request and result and appends an entry.
func (j *Journal) Record(ctx context.Context, function, numeric, idempotencyKey string, request, result any) (Calculation, error) {
	req, err := json.Marshal(request)
	if err != nil {
		return Calculation{}, fmt.Errorf("encode request: %w", err)
	}
	res, err := json.Marshal(result)
	if err != nil {
		return Calculation{}, fmt.Errorf("encode result: %w", err)
	}

	c := Calculation{
		ID:             NewCalculationID(),
		Function:       function,
		Numeric:        numeric,
		Request:        req,
		Result:         res,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      j.Now(),
	}
	if err := j.Store.AppendCalculation(ctx, c); err != nil {
		return Calculation{}, err
	}
	return c, nil
}

// Replay returns the journaled entry for an idempotency key.
//
// found is false when the key is empty or unknown. A known key recorded for
// a different function is a conflict.
func (j *Journal) Replay(ctx context.Context, function, idempotencyKey string) (c Calculation, found bool, err error) {
	if idempotencyKey == "" {
		return Calculation{}, false, nil
	}

	c, err = j.Store.CalculationByKey(ctx, idempotencyKey)
	switch {
	case IsNotFound(err):
		return Calculation{}, false, nil
	case err != nil:
		return Calculation{}, false, err
	case c.Function != function:
		return Calculation{}, false, fmt.Errorf("%w: key %q was used for %s", ErrDuplicateIdempotencyKey, idempotencyKey, c.Function)
	}
	return c, true, nil
}

// History lists journal entries, newest first.
func (j *Journal) History(ctx context.Context, filter CalculationFilter) ([]Calculation, error) {
	return j.Store.ListCalculations(ctx, filter)
}
