/*
Package sqlite provides a SQLite-backed implementation of cashflow.Store.

PURPOSE:
  Persists cash-flow series and the calculation journal. In production the
  same patterns apply to PostgreSQL with only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  The calculations table is a journal:
  - No UPDATE statements on calculations
  - No DELETE statements on calculations (except Reset, for dev)

KEY TABLES:
  cashflow_series: Named cash-flow vectors (values as a JSON array of
                   decimal strings, so no precision is lost)
  calculations:    Journal of every evaluation served (request/result JSON)

INDEXES:
  - idx_calculations_idempotency: Unique idempotency keys (retries)
  - idx_calculations_function_created: History filtered by function

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/tvm.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  journal := cashflow.NewJournal(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - cashflow/store.go: Interface definition
  - cashflow/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/tvm-engine/cashflow"
)

// Store implements cashflow.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(dbPath, ":memory:") {
		// Every connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Cash-flow series
	CREATE TABLE IF NOT EXISTS cashflow_series (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		values_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cashflow_series_created
		ON cashflow_series(created_at);

	-- Calculations (append-only journal)
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		function_name TEXT NOT NULL,
		numeric_domain TEXT NOT NULL,
		request_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		idempotency_key TEXT,
		created_at TEXT NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_calculations_idempotency
		ON calculations(idempotency_key) WHERE idempotency_key IS NOT NULL;

	CREATE INDEX IF NOT EXISTS idx_calculations_function_created
		ON calculations(function_name, seq DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SERIES
// =============================================================================

// SaveSeries persists a series.
func (s *Store) SaveSeries(ctx context.Context, series cashflow.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	valuesJSON, err := encodeValues(series.Values)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cashflow_series (id, name, values_json, created_at)
		VALUES (?, ?, ?, ?)
	`,
		series.ID,
		series.Name,
		valuesJSON,
		series.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save series: %w", err)
	}
	return nil
}

// GetSeries returns a series by ID.
func (s *Store) GetSeries(ctx context.Context, id cashflow.SeriesID) (cashflow.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, values_json, created_at
		FROM cashflow_series
		WHERE id = ?
	`, id)

	series, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.Series{}, cashflow.ErrSeriesNotFound
	}
	return series, err
}

// ListSeries returns all series, oldest first.
func (s *Store) ListSeries(ctx context.Context) ([]cashflow.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, values_json, created_at
		FROM cashflow_series
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	var result []cashflow.Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, series)
	}
	return result, rows.Err()
}

// DeleteSeries removes a series.
func (s *Store) DeleteSeries(ctx context.Context, id cashflow.SeriesID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM cashflow_series WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return cashflow.ErrSeriesNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSeries(row scanner) (cashflow.Series, error) {
	var (
		series     cashflow.Series
		valuesJSON string
		createdAt  string
	)
	if err := row.Scan(&series.ID, &series.Name, &valuesJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return series, err
		}
		return series, fmt.Errorf("failed to scan series: %w", err)
	}

	values, err := decodeValues(valuesJSON)
	if err != nil {
		return series, err
	}
	series.Values = values
	series.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return series, nil
}

// Values are stored as decimal strings; decimal.Decimal marshals to a
// quoted string by default.
func encodeValues(values []decimal.Decimal) (string, error) {
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode values: %w", err)
	}
	return string(b), nil
}

func decodeValues(s string) ([]decimal.Decimal, error) {
	var values []decimal.Decimal
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return nil, fmt.Errorf("failed to decode values: %w", err)
	}
	return values, nil
}

// =============================================================================
// CALCULATION JOURNAL
// =============================================================================

// AppendCalculation adds a journal entry.
func (s *Store) AppendCalculation(ctx context.Context, c cashflow.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calculations
		(id, function_name, numeric_domain, request_json, result_json, idempotency_key, created_at, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM calculations))
	`,
		c.ID,
		c.Function,
		c.Numeric,
		rawOrNull(c.Request),
		rawOrNull(c.Result),
		nullString(c.IdempotencyKey),
		c.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return cashflow.ErrDuplicateIdempotencyKey
		}
		return fmt.Errorf("failed to append calculation: %w", err)
	}
	return nil
}

// ListCalculations returns journal entries, newest first.
func (s *Store) ListCalculations(ctx context.Context, filter cashflow.CalculationFilter) ([]cashflow.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, function_name, numeric_domain, request_json, result_json, idempotency_key, created_at
		FROM calculations
	`
	var args []any
	if filter.Function != "" {
		query += " WHERE function_name = ?"
		args = append(args, filter.Function)
	}
	query += " ORDER BY seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculations: %w", err)
	}
	defer rows.Close()

	var result []cashflow.Calculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// CalculationByKey returns the journal entry recorded under an idempotency key.
func (s *Store) CalculationByKey(ctx context.Context, idempotencyKey string) (cashflow.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, function_name, numeric_domain, request_json, result_json, idempotency_key, created_at
		FROM calculations
		WHERE idempotency_key = ?
	`, idempotencyKey)

	c, err := scanCalculation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cashflow.Calculation{}, cashflow.ErrCalculationNotFound
	}
	return c, err
}

func scanCalculation(row scanner) (cashflow.Calculation, error) {
	var (
		c              cashflow.Calculation
		requestJSON    string
		resultJSON     string
		idempotencyKey sql.NullString
		createdAt      string
	)
	err := row.Scan(&c.ID, &c.Function, &c.Numeric, &requestJSON, &resultJSON, &idempotencyKey, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("failed to scan calculation: %w", err)
	}

	c.Request = json.RawMessage(requestJSON)
	c.Result = json.RawMessage(resultJSON)
	c.IdempotencyKey = idempotencyKey.String
	c.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return c, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data. Dev and demo use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"calculations", "cashflow_series"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
