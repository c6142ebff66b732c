// Package store provides in-memory cashflow.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/tvm-engine/cashflow"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	series       map[cashflow.SeriesID]cashflow.Series
	calculations []cashflow.Calculation
	idempotency  map[string]int // key → index into calculations
}

func NewMemory() *Memory {
	return &Memory{
		series:      make(map[cashflow.SeriesID]cashflow.Series),
		idempotency: make(map[string]int),
	}
}

func (m *Memory) SaveSeries(_ context.Context, s cashflow.Series) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[s.ID] = cloneSeries(s)
	return nil
}

func (m *Memory) GetSeries(_ context.Context, id cashflow.SeriesID) (cashflow.Series, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.series[id]
	if !ok {
		return cashflow.Series{}, cashflow.ErrSeriesNotFound
	}
	return cloneSeries(s), nil
}

func (m *Memory) ListSeries(_ context.Context) ([]cashflow.Series, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]cashflow.Series, 0, len(m.series))
	for _, s := range m.series {
		result = append(result, cloneSeries(s))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) DeleteSeries(_ context.Context, id cashflow.SeriesID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.series[id]; !ok {
		return cashflow.ErrSeriesNotFound
	}
	delete(m.series, id)
	return nil
}

// AppendCalculation adds a journal entry. Append-only.
func (m *Memory) AppendCalculation(_ context.Context, c cashflow.Calculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.IdempotencyKey != "" {
		if _, exists := m.idempotency[c.IdempotencyKey]; exists {
			return cashflow.ErrDuplicateIdempotencyKey
		}
		m.idempotency[c.IdempotencyKey] = len(m.calculations)
	}
	m.calculations = append(m.calculations, c)
	return nil
}

func (m *Memory) ListCalculations(_ context.Context, filter cashflow.CalculationFilter) ([]cashflow.Calculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []cashflow.Calculation
	for i := len(m.calculations) - 1; i >= 0; i-- {
		c := m.calculations[i]
		if !filter.Matches(c) {
			continue
		}
		result = append(result, c)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (m *Memory) CalculationByKey(_ context.Context, idempotencyKey string) (cashflow.Calculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.idempotency[idempotencyKey]
	if !ok {
		return cashflow.Calculation{}, cashflow.ErrCalculationNotFound
	}
	return m.calculations[i], nil
}

func cloneSeries(s cashflow.Series) cashflow.Series {
	s.Values = append([]decimal.Decimal(nil), s.Values...)
	return s
}
