package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tvm-engine/cashflow"
	"github.com/warp/tvm-engine/cashflow/store"
)

func TestMemory_SeriesCRUD(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	s, err := cashflow.NewSeries("project", cashflow.MustValues("-100", "60", "60"))
	require.NoError(t, err)
	require.NoError(t, m.SaveSeries(ctx, s))

	got, err := m.GetSeries(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Name, got.Name)
	require.Len(t, got.Values, 3)
	assert.True(t, got.Values[0].Equal(s.Values[0]))

	require.NoError(t, m.DeleteSeries(ctx, s.ID))
	_, err = m.GetSeries(ctx, s.ID)
	assert.ErrorIs(t, err, cashflow.ErrSeriesNotFound)
	assert.ErrorIs(t, m.DeleteSeries(ctx, s.ID), cashflow.ErrSeriesNotFound)
}

func TestMemory_ReturnedSeriesAreCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	s, err := cashflow.NewSeries("project", cashflow.MustValues("-100", "60"))
	require.NoError(t, err)
	require.NoError(t, m.SaveSeries(ctx, s))

	got, err := m.GetSeries(ctx, s.ID)
	require.NoError(t, err)
	got.Values[0] = cashflow.MustValues("1")[0]

	again, err := m.GetSeries(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "-100", again.Values[0].String())
}

func TestMemory_ListSeriesOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"c", "a", "b"} {
		s, err := cashflow.NewSeries(name, cashflow.MustValues("-1", "2"))
		require.NoError(t, err)
		s.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, m.SaveSeries(ctx, s))
	}

	list, err := m.ListSeries(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "b", list[2].Name)
}

func TestMemory_JournalIdempotency(t *testing.T) {
	// GIVEN: a journal entry with an idempotency key
	// WHEN: appending another entry with the same key
	// THEN: the second append is rejected and the first entry is retrievable
	ctx := context.Background()
	m := store.NewMemory()

	first := cashflow.Calculation{ID: cashflow.NewCalculationID(), Function: "rate", IdempotencyKey: "k1"}
	require.NoError(t, m.AppendCalculation(ctx, first))

	err := m.AppendCalculation(ctx, cashflow.Calculation{ID: cashflow.NewCalculationID(), Function: "rate", IdempotencyKey: "k1"})
	assert.ErrorIs(t, err, cashflow.ErrDuplicateIdempotencyKey)

	got, err := m.CalculationByKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	_, err = m.CalculationByKey(ctx, "missing")
	assert.True(t, cashflow.IsNotFound(err))
}

func TestMemory_ListCalculationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	for _, fn := range []string{"fv", "pmt", "fv", "irr"} {
		require.NoError(t, m.AppendCalculation(ctx, cashflow.Calculation{ID: cashflow.NewCalculationID(), Function: fn}))
	}

	all, err := m.ListCalculations(ctx, cashflow.CalculationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "irr", all[0].Function)

	fvs, err := m.ListCalculations(ctx, cashflow.CalculationFilter{Function: "fv"})
	require.NoError(t, err)
	assert.Len(t, fvs, 2)

	limited, err := m.ListCalculations(ctx, cashflow.CalculationFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "irr", limited[0].Function)
}
