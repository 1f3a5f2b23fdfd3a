// Package storagetest holds behaviour checks shared by every EntryStore.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashledger/internal/core"
	"cashledger/internal/storage"
)

// Sample returns a fully populated coupon entry.
func Sample(id string, day core.Date) core.Entry {
	return core.Entry{
		ID:          id,
		Date:        day,
		Type:        core.Issue,
		Amount:      decimal.RequireFromString("5000"),
		CouponType:  "Rs 50",
		FaceValue:   decimal.NewFromInt(50),
		Quantity:    decimal.NewFromInt(100),
		SerialStart: 1001,
		SerialEnd:   1100,
		EntryMode:   core.ModeSerial,
		Notes:       "morning batch",
		Timestamp:   day.Add(9*time.Hour + 1500*time.Millisecond),
		Status:      core.StatusActive,
	}
}

// Run exercises store created fresh by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.EntryStore) {
	ctx := context.Background()
	day := core.NewDate(2025, 3, 10)

	t.Run("insert and fetch preserves fields", func(t *testing.T) {
		s := newStore(t)
		want := Sample("e1", day)
		cost := core.Entry{
			ID: "e2", Date: day, Type: core.DailyCost,
			LabourCost: decimal.RequireFromString("50.25"), MaterialCost: decimal.NewFromInt(30),
			Timestamp: day.Add(10 * time.Hour),
		}
		require.NoError(t, s.InsertOne(ctx, want))
		require.NoError(t, s.InsertOne(ctx, cost))

		got, err := s.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)

		byID := map[string]core.Entry{}
		for _, e := range got {
			byID[e.ID] = e
		}
		assertSameEntry(t, want, byID["e1"])
		assert.Equal(t, core.StatusActive, byID["e2"].Status, "empty status stored as Active")
		assert.True(t, decimal.RequireFromString("50.25").Equal(byID["e2"].LabourCost))
	})

	t.Run("update replaces entry", func(t *testing.T) {
		s := newStore(t)
		e := Sample("e1", day)
		require.NoError(t, s.InsertOne(ctx, e))

		e.Notes = "corrected"
		e.Amount = decimal.NewFromInt(4950)
		require.NoError(t, s.UpdateOne(ctx, e))

		got, err := s.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "corrected", got[0].Notes)
		assert.True(t, decimal.NewFromInt(4950).Equal(got[0].Amount))

		err = s.UpdateOne(ctx, Sample("missing", day))
		assert.ErrorIs(t, err, core.ErrEntryNotFound)
	})

	t.Run("set status", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertMany(ctx, []core.Entry{Sample("a", day), Sample("b", day), Sample("c", day)}))
		require.NoError(t, s.SetStatus(ctx, []string{"a", "c"}, core.StatusInactive))

		assert.Equal(t, map[string]core.Status{
			"a": core.StatusInactive, "b": core.StatusActive, "c": core.StatusInactive,
		}, statuses(t, s))

		err := s.SetStatus(ctx, []string{"b", "nope"}, core.StatusInactive)
		assert.ErrorIs(t, err, core.ErrEntryNotFound)
		assert.Equal(t, core.StatusActive, statuses(t, s)["b"], "failed call changes nothing")
	})

	t.Run("archive and insert", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertMany(ctx, []core.Entry{Sample("old1", day), Sample("old2", day)}))
		require.NoError(t, s.SetStatus(ctx, []string{"old2"}, core.StatusInactive))

		require.NoError(t, s.ArchiveAndInsert(ctx, []core.Entry{Sample("new1", day.AddDays(1))}))
		assert.Equal(t, map[string]core.Status{
			"old1": core.StatusInactive, "old2": core.StatusInactive, "new1": core.StatusActive,
		}, statuses(t, s))
	})

	t.Run("archive and insert is atomic", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.InsertOne(ctx, Sample("keep", day)))

		// The duplicate id makes the insert half fail.
		err := s.ArchiveAndInsert(ctx, []core.Entry{Sample("fresh", day), Sample("keep", day)})
		require.Error(t, err)
		assert.Equal(t, map[string]core.Status{"keep": core.StatusActive}, statuses(t, s))
	})

	t.Run("fetch orders newest first", func(t *testing.T) {
		s := newStore(t)
		early := Sample("early", day)
		late := Sample("late", day)
		late.Timestamp = early.Timestamp.Add(time.Minute)
		require.NoError(t, s.InsertMany(ctx, []core.Entry{Sample("prev", day.AddDays(-1)), early, late}))

		got, err := s.FetchAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"late", "early", "prev"}, []string{got[0].ID, got[1].ID, got[2].ID})
	})
}

func statuses(t *testing.T, s storage.EntryStore) map[string]core.Status {
	t.Helper()
	all, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	out := make(map[string]core.Status, len(all))
	for _, e := range all {
		out[e.ID] = e.Status
	}
	return out
}

func assertSameEntry(t *testing.T, want, got core.Entry) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.Date.Equal(got.Date), "date %s != %s", want.Date, got.Date)
	assert.Equal(t, want.Type, got.Type)
	assert.True(t, want.Amount.Equal(got.Amount), "amount")
	assert.Equal(t, want.CouponType, got.CouponType)
	assert.True(t, want.FaceValue.Equal(got.FaceValue), "face value")
	assert.True(t, want.Quantity.Equal(got.Quantity), "quantity")
	assert.Equal(t, want.SerialStart, got.SerialStart)
	assert.Equal(t, want.SerialEnd, got.SerialEnd)
	assert.Equal(t, want.EntryMode, got.EntryMode)
	assert.Equal(t, want.Notes, got.Notes)
	assert.Equal(t, want.Timestamp.UnixMilli(), got.Timestamp.UnixMilli())
	assert.Equal(t, want.Status, got.Status)
}
