package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/filestore"
)

func testTariff() domain.Tariff {
	return domain.Tariff{
		FirstHourRateCents: 5800,
		BlockRateCents:     2900,
		BlockMinutes:       30,
		DayRateCents:       18000,
		DayThresholdHours:  3,
		ToleranceMinutes:   5,
	}
}

func newCoworking(t *testing.T) (*CoworkingService, *filestore.Store) {
	t.Helper()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	return NewCoworkingService(store, testTariff(), testLogger()), store
}

func TestCoworking_CheckoutComputesTotalAndRegistersSale(t *testing.T) {
	svc, store := newCoworking(t)
	ctx := context.Background()

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	clock := start
	svc.Now = func() time.Time { return clock }

	session, err := svc.Start(ctx, "Marta")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, session.Status)

	_, err = svc.AddExtra(ctx, session.ID, domain.Extra{Name: "latte", PriceCents: 2000, Qty: 2})
	require.NoError(t, err)

	// 63 raw minutes rounds down to 60 within tolerance: first hour rate.
	clock = start.Add(63 * time.Minute)
	finished, err := svc.Checkout(ctx, session.ID, domain.PaymentCash, "ana")
	require.NoError(t, err)

	assert.Equal(t, domain.SessionFinished, finished.Status)
	assert.Equal(t, 60, finished.DurationMinutes)
	assert.Equal(t, int64(5800+4000), finished.TotalCents)

	sales, err := store.SalesForPeriod(ctx, start, start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, finished.TotalCents, sales[0].AmountCents)
	require.NotNil(t, sales[0].SessionID)
	assert.Equal(t, session.ID, *sales[0].SessionID)
}

func TestCoworking_CheckoutTwiceConflicts(t *testing.T) {
	svc, _ := newCoworking(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, "Marta")
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, session.ID, domain.PaymentCash, "ana")
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, session.ID, domain.PaymentCash, "ana")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCoworking_AddExtraValidation(t *testing.T) {
	svc, _ := newCoworking(t)
	ctx := context.Background()

	session, err := svc.Start(ctx, "Marta")
	require.NoError(t, err)

	_, err = svc.AddExtra(ctx, session.ID, domain.Extra{Name: "latte", PriceCents: 2000, Qty: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddExtra(ctx, session.ID, domain.Extra{Name: "latte", PriceCents: -1, Qty: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCoworking_RepairFixesDriftedTotals(t *testing.T) {
	svc, store := newCoworking(t)
	ctx := context.Background()

	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(42 * time.Minute)

	// A finished session whose stored total drifted (an old bug wrote the
	// wrong figure), and one missing its end time.
	require.NoError(t, store.CreateCoworkingSession(ctx, domain.CoworkingSession{
		ID:              "drifted",
		StartTime:       start,
		EndTime:         &end,
		Status:          domain.SessionFinished,
		TotalCents:      99999,
		DurationMinutes: 999,
	}))
	require.NoError(t, store.CreateCoworkingSession(ctx, domain.CoworkingSession{
		ID:        "no-end",
		StartTime: start,
		Status:    domain.SessionFinished,
	}))

	res, err := svc.Repair(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Skipped)

	repaired, err := store.GetCoworkingSession(ctx, "drifted")
	require.NoError(t, err)
	assert.Equal(t, int64(5800), repaired.TotalCents)
	assert.Equal(t, 42, repaired.DurationMinutes)

	// Second pass finds nothing to do.
	res, err = svc.Repair(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 2, res.Skipped)
}
