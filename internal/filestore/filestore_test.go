package filestore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coworkpos-backend/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestOpenCashSession_SecondOpenConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.OpenCashSession(ctx, domain.CashSession{ID: "cs-1", OpenedAt: time.Now()}))

	err := s.OpenCashSession(ctx, domain.CashSession{ID: "cs-2", OpenedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrConflict)

	open, err := s.GetOpenCashSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cs-1", open.ID)
}

func TestCloseCashSession_DoubleCloseConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.OpenCashSession(ctx, domain.CashSession{ID: "cs-1", OpenedAt: time.Now()}))

	now := time.Now()
	closed := domain.CashSession{ID: "cs-1", ClosedAt: &now, ClosedBy: "ana"}
	require.NoError(t, s.CloseCashSession(ctx, closed))

	err := s.CloseCashSession(ctx, closed)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.GetOpenCashSession(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SurvivesReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, s.OpenCashSession(ctx, domain.CashSession{ID: "cs-1", OpenedAt: time.Now(), OpeningBalanceCents: 50000}))
	require.NoError(t, s.AppendWithdrawal(ctx, "cs-1", domain.Withdrawal{ID: "w-1", AmountCents: 5000, WithdrawnAt: time.Now()}))
	_, err = s.CreateSale(ctx, domain.Sale{ID: "sale-1", AmountCents: 9800, PaymentMethod: domain.PaymentCash, CreatedAt: time.Now()})
	require.NoError(t, err)

	reloaded, err := New(dir)
	require.NoError(t, err)

	open, err := reloaded.GetOpenCashSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), open.OpeningBalanceCents)
	require.Len(t, open.Withdrawals, 1)
	assert.Equal(t, int64(5000), open.Withdrawals[0].AmountCents)

	sales, err := reloaded.SalesForPeriod(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestSalesForPeriod_HalfOpenRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{base.Add(-time.Minute), base, base.Add(time.Hour), base.Add(2 * time.Hour)} {
		_, err := s.CreateSale(ctx, domain.Sale{ID: string(rune('a' + i)), AmountCents: 100, CreatedAt: at})
		require.NoError(t, err)
	}

	sales, err := s.SalesForPeriod(ctx, base, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, sales, 2)
}

func TestArchiveReportsBeyond(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveCashCutReport(ctx, domain.CashCutReport{
			ID:          string(rune('a' + i)),
			GeneratedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	archived, err := s.ArchiveReportsBeyond(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, archived)

	live, err := s.ListCashCutReports(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, live, 2)
	// The two newest survive.
	assert.Equal(t, "e", live[0].ID)
	assert.Equal(t, "d", live[1].ID)

	all, err := s.ListCashCutReports(ctx, true, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	// Idempotent once under the threshold.
	archived, err = s.ArchiveReportsBeyond(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, archived)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, domain.User{Name: "Ana", Email: "ana@example.com", Role: domain.RoleStaff})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, domain.User{Name: "Ana B", Email: "ana@example.com", Role: domain.RoleStaff})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProducts_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProduct(ctx, domain.Product{Name: "latte", PriceCents: 2000})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	p.PriceCents = 2200
	updated, err := s.UpdateProduct(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, int64(2200), updated.PriceCents)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	_, err = s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
