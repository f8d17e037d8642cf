package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/filestore"
	"coworkpos-backend/internal/notify"
	"coworkpos-backend/internal/service"
)

// fakeClock drives the scheduler deterministically.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at time.Time
	ch chan time.Time
}

func newFakeClock(at time.Time) *fakeClock { return &fakeClock{now: at} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), ch: make(chan time.Time, 1)}
	c.timers = append(c.timers, t)
	return t.ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	var remaining []*fakeTimer
	for _, t := range c.timers {
		if !t.at.After(c.now) {
			t.ch <- c.now
		} else {
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
}

func (c *fakeClock) pendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// failingStore wraps the file store with injectable persistence failures.
type failingStore struct {
	*filestore.Store
	failSave   bool
	failGather bool
}

func (f *failingStore) SaveCashCutReport(ctx context.Context, r domain.CashCutReport) error {
	if f.failSave {
		return errors.New("disk full")
	}
	return f.Store.SaveCashCutReport(ctx, r)
}

func (f *failingStore) SalesForPeriod(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	if f.failGather {
		return nil, errors.New("connection refused")
	}
	return f.Store.SalesForPeriod(ctx, start, end)
}

type supervisorRecorder struct {
	srv *httptest.Server

	mu       sync.Mutex
	payloads []notify.Payload
}

func newSupervisorRecorder(t *testing.T) *supervisorRecorder {
	t.Helper()
	rec := &supervisorRecorder{}
	rec.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p notify.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, p)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rec.srv.Close)
	return rec
}

func (r *supervisorRecorder) statuses() []notify.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Status, 0, len(r.payloads))
	for _, p := range r.payloads {
		out = append(out, p.Status)
	}
	return out
}

func (r *supervisorRecorder) last() (notify.Payload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.payloads) == 0 {
		return notify.Payload{}, false
	}
	return r.payloads[len(r.payloads)-1], true
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

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

func newScheduler(t *testing.T, store *failingStore, rec *supervisorRecorder, clock Clock, times []string, healthIv time.Duration) *Scheduler {
	t.Helper()
	cut := service.NewCutService(store, testTariff(), testLogger(), 100)
	sup := notify.NewSupervisor(rec.srv.URL, "cash-cut", "agent-test", testLogger())
	return New(cut, sup, clock, time.UTC, times, healthIv, testLogger())
}

func seededStore(t *testing.T) *failingStore {
	t.Helper()
	fs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	return &failingStore{Store: fs}
}

func TestNextCutAfter(t *testing.T) {
	store := seededStore(t)
	rec := newSupervisorRecorder(t)
	s := newScheduler(t, store, rec, newFakeClock(time.Time{}), []string{"12:00", "00:00"}, time.Hour)

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"morning fires at noon", day.Add(9 * time.Hour), day.Add(12 * time.Hour)},
		{"afternoon rolls to midnight", day.Add(13 * time.Hour), day.AddDate(0, 0, 1)},
		{"exactly noon rolls forward", day.Add(12 * time.Hour), day.AddDate(0, 0, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.NextCutAfter(tc.now))
		})
	}
}

func TestRunOnce_SuccessPersistsThenNotifies(t *testing.T) {
	store := seededStore(t)
	rec := newSupervisorRecorder(t)
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	clock := newFakeClock(day.Add(12 * time.Hour))
	s := newScheduler(t, store, rec, clock, []string{"12:00"}, time.Hour)

	ctx := context.Background()
	_, err := store.CreateSale(ctx, domain.Sale{ID: "s1", AmountCents: 9800, PaymentMethod: domain.PaymentCash, CreatedAt: day.Add(10 * time.Hour)})
	require.NoError(t, err)

	s.RunOnce(ctx)

	reports, err := store.ListCashCutReports(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, domain.CutTriggerScheduler, reports[0].TriggeredBy)

	last, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, notify.StatusSuccess, last.Status)
	assert.EqualValues(t, 9800, last.Data["totalSales"])
	assert.Equal(t, StateIdle, s.CurrentState())
}

func TestRunOnce_PersistenceFailureLeavesNoReport(t *testing.T) {
	store := seededStore(t)
	store.failSave = true
	rec := newSupervisorRecorder(t)
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	s := newScheduler(t, store, rec, newFakeClock(day.Add(12*time.Hour)), []string{"12:00"}, time.Hour)

	ctx := context.Background()
	s.RunOnce(ctx)

	reports, err := store.Store.ListCashCutReports(ctx, true, 0)
	require.NoError(t, err)
	assert.Empty(t, reports)

	last, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, notify.StatusError, last.Status)
	errMsg, _ := last.Data["error"].(string)
	assert.Contains(t, errMsg, "disk full")
	assert.Equal(t, StateIdle, s.CurrentState())
}

func TestRunOnce_GatherFailureReportsError(t *testing.T) {
	store := seededStore(t)
	store.failGather = true
	rec := newSupervisorRecorder(t)
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	s := newScheduler(t, store, rec, newFakeClock(day.Add(12*time.Hour)), []string{"12:00"}, time.Hour)

	s.RunOnce(context.Background())

	last, ok := rec.last()
	require.True(t, ok)
	assert.Equal(t, notify.StatusError, last.Status)
}

func TestRunOnce_DeadSupervisorDoesNotLoseReport(t *testing.T) {
	store := seededStore(t)
	_ = newSupervisorRecorder(t)
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	clock := newFakeClock(day.Add(12 * time.Hour))

	cut := service.NewCutService(store, testTariff(), testLogger(), 100)
	sup := notify.NewSupervisor("http://127.0.0.1:1", "cash-cut", "agent-test", testLogger())
	s := New(cut, sup, clock, time.UTC, []string{"12:00"}, time.Hour, testLogger())

	ctx := context.Background()
	s.RunOnce(ctx)

	// The cut is durable even though every notification failed.
	reports, err := store.ListCashCutReports(ctx, false, 0)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, StateIdle, s.CurrentState())
}

func TestRun_FiresAtConfiguredTime(t *testing.T) {
	store := seededStore(t)
	rec := newSupervisorRecorder(t)
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	clock := newFakeClock(day.Add(11 * time.Hour))
	s := newScheduler(t, store, rec, clock, []string{"12:00"}, 6*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Wait for both the cut timer and the health timer to be armed.
	require.Eventually(t, func() bool { return clock.pendingTimers() >= 2 }, time.Second, time.Millisecond)
	clock.Advance(time.Hour)

	require.Eventually(t, func() bool {
		reports, err := store.ListCashCutReports(context.Background(), false, 0)
		return err == nil && len(reports) == 1
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}

func TestRun_HealthCheckPingsIndependently(t *testing.T) {
	store := seededStore(t)
	rec := newSupervisorRecorder(t)
	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	clock := newFakeClock(day.Add(9 * time.Hour))
	s := newScheduler(t, store, rec, clock, []string{"12:00"}, 30*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, func() bool { return clock.pendingTimers() >= 2 }, time.Second, time.Millisecond)
	clock.Advance(30 * time.Minute)

	require.Eventually(t, func() bool {
		for _, st := range rec.statuses() {
			if st == notify.StatusHealthCheck {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	// No cut ran: the ping is independent of cut activity.
	reports, err := store.ListCashCutReports(context.Background(), false, 0)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
