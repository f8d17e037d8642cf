// Package scheduler runs the automatic cash cut as a supervised background
// task: fixed times of day in a configured timezone, plus an independent
// health-check ping so the supervisor can tell a quiet scheduler from a dead
// one.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"coworkpos-backend/internal/domain"
	"coworkpos-backend/internal/notify"
	"coworkpos-backend/internal/service"
)

type State string

const (
	StateIdle             State = "idle"
	StateRunning          State = "running"
	StateReportingSuccess State = "reporting_success"
	StateReportingFailure State = "reporting_failure"
)

type Scheduler struct {
	Cut        *service.CutService
	Supervisor *notify.Supervisor
	Logger     *slog.Logger

	clock    Clock
	loc      *time.Location
	cutTimes []cutTime
	healthIv time.Duration

	mu      sync.Mutex
	state   State
	nextRun time.Time
	lastRun time.Time
}

// cutTime is a wall-clock time of day in the scheduler's timezone.
type cutTime struct {
	hour, min int
}

// New builds a scheduler firing at the given "15:04" local times. Times must
// already be validated by config.Load.
func New(cut *service.CutService, sup *notify.Supervisor, clock Clock, loc *time.Location, times []string, healthInterval time.Duration, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		Cut:        cut,
		Supervisor: sup,
		Logger:     logger,
		clock:      clock,
		loc:        loc,
		healthIv:   healthInterval,
		state:      StateIdle,
	}
	for _, t := range times {
		parsed, err := time.Parse("15:04", t)
		if err != nil {
			continue
		}
		s.cutTimes = append(s.cutTimes, cutTime{hour: parsed.Hour(), min: parsed.Minute()})
	}
	sort.Slice(s.cutTimes, func(i, j int) bool {
		if s.cutTimes[i].hour != s.cutTimes[j].hour {
			return s.cutTimes[i].hour < s.cutTimes[j].hour
		}
		return s.cutTimes[i].min < s.cutTimes[j].min
	})
	return s
}

// Run blocks until ctx is cancelled. Cut runs execute inline in this loop, so
// a new run can never start while the previous one is still finalizing; each
// run is independent, with no carry-over state.
func (s *Scheduler) Run(ctx context.Context) {
	if len(s.cutTimes) == 0 {
		s.Logger.Warn("no cut times configured, scheduler idle")
		<-ctx.Done()
		return
	}
	go s.healthLoop(ctx)

	for {
		now := s.clock.Now().In(s.loc)
		next := s.NextCutAfter(now)
		s.setNextRun(next)
		s.Logger.Info("next cash cut scheduled", "at", next)

		select {
		case <-ctx.Done():
			s.Logger.Info("scheduler stopping")
			return
		case <-s.clock.After(next.Sub(now)):
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single cut run with full state transitions and
// supervisor reporting. Exported for the scheduler's own loop and tests; the
// manual HTTP trigger uses the cut service directly instead.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.setState(StateRunning)
	now := s.clock.Now().In(s.loc)

	report, err := s.Cut.RunCut(ctx, now, domain.CutTriggerScheduler)
	if err != nil {
		s.setState(StateReportingFailure)
		cutRunsTotal.WithLabelValues("failure").Inc()
		s.Logger.Error("cash cut run failed", "err", err)
		s.report(ctx, notify.StatusError, "cash cut failed", map[string]any{
			"error": err.Error(),
		})
		s.finishRun(now)
		return
	}

	s.setState(StateReportingSuccess)
	cutRunsTotal.WithLabelValues("success").Inc()
	s.Logger.Info("cash cut run succeeded",
		"report_id", report.ID,
		"total_sales", report.TotalSalesCents,
		"total_expenses", report.TotalExpensesCents,
	)
	s.report(ctx, notify.StatusSuccess, "cash cut completed", map[string]any{
		"reportId":      report.ID,
		"periodStart":   report.PeriodStart,
		"periodEnd":     report.PeriodEnd,
		"totalSales":    report.TotalSalesCents,
		"totalExpenses": report.TotalExpensesCents,
		"netTotal":      report.NetTotalCents,
	})
	s.finishRun(now)
}

func (s *Scheduler) healthLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.healthIv):
			s.report(ctx, notify.StatusHealthCheck, "scheduler online", map[string]any{
				"state":   string(s.CurrentState()),
				"nextRun": s.NextRun(),
			})
		}
	}
}

// report is best-effort: a failed post is counted and logged by the notifier,
// never escalated.
func (s *Scheduler) report(ctx context.Context, status notify.Status, message string, data map[string]any) {
	if err := s.Supervisor.Report(ctx, status, message, data); err != nil {
		supervisorFailures.Inc()
	}
}

// NextCutAfter returns the earliest configured fire time strictly after now.
func (s *Scheduler) NextCutAfter(now time.Time) time.Time {
	for dayOffset := 0; ; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		for _, ct := range s.cutTimes {
			candidate := time.Date(day.Year(), day.Month(), day.Day(), ct.hour, ct.min, 0, 0, s.loc)
			if candidate.After(now) {
				return candidate
			}
		}
	}
}

func (s *Scheduler) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

func (s *Scheduler) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Scheduler) setNextRun(t time.Time) {
	s.mu.Lock()
	s.nextRun = t
	s.mu.Unlock()
}

func (s *Scheduler) finishRun(at time.Time) {
	s.mu.Lock()
	s.lastRun = at
	s.state = StateIdle
	s.mu.Unlock()
}
