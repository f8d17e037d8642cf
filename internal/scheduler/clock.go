package scheduler

import "time"

// Clock abstracts time so tests can drive the scheduler with a fake.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the production clock.
func SystemClock() Clock { return systemClock{} }
