package scheduler

import (
	"context"
	"time"
)

// Clock abstracts wall-clock time so the loop can be driven in tests.
type Clock interface {
	Now() time.Time
	// SleepUntil blocks until t or until ctx is done, returning ctx.Err() in the latter case.
	SleepUntil(ctx context.Context, t time.Time) error
}

// SystemClock reads time in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return now
}

func (c SystemClock) SleepUntil(ctx context.Context, t time.Time) error {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
