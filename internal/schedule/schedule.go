package schedule

import (
	"context"
	"time"
)

// Scheduler runs choreography callbacks after fixed delays or on a fixed period.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	// Every calls f every d until ctx is done.
	Every(ctx context.Context, d time.Duration, f func())
}

type Timer interface {
	Stop() bool
}

// Real is backed by the runtime timers.
type Real struct{}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (Real) Every(ctx context.Context, d time.Duration, f func()) {
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if ctx.Err() != nil {
					return
				}
				f()
			}
		}
	}()
}
