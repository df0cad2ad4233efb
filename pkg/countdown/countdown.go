// Package countdown runs the end-of-day timer shown while tasks are due
// today. A Timer owns at most one running countdown: arming it again stops
// the previous one first.
package countdown

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tableflip.dev/duedeck/pkg/logging"
	"tableflip.dev/duedeck/pkg/timeutil"
)

// DefaultInterval is the tick period.
const DefaultInterval = time.Second

// Tick receives the time left before the deadline. It runs on the timer
// goroutine and must not call Arm or Stop on the same Timer. The final call
// carries zero.
type Tick func(remaining time.Duration)

// Timer is a single owning handle for a countdown. The zero value is ready
// to use.
type Timer struct {
	// Now overrides time.Now.
	Now timeutil.Clock
	// Interval overrides DefaultInterval when positive.
	Interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	live atomic.Int32
}

func (t *Timer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Timer) interval() time.Duration {
	if t.Interval > 0 {
		return t.Interval
	}
	return DefaultInterval
}

// Arm stops any running countdown and starts a new one towards deadline.
// tick is called immediately and then once per interval until the deadline
// passes or ctx is cancelled.
func (t *Timer) Arm(ctx context.Context, deadline time.Time, tick Tick) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done
	t.live.Add(1)

	logging.Logger().Debug("countdown: armed", "deadline", deadline)
	go t.run(ctx, deadline, tick, done)
}

// Stop cancels the running countdown, if any, and waits for it to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel, t.done = nil, nil
	logging.Logger().Debug("countdown: stopped")
}

// Active reports whether a countdown goroutine is still running.
func (t *Timer) Active() bool {
	return t.live.Load() > 0
}

func (t *Timer) run(ctx context.Context, deadline time.Time, tick Tick, done chan struct{}) {
	defer close(done)
	defer t.live.Add(-1)

	ticker := time.NewTicker(t.interval())
	defer ticker.Stop()

	for {
		left := deadline.Sub(t.now())
		if left <= 0 {
			tick(0)
			logging.Logger().Debug("countdown: expired")
			return
		}
		tick(left)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
