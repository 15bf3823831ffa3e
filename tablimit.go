package pagepdf

import (
	"context"
	"runtime"
)

// Tab limit constants.
const (
	// MinTabs ensures at least one render can run.
	MinTabs = 1

	// MaxTabs caps concurrent tabs to limit renderer memory (~100MB each).
	MaxTabs = 8

	// cpuDivisor leaves headroom for Chrome's renderer processes.
	cpuDivisor = 2
)

// tabLimiter bounds the number of tabs open on the shared browser.
type tabLimiter struct {
	slots chan struct{}
}

func newTabLimiter(n int) *tabLimiter {
	if n < MinTabs {
		n = MinTabs
	}
	return &tabLimiter{slots: make(chan struct{}, n)}
}

// acquire blocks until a tab slot is free or ctx is done.
func (l *tabLimiter) acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *tabLimiter) release() {
	<-l.slots
}

// size returns the limiter capacity.
func (l *tabLimiter) size() int {
	return cap(l.slots)
}

// ResolveTabLimit determines how many tabs may render at once.
// Priority: explicit value > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveTabLimit(tabs int) int {
	if tabs > 0 {
		return tabs
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinTabs {
		return MinTabs
	}
	if n > MaxTabs {
		return MaxTabs
	}
	return n
}
