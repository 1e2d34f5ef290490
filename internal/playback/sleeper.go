// internal/playback/sleeper.go
package playback

import (
	"context"
	"time"
)

// Sleeper waits for a duration. Tests substitute a recording fake.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemSleeper is the production Sleeper.
type SystemSleeper struct{}

// Sleep blocks for d or until ctx is done.
func (SystemSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// wait skips zero waits so overridden delays add no latency.
func wait(s Sleeper, t Token, d time.Duration) {
	if d <= 0 {
		return
	}
	// the caller's checkpoint decides what a cut-short wait means
	_ = s.Sleep(t.Context(), d)
}
