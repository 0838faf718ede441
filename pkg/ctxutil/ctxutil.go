// Package ctxutil provides small context helpers shared across commands.
package ctxutil

import (
	"context"
	"time"
)

// Sleep waits for d or until ctx is done, whichever comes first.
// Returns ctx.Err() when interrupted, nil after a full wait.
// A non-positive d does not wait at all but still reports cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
