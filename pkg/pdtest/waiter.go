package pdtest

import (
	"context"
	"fmt"
	"time"
)

// WaitFor polls condition until it returns true or timeout elapses,
// matching test/framework's Waiter — a scheduling-core test has the same
// need to poll for an asynchronous outcome (a work-stolen deque going
// empty, a pending CE request getting satisfied) as the cluster-lifecycle
// tests that pattern was grounded on.
func WaitFor(ctx context.Context, timeout, interval time.Duration, description string, condition func() bool) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if condition() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("pdtest: timeout waiting for: %s (timeout: %v)", description, timeout)
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
