package context

import (
	"context"
	"testing"
	"time"
)

// WithTest wraps ctx with a deadline slightly ahead of the test's own,
// so that tests can clean up resources before the harness kills them.
func WithTest(ctx context.Context, t *testing.T) (context.Context, func()) {
	if deadline, ok := t.Deadline(); ok {
		dctx, cancel := context.WithDeadline(ctx, deadline.Add(-time.Second))
		return dctx, cancel
	}
	return ctx, func() {}
}
