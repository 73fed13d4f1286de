package system

import (
	"context"
	"time"
)

// timeoutExecutor bounds every command it runs with a fixed deadline.
type timeoutExecutor struct {
	next    CommandExecutor
	timeout time.Duration
}

// WithTimeout wraps exec so that each command is cancelled after d.
// A non-positive d returns exec unchanged.
func WithTimeout(exec CommandExecutor, d time.Duration) CommandExecutor {
	if d <= 0 {
		return exec
	}
	return &timeoutExecutor{next: exec, timeout: d}
}

func (t *timeoutExecutor) Run(ctx context.Context, c Command) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Run(ctx, c)
}

func (t *timeoutExecutor) Output(ctx context.Context, c Command) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Output(ctx, c)
}
