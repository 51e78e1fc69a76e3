package bot

import (
	"context"
	"time"
)

const maxRetryDelay = time.Minute

// backoff retries a failing refresh with doubling delays.
type backoff struct {
	maxRetries int
	baseDelay  time.Duration
	// onRetry is called before each wait, if set.
	onRetry func(attempt int, delay time.Duration, err error)
}

func (b backoff) run(ctx context.Context, fn func(context.Context) error) error {
	maxRetries := b.maxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := b.baseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}
		if b.onRetry != nil {
			b.onRetry(attempt+1, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay = min(delay*2, maxRetryDelay)
	}
}
