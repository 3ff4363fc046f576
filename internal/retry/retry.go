package retry

import (
	"context"
	"fmt"
	"time"
)

// Config tunes bounded exponential backoff. The zero value is not useful;
// use DefaultConfig and override fields as needed.
type Config struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Attempts:  5,
		BaseDelay: 1 * time.Second,
		MaxDelay:  20 * time.Second,
	}
}

// ExhaustedError wraps the last underlying error after all attempts failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do invokes op up to cfg.Attempts times, sleeping
// min(BaseDelay * 2^(attempt-1), MaxDelay) between attempts. The sleep is
// cooperative: cancelling ctx aborts the wait and returns ctx's error. Do
// knows nothing about what it retries.
func Do(ctx context.Context, cfg Config, op func(context.Context) error) error {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.Attempts {
			break
		}
		if err := sleep(ctx, backoff(cfg, attempt)); err != nil {
			return err
		}
	}
	return &ExhaustedError{Attempts: cfg.Attempts, Err: lastErr}
}

func backoff(cfg Config, attempt int) time.Duration {
	d := cfg.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if cfg.MaxDelay > 0 && d >= cfg.MaxDelay {
			return cfg.MaxDelay
		}
	}
	if cfg.MaxDelay > 0 && d > cfg.MaxDelay {
		return cfg.MaxDelay
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
