package upstream

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"opensign-hq/relay/pkg/config"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier wraps one logical outbound call with bounded exponential
// backoff. Only large calls are retried; everything else gets exactly one
// attempt.
//
// Retryability is judged by substring match against the lowercase error
// message, not by structured error codes.
type Retrier struct {
	maxAttempts int
	baseDelay   time.Duration
	retryable   []string
	sleep       Sleeper
	observer    Observer
	logger      *slog.Logger
}

// NewRetrier creates a retrier from configuration.
func NewRetrier(cfg config.RetryConfig, observer Observer) *Retrier {
	if observer == nil {
		observer = nopObserver{}
	}
	retryable := make([]string, 0, len(cfg.RetryableErrors))
	for _, s := range cfg.RetryableErrors {
		retryable = append(retryable, strings.ToLower(s))
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		maxAttempts: maxAttempts,
		baseDelay:   cfg.BaseDelay,
		retryable:   retryable,
		sleep:       SleepContext,
		observer:    observer,
		logger:      slog.Default().With("component", "upstream.retry"),
	}
}

// IsRetryable reports whether err looks like a transient network failure.
func (r *Retrier) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range r.retryable {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// Delay returns the wait before attempt n+1: baseDelay * 2^(n-1).
func (r *Retrier) Delay(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	return r.baseDelay * time.Duration(1<<(n-1))
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. fn receives the 1-based attempt number. The
// last error is returned.
func (r *Retrier) Do(ctx context.Context, large bool, fn func(attempt int) error) error {
	attempts := 1
	if large {
		attempts = r.maxAttempts
	}

	var err error
	for n := 1; ; n++ {
		err = fn(n)
		if err == nil {
			return nil
		}
		if n >= attempts || !r.IsRetryable(err) {
			return err
		}

		delay := r.Delay(n)
		r.observer.RecordRetry()
		r.logger.WarnContext(ctx, "transient upstream failure, will retry",
			"attempt", n,
			"max_attempts", attempts,
			"backoff", delay,
			"error", err,
		)

		if serr := r.sleep(ctx, delay); serr != nil {
			return err
		}
	}
}
