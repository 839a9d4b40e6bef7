package upstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"opensign-hq/relay/pkg/config"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func testRetrier(s *recordingSleeper) *Retrier {
	r := NewRetrier(config.RetryConfig{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		RetryableErrors: config.DefaultRetryableErrors(),
	}, nil)
	r.sleep = s.sleep
	return r
}

func TestRetrier_BackoffDelays(t *testing.T) {
	s := &recordingSleeper{}
	r := testRetrier(s)

	calls := 0
	err := r.Do(context.Background(), true, func(attempt int) error {
		calls++
		if attempt <= 2 {
			return errors.New("read tcp: connection reset by peer")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(s.delays) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, s.delays)
	}
	for i := range want {
		if s.delays[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, s.delays[i], want[i])
		}
	}
}

func TestRetrier_NonLargeSingleAttempt(t *testing.T) {
	s := &recordingSleeper{}
	r := testRetrier(s)

	calls := 0
	err := r.Do(context.Background(), false, func(int) error {
		calls++
		return errors.New("i/o timeout")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", calls)
	}
	if len(s.delays) != 0 {
		t.Errorf("expected no backoff, got %v", s.delays)
	}
}

func TestRetrier_NonRetryableError(t *testing.T) {
	s := &recordingSleeper{}
	r := testRetrier(s)

	calls := 0
	err := r.Do(context.Background(), true, func(int) error {
		calls++
		return errors.New("no such host")
	})

	if err == nil || calls != 1 {
		t.Errorf("expected 1 failed attempt, got %d (err=%v)", calls, err)
	}
}

func TestRetrier_ExhaustsAttempts(t *testing.T) {
	s := &recordingSleeper{}
	r := testRetrier(s)

	calls := 0
	err := r.Do(context.Background(), true, func(int) error {
		calls++
		return errors.New("unexpected EOF")
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
	if len(s.delays) != 2 {
		t.Errorf("expected 2 backoffs, got %d", len(s.delays))
	}
}

func TestRetrier_StopsWhenContextDone(t *testing.T) {
	r := NewRetrier(config.RetryConfig{
		MaxAttempts:     3,
		BaseDelay:       time.Hour,
		RetryableErrors: config.DefaultRetryableErrors(),
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Do(ctx, true, func(int) error {
		calls++
		return errors.New("socket hang up")
	})

	if err == nil || err.Error() != "socket hang up" {
		t.Errorf("expected last attempt error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}

func TestRetrier_IsRetryable(t *testing.T) {
	r := testRetrier(&recordingSleeper{})

	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Connection Reset by peer"), true},
		{errors.New("context deadline exceeded (Client.Timeout exceeded)"), true},
		{errors.New("other side terminated"), true},
		{errors.New("dial tcp: lookup example: no such host"), false},
	}
	for _, tt := range tests {
		if got := r.IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
