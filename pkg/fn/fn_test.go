package fn

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestOkAndErr(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("expected ok")
	}
	if v, err := r.Unwrap(); v != 42 || err != nil {
		t.Fatalf("unexpected %d, %v", v, err)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() || !e.IsErr() {
		t.Fatal("expected err")
	}
	if e.UnwrapOr(7) != 7 {
		t.Fatal("expected fallback")
	}
}

func TestFromPair(t *testing.T) {
	if !FromPair("x", nil).IsOk() {
		t.Fatal("expected ok")
	}
	if _, err := FromPair("x", errors.New("bad")).Unwrap(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRetrySuccess(t *testing.T) {
	calls := 0
	r := Retry(context.Background(), RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond}, func(context.Context) Result[string] {
		calls++
		if calls < 2 {
			return Err[string](errors.New("transient"))
		}
		return Ok("connected")
	})
	if v, _ := r.Unwrap(); v != "connected" || calls != 2 {
		t.Fatalf("expected success on 2nd attempt, got %q after %d", v, calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	r := Retry(context.Background(), RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond}, func(context.Context) Result[int] {
		calls++
		return Err[int](errors.New("down"))
	})
	if r.IsOk() || calls != 3 {
		t.Fatalf("expected 3 failed attempts, got %d", calls)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	permanent := errors.New("bad credentials")
	calls := 0
	r := Retry(context.Background(), RetryOpts{
		MaxAttempts: 5,
		InitialWait: time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, permanent) },
	}, func(context.Context) Result[int] {
		calls++
		return Err[int](permanent)
	})
	if _, err := r.Unwrap(); !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected one attempt with the permanent error, got %d: %v", calls, err)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := Retry(ctx, RetryOpts{MaxAttempts: 5, InitialWait: time.Hour}, func(context.Context) Result[int] {
		calls++
		cancel()
		return Err[int](errors.New("fail"))
	})
	if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryZeroAttempts(t *testing.T) {
	calls := 0
	Retry(context.Background(), RetryOpts{}, func(context.Context) Result[int] {
		calls++
		return Ok(1)
	})
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}
