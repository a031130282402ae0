package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestCategoryString(t *testing.T) {
	tests := []struct {
		category Category
		expected string
	}{
		{CategoryTransient, "transient"},
		{CategoryPermanent, "permanent"},
		{Category(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.category.String(); got != tt.expected {
				t.Errorf("Category(%d).String() = %s, want %s", tt.category, got, tt.expected)
			}
		})
	}
}

// timeoutNetError is a net.Error reporting a timeout.
type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryPermanent},
		{"unknown", errors.New("boom"), CategoryPermanent},
		{"explicit transient", Transient(errors.New("x"), "send"), CategoryTransient},
		{"explicit permanent", Permanent(errors.New("x"), "send"), CategoryPermanent},
		{"wrapped categorized", fmt.Errorf("outer: %w", Transient(errors.New("x"), "")), CategoryTransient},
		{"timeout error", &TimeoutError{Operation: "write", Duration: time.Second}, CategoryTransient},
		{"payload too large", &PayloadTooLargeError{Size: 5000, Max: 4068}, CategoryPermanent},
		{"net timeout", &net.OpError{Op: "write", Err: timeoutNetError{}}, CategoryTransient},
		{"connection refused", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, CategoryTransient},
		{"socket missing", &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ENOENT)}, CategoryTransient},
		{"no buffer space", fmt.Errorf("write: %w", syscall.ENOBUFS), CategoryTransient},
		{"would block", syscall.EAGAIN, CategoryTransient},
		{"permission denied", syscall.EACCES, CategoryPermanent},
		{"cancelled", context.Canceled, CategoryPermanent},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), CategoryPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.err); got != tt.want {
				t.Errorf("Categorize(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestCategorizedError(t *testing.T) {
	underlying := errors.New("connection refused")
	err := &CategorizedError{
		Err:      underlying,
		Category: CategoryTransient,
		Retries:  2,
		Context:  "send atom 105",
	}

	want := "send atom 105: connection refused (category: transient, attempts: 2)"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should find the underlying error")
	}

	bare := &CategorizedError{Err: underlying, Category: CategoryPermanent}
	if got := bare.Error(); got != "connection refused (category: permanent, attempts: 0)" {
		t.Errorf("Error() without context = %q", got)
	}
}

func TestTypesFormat(t *testing.T) {
	if got := (&TimeoutError{Operation: "write frame", Duration: 2 * time.Second}).Error(); got != "timeout after 2s: write frame" {
		t.Errorf("TimeoutError = %q", got)
	}
	if got := (&PayloadTooLargeError{Size: 5000, Max: 4068}).Error(); got != "payload of 5000 bytes exceeds maximum 4068" {
		t.Errorf("PayloadTooLargeError = %q", got)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(syscall.ECONNREFUSED) {
		t.Error("ECONNREFUSED should be retryable")
	}
	if IsRetryable(&PayloadTooLargeError{}) {
		t.Error("oversized payload should not be retryable")
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("success on first try", func(t *testing.T) {
		calls := 0
		cfg := NewRetryConfig(WithMaxAttempts(3))
		result := WithRetry(cfg, func() (int, error) {
			calls++
			return 24, nil
		})

		if result.Err != nil {
			t.Errorf("Unexpected error: %v", result.Err)
		}
		if result.Value != 24 {
			t.Errorf("Value = %d, want 24", result.Value)
		}
		if result.Attempts != 1 || calls != 1 {
			t.Errorf("Attempts = %d, calls = %d, want 1", result.Attempts, calls)
		}
	})

	t.Run("success on retry", func(t *testing.T) {
		calls := 0
		var retried []int
		cfg := NewRetryConfig(
			WithMaxAttempts(3),
			WithInitialBackoff(time.Millisecond),
			WithOnRetry(func(attempt int, _ error, _ time.Duration) {
				retried = append(retried, attempt)
			}),
		)
		result := WithRetry(cfg, func() (int, error) {
			calls++
			if calls < 2 {
				return 0, syscall.ECONNREFUSED
			}
			return 1, nil
		})

		if result.Err != nil {
			t.Errorf("Unexpected error: %v", result.Err)
		}
		if result.Attempts != 2 {
			t.Errorf("Attempts = %d, want 2", result.Attempts)
		}
		if len(retried) != 1 || retried[0] != 1 {
			t.Errorf("OnRetry calls = %v, want [1]", retried)
		}
	})

	t.Run("max attempts exceeded", func(t *testing.T) {
		cfg := NewRetryConfig(
			WithMaxAttempts(3),
			WithInitialBackoff(time.Millisecond),
		)
		result := WithRetry(cfg, func() (int, error) {
			return 0, syscall.ENOBUFS
		})

		if result.Err == nil {
			t.Fatal("Expected error after max attempts")
		}
		if result.Attempts != 3 {
			t.Errorf("Attempts = %d, want 3", result.Attempts)
		}
		if !IsRetryable(result.Err) {
			t.Error("exhausted transient error should stay transient")
		}
		if !errors.Is(result.Err, syscall.ENOBUFS) {
			t.Error("result should wrap the last error")
		}
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		calls := 0
		cfg := NewRetryConfig(WithMaxAttempts(3))
		result := WithRetry(cfg, func() (int, error) {
			calls++
			return 0, &PayloadTooLargeError{Size: 9000, Max: 4068}
		})

		if result.Err == nil {
			t.Error("Expected error")
		}
		if calls != 1 {
			t.Errorf("Calls = %d, want 1 (should not retry permanent error)", calls)
		}
	})

	t.Run("zero attempts still tries once", func(t *testing.T) {
		calls := 0
		result := WithRetry(RetryConfig{}, func() (int, error) {
			calls++
			return 0, nil
		})
		if calls != 1 || result.Attempts != 1 {
			t.Errorf("calls = %d, attempts = %d, want 1", calls, result.Attempts)
		}
	})
}

func TestWithRetryContext(t *testing.T) {
	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		cfg := NewRetryConfig(WithMaxAttempts(3))
		result := WithRetryContext(ctx, cfg, func(_ context.Context) (int, error) {
			return 1, nil
		})

		if result.Err == nil {
			t.Error("Expected error from cancelled context")
		}
		if result.Attempts != 0 {
			t.Errorf("Attempts = %d, want 0", result.Attempts)
		}
	})

	t.Run("cancellation during backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0

		cfg := NewRetryConfig(
			WithMaxAttempts(5),
			WithInitialBackoff(100*time.Millisecond),
			WithJitter(0),
		)

		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		result := WithRetryContext(ctx, cfg, func(_ context.Context) (int, error) {
			calls++
			return 0, syscall.EAGAIN
		})

		if result.Err == nil {
			t.Error("Expected error from cancelled context")
		}
		if calls > 2 {
			t.Errorf("Calls = %d, expected <= 2 (should cancel during backoff)", calls)
		}
	})
}

func TestNewRetryConfig(t *testing.T) {
	cfg := NewRetryConfig(
		WithMaxAttempts(7),
		WithInitialBackoff(time.Millisecond),
		WithMaxBackoff(time.Second),
		WithBackoffFactor(3),
		WithJitter(0.5),
	)

	if cfg.MaxAttempts != 7 {
		t.Errorf("MaxAttempts = %d, want 7", cfg.MaxAttempts)
	}
	if cfg.InitialBackoff != time.Millisecond {
		t.Errorf("InitialBackoff = %v", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != time.Second {
		t.Errorf("MaxBackoff = %v", cfg.MaxBackoff)
	}
	if cfg.BackoffFactor != 3 {
		t.Errorf("BackoffFactor = %v", cfg.BackoffFactor)
	}
	if cfg.Jitter != 0.5 {
		t.Errorf("Jitter = %v", cfg.Jitter)
	}

	if NoRetry.MaxAttempts != 1 {
		t.Errorf("NoRetry.MaxAttempts = %d, want 1", NoRetry.MaxAttempts)
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	if got := calculateBackoff(base, 0); got != base {
		t.Errorf("no jitter: got %v, want %v", got, base)
	}
	for i := 0; i < 100; i++ {
		got := calculateBackoff(base, 0.2)
		if got < 80*time.Millisecond || got > 120*time.Millisecond {
			t.Fatalf("jittered backoff %v outside ±20%%", got)
		}
	}
}
