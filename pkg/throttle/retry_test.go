package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var testLogger = zerolog.New(nil).Level(zerolog.Disabled)

func serverClassify(error) ErrorClass { return ErrorClassServer }

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", config.MaxAttempts)
	}
	if config.InitialBackoff != 1*time.Second {
		t.Errorf("InitialBackoff = %v, want 1s", config.InitialBackoff)
	}
	if config.MaxBackoff != 30*time.Second {
		t.Errorf("MaxBackoff = %v, want 30s", config.MaxBackoff)
	}
	if config.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", config.BackoffMultiplier)
	}
}

func TestRetryConfigForErrorClass(t *testing.T) {
	tests := []struct {
		name             string
		errorClass       ErrorClass
		expectedInitial  time.Duration
		expectedMax      time.Duration
		expectedAttempts int
	}{
		{
			name:             "server error config",
			errorClass:       ErrorClassServer,
			expectedInitial:  1 * time.Second,
			expectedMax:      10 * time.Second,
			expectedAttempts: 3,
		},
		{
			name:             "throttled config",
			errorClass:       ErrorClassThrottled,
			expectedInitial:  5 * time.Second,
			expectedMax:      60 * time.Second,
			expectedAttempts: 3,
		},
		{
			name:             "network error config",
			errorClass:       ErrorClassNetwork,
			expectedInitial:  2 * time.Second,
			expectedMax:      30 * time.Second,
			expectedAttempts: 3,
		},
		{
			name:             "unknown error class uses default",
			errorClass:       "",
			expectedInitial:  1 * time.Second,
			expectedMax:      30 * time.Second,
			expectedAttempts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := RetryConfigForErrorClass(tt.errorClass)

			if config.InitialBackoff != tt.expectedInitial {
				t.Errorf("InitialBackoff = %v, want %v", config.InitialBackoff, tt.expectedInitial)
			}
			if config.MaxBackoff != tt.expectedMax {
				t.Errorf("MaxBackoff = %v, want %v", config.MaxBackoff, tt.expectedMax)
			}
			if config.MaxAttempts != tt.expectedAttempts {
				t.Errorf("MaxAttempts = %d, want %d", config.MaxAttempts, tt.expectedAttempts)
			}
		})
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), testLogger, func() error {
		calls++
		return nil
	}, serverClassify)

	if err != nil {
		t.Errorf("retryWithBackoff() error = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	calls := 0
	start := time.Now()

	err := retryWithBackoff(context.Background(), testLogger, func() error {
		calls++
		if calls < 2 {
			return &RemoteError{StatusCode: 500, Class: ErrorClassServer, Payload: "boom"}
		}
		return nil
	}, serverClassify)

	duration := time.Since(start)

	if err != nil {
		t.Errorf("retryWithBackoff() error = %v, want nil", err)
	}
	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
	// One backoff of ~1s ±20% jitter must have happened
	if duration < 500*time.Millisecond {
		t.Errorf("Expected at least one backoff sleep, took %v", duration)
	}
}

func TestRetryWithBackoff_MaxAttemptsExhausted(t *testing.T) {
	calls := 0
	failure := &RemoteError{StatusCode: 503, Class: ErrorClassServer, Payload: "unavailable"}

	err := retryWithBackoff(context.Background(), testLogger, func() error {
		calls++
		return failure
	}, serverClassify)

	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}

	// The original typed failure must survive the wrapping
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Error("Expected RemoteError in the error chain")
	}
}

func TestRetryWithBackoff_ClientErrorNoRetry(t *testing.T) {
	calls := 0
	failure := &RemoteError{StatusCode: 400, Class: ErrorClassClient, Payload: "bad request"}

	err := retryWithBackoff(context.Background(), testLogger, func() error {
		calls++
		return failure
	}, func(error) ErrorClass { return ErrorClassClient })

	if err == nil {
		t.Fatal("Expected error")
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("Client errors must not be wrapped as retry exhaustion")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (no retries for client errors)", calls)
	}
}

func TestRetryWithBackoff_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err := retryWithBackoff(ctx, testLogger, func() error {
		calls++
		return errors.New("network down")
	}, func(error) ErrorClass { return ErrorClassNetwork })

	if err == nil {
		t.Fatal("Expected error")
	}
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("Expected ErrCancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 (cancelled during first backoff)", calls)
	}
}

func TestRetryWithBackoff_NonRetryableClassification(t *testing.T) {
	// Cancellation surfaced by fn itself must not be retried
	calls := 0
	err := retryWithBackoff(context.Background(), testLogger, func() error {
		calls++
		return context.Canceled
	}, classify)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetryWithBackoff_MaxBackoffCap(t *testing.T) {
	config := RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 3.0,
	}

	backoff := config.InitialBackoff
	for i := 0; i < 4; i++ {
		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	if backoff != config.MaxBackoff {
		t.Errorf("Backoff = %v, want capped at %v", backoff, config.MaxBackoff)
	}
}
