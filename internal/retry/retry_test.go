package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 5 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDo_Success(t *testing.T) {
	attempts := 0

	err := Do(context.Background(), testConfig(), nil, func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Do() returned error = %v, want nil", err)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestDo_PermanentError(t *testing.T) {
	attempts := 0
	permanentErr := errors.New("permanent")

	// Classifier that marks this error as non-retryable
	classifier := func(err error) bool {
		return !errors.Is(err, permanentErr)
	}

	err := Do(context.Background(), testConfig(), classifier, func(ctx context.Context) error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Errorf("Do() returned error = %v, want %v", err, permanentErr)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}

func TestDo_RetryableError(t *testing.T) {
	attempts := 0
	tempErr := errors.New("temporary")

	err := Do(context.Background(), testConfig(), nil, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return tempErr
		}
		return nil
	})

	if err != nil {
		t.Errorf("Do() returned error = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("Do() made %d attempts, want 3", attempts)
	}
}

func TestDo_MaxRetriesExceeded(t *testing.T) {
	attempts := 0
	tempErr := errors.New("temporary")
	cfg := testConfig()

	err := Do(context.Background(), cfg, nil, func(ctx context.Context) error {
		attempts++
		return tempErr
	})

	if !errors.Is(err, tempErr) {
		t.Errorf("Do() returned error = %v, want wrapped %v", err, tempErr)
	}
	if attempts != cfg.MaxRetries+1 {
		t.Errorf("Do() made %d attempts, want %d", attempts, cfg.MaxRetries+1)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tempErr := errors.New("temporary")

	attempts := 0
	err := Do(ctx, testConfig(), nil, func(ctx context.Context) error {
		attempts++
		cancel()
		return tempErr
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() returned error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("Do() made %d attempts, want 1", attempts)
	}
}
