package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(context.Background(), fastRetry(), func() error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("transient")
		}
		return nil
	}, func(err error) ErrorClass {
		return ErrorClassServer
	})

	if err != nil {
		t.Fatalf("retryWithBackoff() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_ClientErrorReturnsImmediately(t *testing.T) {
	attempts := 0
	wantErr := fmt.Errorf("bad request")

	err := retryWithBackoff(context.Background(), fastRetry(), func() error {
		attempts++
		return wantErr
	}, func(err error) ErrorClass {
		return ErrorClassClient
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetry()
	cfg.InitialBackoff = time.Minute // must never actually wait

	err := retryWithBackoff(ctx, cfg, func() error {
		return fmt.Errorf("transient")
	}, func(err error) ErrorClass {
		return ErrorClassNetwork
	})

	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
}
