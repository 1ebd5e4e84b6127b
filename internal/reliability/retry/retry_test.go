package retry

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), fastConfig(), slog.Default(), "connect", func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("not ready")
		}
		return "connected", nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result != "connected" || attempts != 3 {
		t.Fatalf("unexpected result %q after %d attempts", result, attempts)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), fastConfig(), slog.Default(), "connect", func(ctx context.Context) (int, error) {
		attempts++
		return 0, errors.New("down")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnContextCancel(t *testing.T) {
	cfg := fastConfig()
	cfg.InitialBackoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, cfg, slog.Default(), "connect", func(ctx context.Context) (int, error) {
			return 0, errors.New("down")
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancel did not interrupt backoff")
	}
}
