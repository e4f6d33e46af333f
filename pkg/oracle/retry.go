package oracle

import (
	"context"
	"errors"
	"math"
	"time"

	"solver/pkg/logx"
	"solver/pkg/oracle/llmerrors"
)

// SleepFunc waits for the given duration or until the context is
// canceled. Injectable so retry behavior is testable without real
// delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// RetryableClient wraps a Client with per-error-type retry logic. A
// rate-limited request is retried in place with the 2s/4s/8s backoff
// sequence; the caller's iteration accounting never sees the retries.
// Exhausting retries escalates to a service-unavailable error, which is
// session-fatal.
type RetryableClient struct {
	client Client
	sleep  SleepFunc
	logger *logx.Logger
}

// NewRetryableClient creates a retrying wrapper around an oracle client.
func NewRetryableClient(client Client) *RetryableClient {
	return &RetryableClient{
		client: client,
		sleep:  defaultSleep,
		logger: logx.NewLogger("oracle"),
	}
}

// NewRetryableClientWithSleep creates a retrying wrapper with an
// injected sleep function for tests.
func NewRetryableClientWithSleep(client Client, sleep SleepFunc) *RetryableClient {
	return &RetryableClient{
		client: client,
		sleep:  sleep,
		logger: logx.NewLogger("oracle"),
	}
}

// backoffDelay computes the delay before retry attempt n (1-based) under
// the given config.
func backoffDelay(cfg llmerrors.RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1)))
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// Complete implements Client with retry logic.
func (r *RetryableClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	attempt := 0
	for {
		resp, err := r.client.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}

		var classified *llmerrors.Error
		if !errors.As(err, &classified) || !classified.IsRetryable() {
			return CompletionResponse{}, err
		}

		cfg := classified.GetRetryConfig()
		attempt++
		if attempt > cfg.MaxRetries {
			r.logger.Error("retries exhausted after %d attempts: %v", attempt-1, err)
			return CompletionResponse{}, llmerrors.NewServiceUnavailableError(err, attempt-1)
		}

		delay := backoffDelay(cfg, attempt)
		r.logger.Warn("%s error from oracle, retry %d/%d in %s", classified.Type, attempt, cfg.MaxRetries, delay)
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return CompletionResponse{}, sleepErr
		}
	}
}

// Stream implements Client; streaming is not retried beyond establishment.
func (r *RetryableClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	return r.client.Stream(ctx, req)
}

// GetModelName returns the wrapped client's model name.
func (r *RetryableClient) GetModelName() string {
	return r.client.GetModelName()
}
