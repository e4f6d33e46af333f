package oracle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solver/pkg/oracle/llmerrors"
)

func captureSleep(delays *[]time.Duration) SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetryRateLimitBackoffSequence(t *testing.T) {
	mock := NewMockClient(
		[]CompletionResponse{{Content: "ok", StopReason: "end_turn"}},
		[]error{
			llmerrors.NewError(llmerrors.ErrorTypeRateLimit, "429"),
			llmerrors.NewError(llmerrors.ErrorTypeRateLimit, "429"),
		},
	)
	var delays []time.Duration
	client := NewRetryableClientWithSleep(mock, captureSleep(&delays))

	resp, err := client.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, mock.Calls())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestRetryExhaustionEscalates(t *testing.T) {
	rateLimited := llmerrors.NewError(llmerrors.ErrorTypeRateLimit, "429")
	mock := NewMockClient(nil, []error{rateLimited, rateLimited, rateLimited, rateLimited})
	var delays []time.Duration
	client := NewRetryableClientWithSleep(mock, captureSleep(&delays))

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.True(t, llmerrors.IsServiceUnavailable(err))
	// Three retries at 2s/4s/8s, then escalation.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, delays)
	assert.Equal(t, 4, mock.Calls())
}

func TestRetrySkipsNonRetryableErrors(t *testing.T) {
	authErr := llmerrors.NewError(llmerrors.ErrorTypeAuth, "bad key")
	mock := NewMockClient(nil, []error{authErr})
	var delays []time.Duration
	client := NewRetryableClientWithSleep(mock, captureSleep(&delays))

	_, err := client.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.True(t, llmerrors.Is(err, llmerrors.ErrorTypeAuth))
	assert.Empty(t, delays)
	assert.Equal(t, 1, mock.Calls())
}

func TestRetryUnclassifiedErrorNotWrapped(t *testing.T) {
	// Unclassified errors pass through untouched; classification happens
	// in the provider clients.
	mock := NewMockClient(nil, []error{assert.AnError})
	client := NewRetryableClientWithSleep(mock, captureSleep(&[]time.Duration{}))

	_, err := client.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, mock.Calls())
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	rateLimited := llmerrors.NewError(llmerrors.ErrorTypeRateLimit, "429")
	mock := NewMockClient(nil, []error{rateLimited, rateLimited})
	client := NewRetryableClientWithSleep(mock, func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	})

	_, err := client.Complete(context.Background(), CompletionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.Calls())
}

func TestBackoffDelayCapped(t *testing.T) {
	cfg := llmerrors.RetryConfig{
		MaxRetries:    5,
		InitialDelay:  2 * time.Second,
		MaxDelay:      8 * time.Second,
		BackoffFactor: 2.0,
	}
	assert.Equal(t, 2*time.Second, backoffDelay(cfg, 1))
	assert.Equal(t, 4*time.Second, backoffDelay(cfg, 2))
	assert.Equal(t, 8*time.Second, backoffDelay(cfg, 3))
	assert.Equal(t, 8*time.Second, backoffDelay(cfg, 4), "clamped at MaxDelay")
}
