package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/drill"
)

// recordingSleep captures backoff durations without actually sleeping.
func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

// failNTimes returns an Operation that errors with err for the first n
// calls, then succeeds, counting invocations.
func failNTimes(n int, err error, calls *int) Operation {
	return func(context.Context) ([]drill.Record, error) {
		*calls++
		if *calls <= n {
			return nil, err
		}
		return []drill.Record{{Name: "ok"}}, nil
	}
}

// TestFetcher_RetriesThenSucceeds pins the retry budget contract: two
// transient failures then success with maxRetries=3 invokes the operation
// exactly three times and returns the success value.
func TestFetcher_RetriesThenSucceeds(t *testing.T) {
	var (
		delays []time.Duration
		calls  int
	)
	f := NewFetcher(WithSleep(recordingSleep(&delays)))

	records, err := f.Execute(context.Background(), failNTimes(2, errors.New("network unreachable"), &calls), 3)
	require.NoError(t, err)
	assert.Equal(t, "ok", records[0].Name)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{DefaultBaseDelay, 2 * DefaultBaseDelay}, delays)
}

// TestFetcher_NonRetryableAbortsImmediately verifies a terminal error is
// rejected after exactly one invocation with no backoff.
func TestFetcher_NonRetryableAbortsImmediately(t *testing.T) {
	var (
		delays []time.Duration
		calls  int
	)
	f := NewFetcher(WithSleep(recordingSleep(&delays)))

	_, err := f.Execute(context.Background(), failNTimes(5, errors.New("schema mismatch"), &calls), 3)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays, "no backoff delay for terminal errors")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindTerminal, fe.Kind)
	assert.Equal(t, 1, fe.Attempts)
}

// TestFetcher_BudgetExhausted verifies the last error surfaces once the
// budget runs out.
func TestFetcher_BudgetExhausted(t *testing.T) {
	var (
		delays []time.Duration
		calls  int
	)
	f := NewFetcher(WithSleep(recordingSleep(&delays)))

	_, err := f.Execute(context.Background(), failNTimes(10, errors.New("request timeout"), &calls), 3)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, delays, 2, "no sleep after the final attempt")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindTimeout, fe.Kind)
	assert.Equal(t, 3, fe.Attempts)
	assert.True(t, fe.Retryable(), "category stays retryable even when exhausted")
}

// TestFetcher_BackoffIsCapped verifies exponential growth stops at the cap.
func TestFetcher_BackoffIsCapped(t *testing.T) {
	var (
		delays []time.Duration
		calls  int
	)
	f := NewFetcher(
		WithBaseDelay(100*time.Millisecond),
		WithMaxBackoff(300*time.Millisecond),
		WithSleep(recordingSleep(&delays)),
	)

	_, err := f.Execute(context.Background(), failNTimes(10, errors.New("503 5xx from upstream"), &calls), 5)
	require.Error(t, err)
	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond, // capped: uncapped would be 400ms
		300 * time.Millisecond, // capped: uncapped would be 800ms
	}, delays)
}

// TestFetcher_CancellationDuringBackoff verifies a cancelled context aborts
// the wait and is classified as a cancellation signal.
func TestFetcher_CancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	f := NewFetcher(WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := f.Execute(ctx, failNTimes(10, errors.New("network down"), &calls), 3)
	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	assert.Equal(t, 1, calls)
}

// TestFetcher_ZeroRetriesMeansOneAttempt verifies the budget floor.
func TestFetcher_ZeroRetriesMeansOneAttempt(t *testing.T) {
	var calls int
	f := NewFetcher(WithSleep(recordingSleep(new([]time.Duration))))

	records, err := f.Execute(context.Background(), failNTimes(0, nil, &calls), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NotEmpty(t, records)
}

// TestClassify covers the message-substring taxonomy.
func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want Kind
	}{
		{"network unreachable", KindNetwork},
		{"got a 5xx from upstream", KindNetwork},
		{"request timeout after 30s", KindTimeout},
		{"HTTP 429 Too Many Requests", KindRateLimit},
		{"rate limit exceeded", KindRateLimit},
		{"Rate Limit exceeded", KindRateLimit}, // case-insensitive
		{"invalid query", KindTerminal},
		{"", KindTerminal},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Classify(errors.New(tc.msg)), "message %q", tc.msg)
	}

	assert.Equal(t, KindCancelled, Classify(context.Canceled))
	assert.Equal(t, KindTimeout, Classify(context.DeadlineExceeded))
}
