package fetch

import (
	"context"
	"log/slog"
	"time"

	"github.com/quarrylabs/quarry/internal/drill"
)

// Operation is one attemptable retrieval. Implementations must respect ctx
// cancellation; the fetcher relies on it for supersession and deadlines.
type Operation func(ctx context.Context) ([]drill.Record, error)

// DefaultBaseDelay is the first backoff interval.
const DefaultBaseDelay = 100 * time.Millisecond

// DefaultMaxBackoff caps exponential backoff growth. Without a cap the
// delay doubles unboundedly with each attempt.
const DefaultMaxBackoff = 30 * time.Second

// Fetcher retries a retrieval with capped exponential backoff.
//
// Retry policy:
//   - Retryable failures (see Classify) consume one attempt each and wait
//     baseDelay * 2^attempt, capped at maxBackoff, before the next try.
//   - Non-retryable failures abort immediately, consuming none of the
//     remaining budget.
//   - Context cancellation aborts the wait and yields a KindCancelled error.
//
// A Fetcher is stateless between calls and safe for concurrent use.
type Fetcher struct {
	baseDelay  time.Duration
	maxBackoff time.Duration
	timeout    time.Duration // 0 = no overall deadline
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBaseDelay sets the first backoff interval.
func WithBaseDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.baseDelay = d }
}

// WithMaxBackoff caps the backoff interval.
func WithMaxBackoff(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.maxBackoff = d }
}

// WithTimeout bounds the whole Execute call (all attempts and waits) with a
// deadline. Zero means no explicit deadline beyond maxRetries * backoff.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.timeout = d }
}

// WithSleep replaces the backoff sleeper. Tests use this to run retries
// without real delays while still observing the requested durations.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) { f.sleep = sleep }
}

// WithFetcherLogger sets the logger for retry diagnostics.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher creates a Fetcher with default backoff settings.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		baseDelay:  DefaultBaseDelay,
		maxBackoff: DefaultMaxBackoff,
		sleep:      sleepCtx,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Execute attempts op up to maxRetries times and returns the first success
// or the last error. maxRetries < 1 is treated as a single attempt.
func (f *Fetcher) Execute(ctx context.Context, op Operation, maxRetries int) ([]drill.Record, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Kind: Classify(err), Op: "execute", Attempts: attempt, Err: err}
		}

		records, err := op(ctx)
		if err == nil {
			return records, nil
		}
		lastErr = err

		kind := Classify(err)
		if kind == KindCancelled {
			return nil, &Error{Kind: KindCancelled, Op: "execute", Attempts: attempt + 1, Err: err}
		}
		if kind == KindTerminal {
			return nil, &Error{Kind: KindTerminal, Op: "execute", Attempts: attempt + 1, Err: err}
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := f.backoff(attempt)
		f.logger.Debug("retrying after transient failure",
			"attempt", attempt+1, "max_retries", maxRetries, "delay", delay, "error", err)
		if err := f.sleep(ctx, delay); err != nil {
			return nil, &Error{Kind: KindCancelled, Op: "execute", Attempts: attempt + 1, Err: err}
		}
	}

	f.logger.Warn("retry budget exhausted", "max_retries", maxRetries, "error", lastErr)
	return nil, &Error{Kind: Classify(lastErr), Op: "execute", Attempts: maxRetries, Err: lastErr}
}

// backoff returns baseDelay * 2^attempt, capped at maxBackoff.
func (f *Fetcher) backoff(attempt int) time.Duration {
	d := f.baseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= f.maxBackoff {
			return f.maxBackoff
		}
	}
	if d > f.maxBackoff {
		return f.maxBackoff
	}
	return d
}

// sleepCtx waits for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
