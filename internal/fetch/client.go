package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/quarrylabs/quarry/internal/drill"
	"github.com/quarrylabs/quarry/internal/source"
)

// Request describes one logical retrieval.
type Request struct {
	// Query is the upstream query to run on a miss.
	Query source.Query

	// CacheKey overrides the derived cache key. Leave empty to key by
	// (dataset, path, time range).
	CacheKey string

	// MaxRetries bounds attempts for transient failures. Zero means one
	// attempt.
	MaxRetries int

	// PollInterval, when positive, is used by Poll to re-issue the request
	// periodically.
	PollInterval time.Duration
}

// State is the loading/error snapshot pushed to the consumer's callback.
// A swallowed cancellation never reaches the callback: a superseded
// retrieval leaves the state reflecting the request that superseded it.
type State struct {
	Loading bool
	Err     error
}

// Client is the per-consumer retrieval pipeline: TTL cache in front,
// singleflight deduplication and retry behind it, with supersession
// guaranteeing at most one in-flight retrieval and last-write-wins state.
//
// A cache hit short-circuits the network entirely; there is no
// stale-while-revalidate. Freshness is traded for simplicity, and callers
// that need fresher data lower the TTL.
//
// Each consumer (one chart, one dashboard panel) constructs its own Client.
// Nothing is shared unless two consumers are handed the same Cache on
// purpose.
type Client struct {
	src     source.Source
	cache   *Cache // nil disables caching
	fetcher *Fetcher
	slot    *Slot
	poller  *Poller
	group   singleflight.Group
	onState func(State)
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithCache gives the client a cache. Each consumer normally constructs its
// own; passing a shared instance intentionally shares a key namespace.
func WithCache(c *Cache) ClientOption {
	return func(cl *Client) { cl.cache = c }
}

// WithCacheTTL is shorthand for WithCache(NewCache(ttl)).
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(cl *Client) { cl.cache = NewCache(ttl) }
}

// WithFetcher replaces the default retry policy.
func WithFetcher(f *Fetcher) ClientOption {
	return func(cl *Client) { cl.fetcher = f }
}

// WithTokens replaces the supersession token generator (tests).
func WithTokens(gen TokenGenerator) ClientOption {
	return func(cl *Client) { cl.slot = NewSlot(gen) }
}

// WithStateFunc registers the consumer's loading/error callback.
func WithStateFunc(fn func(State)) ClientOption {
	return func(cl *Client) { cl.onState = fn }
}

// WithLogger sets the client's logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) { cl.logger = logger }
}

// NewClient creates a retrieval client over src.
func NewClient(src source.Source, opts ...ClientOption) *Client {
	c := &Client{
		src:     src,
		fetcher: NewFetcher(),
		slot:    NewSlot(nil),
		poller:  NewPoller(),
		onState: func(State) {},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load resolves a request: cache first, then the network with retry.
//
// Issuing a Load while another is in flight supersedes it; the superseded
// call returns a KindCancelled error that the caller must treat as "nothing
// happened" (IsCancelled reports true). State callbacks fire only for the
// retrieval that currently owns the slot, so a stale result can neither
// update state nor surface an error.
func (c *Client) Load(ctx context.Context, req Request) ([]drill.Record, error) {
	key := req.CacheKey
	if key == "" {
		key = Key(req.Query.Dataset, req.Query.Path, req.Query.From, req.Query.To)
	}

	if c.cache != nil {
		if records, ok := c.cache.Get(key); ok {
			return records, nil
		}
	}

	token, ctx := c.slot.Begin(ctx)
	c.slot.Settle(token, func() { c.onState(State{Loading: true}) })

	// Any in-flight group entry for this key belongs to the retrieval that
	// Begin just superseded and runs on its cancelled context; joining it
	// would hand this call the old retrieval's cancellation instead of a
	// fresh attempt. Drop the entry so this retrieval gets its own flight.
	c.group.Forget(key)

	result, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetcher.Execute(ctx, func(ctx context.Context) ([]drill.Record, error) {
			return c.src.Fetch(ctx, req.Query)
		}, req.MaxRetries)
	})

	if err != nil {
		if IsCancelled(err) {
			// Superseded or shut down: swallowed, never user-visible.
			c.logger.Debug("retrieval superseded", "key", key)
			return nil, &Error{Kind: KindCancelled, Op: "load", Key: key, Err: err}
		}
		kind := Classify(err)
		var fe *Error
		if errors.As(err, &fe) {
			kind = fe.Kind
		}
		c.slot.Settle(token, func() { c.onState(State{Loading: false, Err: err}) })
		return nil, &Error{Kind: kind, Op: "load", Key: key, Err: err}
	}

	records := result.([]drill.Record)
	settled := c.slot.Settle(token, func() {
		if c.cache != nil {
			c.cache.Set(key, records)
		}
		c.onState(State{Loading: false})
	})
	if !settled {
		// A newer request took the slot while this one was resolving.
		c.logger.Debug("stale result discarded", "key", key)
		return nil, &Error{Kind: KindCancelled, Op: "load", Key: key}
	}
	return records, nil
}

// Poll re-issues req every req.PollInterval until StopPolling or Close.
// Results land in the cache and the state callback exactly as for Load.
func (c *Client) Poll(req Request) {
	if req.PollInterval <= 0 {
		return
	}
	c.poller.Start(req.PollInterval, func() {
		if _, err := c.Load(context.Background(), req); err != nil && !IsCancelled(err) {
			c.logger.Warn("poll retrieval failed", "dataset", req.Query.Dataset, "error", err)
		}
	})
}

// SetPollInterval reschedules polling on a new interval.
func (c *Client) SetPollInterval(interval time.Duration) {
	c.poller.SetInterval(interval)
}

// StopPolling cancels the polling schedule, if any.
func (c *Client) StopPolling() {
	c.poller.Stop()
}

// Close stops polling and cancels any in-flight retrieval.
func (c *Client) Close() {
	c.poller.Stop()
	c.slot.Cancel()
}
