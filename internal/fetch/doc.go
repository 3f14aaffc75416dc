// Package fetch is the resilient data-retrieval layer: a per-consumer TTL
// cache, retry with capped exponential backoff, request supersession, and
// optional polling.
//
// FAILURE-HANDLING CONTRACTS:
//
// Retry:
// Transient upstream failures (network, timeout, 429/rate limit, 5xx) are
// retried transparently up to the request's budget. Once exhausted, the
// error becomes terminal and reaches the consumer through its state
// callback. Non-retryable failures propagate immediately and consume none
// of the remaining budget.
//
// Supersession:
// Each Client holds at most one in-flight retrieval. A new Load cancels the
// prior one before starting; a cancelled retrieval's result, even if it
// resolves, never updates state and never surfaces as a user-visible error.
// This makes the last-issued, non-cancelled retrieval the one whose result
// is observed - there is no stale-overwrite race to reason about.
//
// Caching:
// A hit short-circuits the network entirely. Stale-while-revalidate is
// deliberately not implemented; the tradeoff is freshness for simplicity,
// and the cache never throws - anomalies degrade to a miss.
package fetch
