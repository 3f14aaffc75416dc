package fetch

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator generates unique request tokens for supersession tracking.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 request tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens sort by
// issue time, which makes interleaved-request logs easy to read.
//
// Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for deterministic tests.
//
// Panics when all tokens are consumed; exhausting the sequence means the
// test issued more requests than it declared.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("fetch: FixedGenerator exhausted")
	}
	t := g.tokens[g.idx]
	g.idx++
	return t
}

// Slot enforces at most one in-flight retrieval per logical consumer.
//
// Begin cancels whatever retrieval was previously in flight and issues a
// token for the new one. Settle applies a result only if its token is still
// current; results from superseded retrievals are discarded without updating
// any state. This is what guarantees the last-issued, non-cancelled
// retrieval is always the one whose outcome is observed.
type Slot struct {
	mu      sync.Mutex
	gen     TokenGenerator
	current string
	cancel  context.CancelFunc
}

// NewSlot creates a Slot. A nil generator defaults to UUIDv7.
func NewSlot(gen TokenGenerator) *Slot {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	return &Slot{gen: gen}
}

// Begin supersedes any in-flight retrieval: the previous context is
// cancelled before the new token is issued. The returned context should
// drive the new retrieval end to end.
func (s *Slot) Begin(ctx context.Context) (string, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithCancel(ctx)
	s.current = s.gen.Generate()
	s.cancel = cancel
	return s.current, ctx
}

// Settle runs apply only if token is still the current retrieval, and
// reports whether it ran. A stale token's result is dropped on the floor.
func (s *Slot) Settle(token string, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.current {
		return false
	}
	if apply != nil {
		apply()
	}
	return true
}

// Current reports whether token identifies the in-flight retrieval.
func (s *Slot) Current(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token == s.current
}

// Cancel aborts the in-flight retrieval, if any, and invalidates its token
// so a late Settle for it is discarded. Used when the consumer shuts down.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.current = ""
	}
}
