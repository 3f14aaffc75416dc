package testutil

import (
	"context"
	"sync"

	"github.com/quarrylabs/quarry/internal/drill"
	"github.com/quarrylabs/quarry/internal/source"
)

// ScriptedSource is a source.Source that fails a configured number of times
// before succeeding, recording every invocation. It is the workhorse for
// retry and supersession tests.
//
// The source deliberately ignores context cancellation while blocked: it
// models an uncooperative transport whose in-flight result arrives anyway
// and must be discarded by the supersession layer.
type ScriptedSource struct {
	mu sync.Mutex

	// Records is returned once Failures is exhausted.
	Records []drill.Record

	// Failures is how many leading calls return Err.
	Failures int

	// Err is the error returned while Failures remain.
	Err error

	// Block, when non-nil, is received from before each call returns,
	// letting tests hold a retrieval in flight.
	Block chan struct{}

	calls   int
	queries []source.Query
}

var _ source.Source = (*ScriptedSource)(nil)

// Fetch implements source.Source.
func (s *ScriptedSource) Fetch(_ context.Context, q source.Query) ([]drill.Record, error) {
	s.mu.Lock()
	s.calls++
	s.queries = append(s.queries, q)
	fail := s.calls <= s.Failures
	err := s.Err
	records := s.Records
	block := s.Block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail {
		return nil, err
	}
	return records, nil
}

// SetRecords replaces the success payload for subsequent calls.
func (s *ScriptedSource) SetRecords(records []drill.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = records
}

// SetBlock replaces the blocking channel for subsequent calls; nil unblocks.
func (s *ScriptedSource) SetBlock(ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Block = ch
}

// Calls returns how many times Fetch was invoked.
func (s *ScriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Queries returns the queries seen so far, in order.
func (s *ScriptedSource) Queries() []source.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]source.Query(nil), s.queries...)
}
