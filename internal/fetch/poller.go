package fetch

import (
	"sync"
	"time"
)

// Poller re-invokes a retrieval on a fixed interval.
//
// Start replaces any running schedule before installing the new one, so
// changing the interval can never double-schedule. Stop is idempotent and
// safe to call on a poller that never started.
type Poller struct {
	mu   sync.Mutex
	fn   func()
	stop chan struct{}
	done chan struct{}
}

// NewPoller creates an idle poller.
func NewPoller() *Poller {
	return &Poller{}
}

// Start begins invoking fn every interval. An already-running schedule is
// stopped first. Non-positive intervals are ignored.
func (p *Poller) Start(interval time.Duration, fn func()) {
	if interval <= 0 || fn == nil {
		return
	}

	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.fn = fn
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(interval, fn, p.stop, p.done)
}

// SetInterval replaces the schedule with one on the new interval, keeping
// the previously registered function. No-op on an idle poller.
func (p *Poller) SetInterval(interval time.Duration) {
	p.mu.Lock()
	fn := p.fn
	running := p.stop != nil
	p.mu.Unlock()

	if !running {
		return
	}
	p.Start(interval, fn)
}

// Stop cancels the schedule and waits for the in-flight tick, if any, to
// finish. Idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether a schedule is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

func (p *Poller) loop(interval time.Duration, fn func(), stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fn()
		}
	}
}
