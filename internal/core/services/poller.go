package services

import (
	"context"
	"sync"
	"time"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/logger"
)

// Poller drives the periodic snapshot cadence. It owns timing only: the
// cycle function it is given decides whether a run actually happens, which
// is how overlapping cycles are coalesced.
//
// Interval changes take effect on the next tick; the wait already in
// progress is never restarted.
type Poller struct {
	cycle func(ctx context.Context)

	mu      sync.Mutex
	state   domain.PollingState
	pending time.Duration
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPoller creates a disarmed poller around a cycle function.
func NewPoller(cycle func(ctx context.Context)) *Poller {
	return &Poller{
		cycle: cycle,
		state: domain.PollingState{Phase: domain.PollingIdle, Interval: domain.DefaultPollInterval},
	}
}

// Start arms the poller and runs a first cycle immediately. Starting a
// running poller behaves like Update. The caller is responsible for
// clamping the interval to policy; non-positive values fall back to the
// default. Returns the interval in effect.
func (p *Poller) Start(ctx context.Context, interval time.Duration) time.Duration {
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}

	p.mu.Lock()
	if p.state.Phase == domain.PollingRunning {
		p.pending = interval
		p.state.Interval = interval
		p.mu.Unlock()
		logger.Debug("poller: already running, interval now %s", interval)
		return interval
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.state = domain.PollingState{Phase: domain.PollingRunning, Interval: interval}
	done := p.done
	p.mu.Unlock()

	logger.Debug("poller: armed at %s", interval)
	go p.run(runCtx, interval, done)
	return interval
}

// Update changes the interval. On a running poller the new interval is
// applied after the next tick fires. On an idle poller only the stored
// interval changes. Returns the clamped interval.
func (p *Poller) Update(interval time.Duration) time.Duration {
	if interval <= 0 {
		interval = domain.DefaultPollInterval
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Interval = interval
	if p.state.Phase == domain.PollingRunning {
		p.pending = interval
	}
	logger.Debug("poller: interval set to %s", interval)
	return interval
}

// Stop disarms the poller and waits for the loop goroutine to exit. A
// cycle already in flight keeps its cancelled context; the cycle function
// is responsible for discarding its result. Stopping an idle poller is a
// no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state.Phase != domain.PollingRunning {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.state.Phase = domain.PollingIdle
	p.pending = 0
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	cancel()
	<-done
	logger.Debug("poller: disarmed")
}

// State returns the current polling state.
func (p *Poller) State() domain.PollingState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// run is the timer loop. The first cycle has already been scheduled by the
// caller's contract: it runs here, immediately, before the first wait.
func (p *Poller) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	p.cycle(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			// A pending interval change applies from this tick onward.
			p.mu.Lock()
			if p.pending > 0 {
				interval = p.pending
				p.pending = 0
			}
			p.mu.Unlock()

			p.cycle(ctx)
			timer.Reset(interval)
		}
	}
}
