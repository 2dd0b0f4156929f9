package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driving"
	"github.com/digitaldataco/fabrexlens/internal/logger"
)

// Ensure Worker implements the interface.
var _ driving.Worker = (*Worker)(nil)

// WorkerConfig tunes the background worker.
type WorkerConfig struct {
	// PollInterval is the initial polling cadence.
	PollInterval time.Duration
	// ShutdownGrace bounds the wait for in-flight mutations at shutdown.
	ShutdownGrace time.Duration
	// MutationTimeout bounds a single mutation attempt.
	MutationTimeout time.Duration
	// CommandBuffer and EventBuffer size the two channels.
	CommandBuffer int
	EventBuffer   int
}

func (c WorkerConfig) normalised() WorkerConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = domain.DefaultPollInterval
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 5 * time.Second
	}
	if c.MutationTimeout <= 0 {
		c.MutationTimeout = 30 * time.Second
	}
	if c.CommandBuffer <= 0 {
		c.CommandBuffer = 16
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
	return c
}

// Worker is the background execution core. It dispatches commands in
// arrival order, drives the polling cadence, and emits events for the
// foreground to fold. One Worker exists per process.
type Worker struct {
	cfg     WorkerConfig
	gate    *Gate
	fabrics driven.FabricClient
	builder *SnapshotBuilder
	poller  *Poller

	cmds   chan domain.Command
	events chan domain.Event

	rootCtx context.Context
	cancel  context.CancelFunc

	// cycleBusy coalesces snapshot cycles: a scheduled tick or a manual
	// refresh arriving while one cycle is in flight is skipped, not queued.
	cycleBusy atomic.Bool

	// mutations holds the resource keys with a mutation in flight.
	mutationMu sync.Mutex
	mutations  map[string]struct{}
	mutationWG sync.WaitGroup

	loopDone chan struct{}

	// Teardown plumbing: shutdownCh releases emitters blocked on a full
	// event channel, closing guards against emits racing close(events).
	shutdownCh   chan struct{}
	emitGate     sync.RWMutex
	closing      bool
	emitters     sync.WaitGroup
	shutdownOnce sync.Once
	shutdownDone chan struct{}
}

// NewWorker creates and starts the background worker. Polling is not armed
// until a StartPolling command arrives.
func NewWorker(
	cfg WorkerConfig,
	gate *Gate,
	fabrics driven.FabricClient,
	workloads driven.WorkloadClient,
	nodes driven.NodeClient,
) *Worker {
	cfg = cfg.normalised()
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		cfg:          cfg,
		gate:         gate,
		fabrics:      fabrics,
		cmds:         make(chan domain.Command, cfg.CommandBuffer),
		events:       make(chan domain.Event, cfg.EventBuffer),
		rootCtx:      ctx,
		cancel:       cancel,
		mutations:    make(map[string]struct{}),
		loopDone:     make(chan struct{}),
		shutdownCh:   make(chan struct{}),
		shutdownDone: make(chan struct{}),
	}
	w.builder = NewSnapshotBuilder(gate, fabrics, workloads, nodes, w.credentialIssue)
	w.poller = NewPoller(w.runCycle)
	gate.SetCooldown(cfg.PollInterval)

	go w.dispatch()
	return w
}

// Submit enqueues a command. It blocks when the buffer is full rather than
// dropping, and fails once the worker is shut down.
func (w *Worker) Submit(cmd domain.Command) error {
	select {
	case <-w.rootCtx.Done():
		return domain.ErrWorkerClosed
	default:
	}
	select {
	case w.cmds <- cmd:
		return nil
	case <-w.rootCtx.Done():
		return domain.ErrWorkerClosed
	}
}

// Events returns the event stream. Closed exactly once, after Shutdown.
func (w *Worker) Events() <-chan domain.Event {
	return w.events
}

// PollingState reports the scheduler state for display.
func (w *Worker) PollingState() domain.PollingState {
	return w.poller.State()
}

// Shutdown stops polling, waits for in-flight mutations up to the grace
// period (bounded further by ctx), then closes the event channel. Safe to
// call more than once; later calls wait for the first to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() {
		defer close(w.shutdownDone)

		w.poller.Stop()
		w.cancel()
		<-w.loopDone

		if !w.waitMutations(ctx) {
			logger.Warn("worker: shutdown grace elapsed, abandoning in-flight mutations")
		}

		// Release any emitter still blocked on a full buffer, then fence
		// off new emits before closing the channel.
		close(w.shutdownCh)
		w.emitGate.Lock()
		w.closing = true
		w.emitGate.Unlock()
		w.emitters.Wait()
		close(w.events)
	})

	select {
	case <-w.shutdownDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitMutations waits for in-flight mutations, bounded by the grace period
// and the caller's context. Reports whether all finished in time.
func (w *Worker) waitMutations(ctx context.Context) bool {
	finished := make(chan struct{})
	go func() {
		w.mutationWG.Wait()
		close(finished)
	}()

	grace := time.NewTimer(w.cfg.ShutdownGrace)
	defer grace.Stop()

	select {
	case <-finished:
		return true
	case <-grace.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// dispatch is the command loop. Commands are handled strictly in arrival
// order; long-running work is handed to goroutines so dispatch never
// stalls behind a slow cycle or mutation.
func (w *Worker) dispatch() {
	defer close(w.loopDone)
	for {
		select {
		case <-w.rootCtx.Done():
			return
		case cmd := <-w.cmds:
			w.handle(cmd)
		}
	}
}

func (w *Worker) handle(cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.RefreshDashboard:
		go w.runCycle(w.rootCtx)

	case domain.StartPolling:
		interval := w.poller.Start(w.rootCtx, domain.ClampInterval(c.Interval))
		w.gate.SetCooldown(interval)
		w.emit(domain.PollingStarted{Interval: interval})

	case domain.UpdatePolling:
		running := w.poller.State().Phase == domain.PollingRunning
		interval := w.poller.Update(domain.ClampInterval(c.Interval))
		w.gate.SetCooldown(interval)
		if running {
			w.emit(domain.PollingStarted{Interval: interval})
		}

	case domain.StopPolling:
		w.poller.Stop()
		w.emit(domain.PollingStopped{})

	case domain.SubmitReassignment:
		w.startReassignment(c)

	default:
		logger.Warn("worker: unknown command %T dropped", cmd)
	}
}

// runCycle executes one snapshot cycle unless one is already in flight.
// A cycle whose context was cancelled mid-run discards its result.
func (w *Worker) runCycle(ctx context.Context) {
	if !w.cycleBusy.CompareAndSwap(false, true) {
		logger.Debug("worker: snapshot cycle already in flight, coalesced")
		return
	}
	defer w.cycleBusy.Store(false)

	snapshot, err := w.builder.Build(ctx)
	if ctx.Err() != nil {
		logger.Debug("worker: cycle cancelled, result discarded")
		return
	}
	if err != nil {
		w.emit(domain.SnapshotFailed{Err: err})
		return
	}
	w.emit(domain.SnapshotUpdated{Snapshot: snapshot})
}

// startReassignment begins a mutation unless one is already in flight for
// the same resource key. Mutations run detached from the root context so a
// shutdown can wait for them instead of cancelling mid-write.
func (w *Worker) startReassignment(cmd domain.SubmitReassignment) {
	trackingID := uuid.NewString()
	resourceKey := cmd.ResourceKey()

	w.mutationMu.Lock()
	if _, busy := w.mutations[resourceKey]; busy {
		w.mutationMu.Unlock()
		w.emit(domain.ReassignmentFailed{
			TrackingID:  trackingID,
			ResourceKey: resourceKey,
			Err:         fmt.Errorf("mutation already in flight for %s: %w", resourceKey, domain.ErrBusy),
		})
		return
	}
	w.mutations[resourceKey] = struct{}{}
	w.mutationMu.Unlock()

	w.mutationWG.Add(1)
	go func() {
		defer w.mutationWG.Done()
		defer func() {
			w.mutationMu.Lock()
			delete(w.mutations, resourceKey)
			w.mutationMu.Unlock()
		}()
		w.runReassignment(trackingID, cmd)
	}()
}

// runReassignment performs exactly one mutation attempt. Timeouts and
// transport failures are reported, never retried: the outcome on the
// server is unknown and a retry could double-apply.
func (w *Worker) runReassignment(trackingID string, cmd domain.SubmitReassignment) {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.MutationTimeout)
	defer cancel()

	key := domain.DefaultKey(domain.DomainFabrex)
	auth, err := w.gate.Authenticate(ctx, key)
	if err != nil {
		w.credentialIssue(key, err)
		w.emit(domain.ReassignmentFailed{
			TrackingID:  trackingID,
			ResourceKey: cmd.ResourceKey(),
			Err:         err,
		})
		return
	}

	result, err := w.fabrics.ReassignEndpoint(ctx, auth, cmd.FabricID, cmd.EndpointID, cmd.TargetSupernodeID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			w.gate.Invalidate(key)
			w.credentialIssue(key, err)
		}
		w.emit(domain.ReassignmentFailed{
			TrackingID:  trackingID,
			ResourceKey: cmd.ResourceKey(),
			Err:         err,
		})
		return
	}

	logger.Info("worker: reassignment %s accepted as %s", trackingID, result.RequestID)
	w.emit(domain.ReassignmentCompleted{TrackingID: trackingID, Result: result})
}

// credentialIssue funnels a credential failure through the gate's debounce
// before emitting it as an event.
func (w *Worker) credentialIssue(key domain.CredentialKey, err error) {
	if w.gate.ShouldReport(key, err) {
		w.emit(domain.CredentialIssue{Key: key, Err: err})
	}
}

// emit delivers an event, preferring the buffer, blocking when full, and
// bailing out during teardown so abandoned work cannot wedge Shutdown.
func (w *Worker) emit(ev domain.Event) {
	w.emitGate.RLock()
	if w.closing {
		w.emitGate.RUnlock()
		logger.Debug("worker: event %T dropped after close", ev)
		return
	}
	w.emitters.Add(1)
	w.emitGate.RUnlock()
	defer w.emitters.Done()

	select {
	case w.events <- ev:
		return
	default:
	}
	select {
	case w.events <- ev:
	case <-w.shutdownCh:
		logger.Debug("worker: event %T dropped during teardown", ev)
	}
}
