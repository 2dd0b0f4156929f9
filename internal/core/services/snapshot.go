package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driving"
	"github.com/digitaldataco/fabrexlens/internal/logger"
)

// SnapshotBuilder assembles the aggregate dashboard Snapshot from the three
// domain services. Fragments are fetched concurrently; a failed fragment is
// recorded as stale and never blocks the others.
type SnapshotBuilder struct {
	gate      driving.CredentialGate
	fabrics   driven.FabricClient
	workloads driven.WorkloadClient
	nodes     driven.NodeClient

	// issue, when set, is told about credential failures encountered while
	// fetching fragments. The worker routes these into debounced
	// CredentialIssue events.
	issue func(domain.CredentialKey, error)
}

// NewSnapshotBuilder creates a snapshot builder. The issue callback may be
// nil.
func NewSnapshotBuilder(
	gate driving.CredentialGate,
	fabrics driven.FabricClient,
	workloads driven.WorkloadClient,
	nodes driven.NodeClient,
	issue func(domain.CredentialKey, error),
) *SnapshotBuilder {
	return &SnapshotBuilder{
		gate:      gate,
		fabrics:   fabrics,
		workloads: workloads,
		nodes:     nodes,
		issue:     issue,
	}
}

// Build runs one snapshot cycle. It returns an error only when every
// fragment failed; otherwise the Snapshot carries per-domain staleness in
// Fragments.
func (b *SnapshotBuilder) Build(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{
		TakenAt:   time.Now(),
		Fragments: make(map[domain.Domain]domain.FragmentStatus),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		fragment, err := b.fabricFragment(ctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			snapshot.Fragments[domain.DomainFabrex] = staleStatus(domain.DomainFabrex, err)
			return
		}
		snapshot.Fabrics = fragment.Fabrics
		snapshot.Usage = fragment.Usage
		snapshot.Endpoints = fragment.Endpoints
		snapshot.Alerts = usageAlerts(fragment.Usage)
		snapshot.Fragments[domain.DomainFabrex] = freshStatus(domain.DomainFabrex)
	}()
	go func() {
		defer wg.Done()
		workloads, err := b.workloadFragment(ctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			snapshot.Fragments[domain.DomainGryf] = staleStatus(domain.DomainGryf, err)
			return
		}
		snapshot.Workloads = workloads
		snapshot.Fragments[domain.DomainGryf] = freshStatus(domain.DomainGryf)
	}()
	go func() {
		defer wg.Done()
		nodes, err := b.nodeFragment(ctx)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			snapshot.Fragments[domain.DomainSupernode] = staleStatus(domain.DomainSupernode, err)
			return
		}
		snapshot.Supernodes = nodes
		snapshot.Fragments[domain.DomainSupernode] = freshStatus(domain.DomainSupernode)
	}()
	wg.Wait()

	if snapshot.Empty() {
		reasons := make([]string, 0, len(snapshot.Fragments))
		for _, d := range domain.SnapshotDomains() {
			reasons = append(reasons, fmt.Sprintf("%s: %s", d, snapshot.Fragments[d].Reason))
		}
		return nil, fmt.Errorf("no fragment succeeded: %s", strings.Join(reasons, "; "))
	}
	if stale := snapshot.StaleDomains(); len(stale) > 0 {
		logger.Debug("snapshot: %d stale fragment(s): %v", len(stale), stale)
	}
	return snapshot, nil
}

func (b *SnapshotBuilder) fabricFragment(ctx context.Context) (domain.FabricFragment, error) {
	key := domain.DefaultKey(domain.DomainFabrex)
	auth, err := b.gate.Authenticate(ctx, key)
	if err != nil {
		b.noteIssue(key, err)
		return domain.FabricFragment{}, err
	}
	fragment, err := b.fabrics.Fragment(ctx, auth)
	if err != nil {
		b.noteAuthFailure(key, err)
		return domain.FabricFragment{}, err
	}
	return fragment, nil
}

func (b *SnapshotBuilder) workloadFragment(ctx context.Context) ([]domain.Workload, error) {
	key := domain.DefaultKey(domain.DomainGryf)
	auth, err := b.gate.Authenticate(ctx, key)
	if err != nil {
		b.noteIssue(key, err)
		return nil, err
	}
	workloads, err := b.workloads.Fragment(ctx, auth)
	if err != nil {
		b.noteAuthFailure(key, err)
		return nil, err
	}
	return workloads, nil
}

func (b *SnapshotBuilder) nodeFragment(ctx context.Context) ([]domain.Node, error) {
	key := domain.DefaultKey(domain.DomainSupernode)
	auth, err := b.gate.Authenticate(ctx, key)
	if err != nil {
		b.noteIssue(key, err)
		return nil, err
	}
	nodes, err := b.nodes.Fragment(ctx, auth)
	if err != nil {
		b.noteAuthFailure(key, err)
		return nil, err
	}
	return nodes, nil
}

// noteAuthFailure handles a server-side rejection of presented credentials:
// the cached entry is evicted so the next cycle re-reads the store.
func (b *SnapshotBuilder) noteAuthFailure(key domain.CredentialKey, err error) {
	if !errors.Is(err, domain.ErrUnauthorized) {
		return
	}
	b.gate.Invalidate(key)
	b.noteIssue(key, err)
}

func (b *SnapshotBuilder) noteIssue(key domain.CredentialKey, err error) {
	if b.issue == nil {
		return
	}
	if errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrCredentialMissing) ||
		errors.Is(err, domain.ErrCredentialExpired) ||
		errors.Is(err, domain.ErrStorageUnavailable) {
		b.issue(key, err)
	}
}

func freshStatus(d domain.Domain) domain.FragmentStatus {
	return domain.FragmentStatus{Domain: d}
}

func staleStatus(d domain.Domain, err error) domain.FragmentStatus {
	return domain.FragmentStatus{Domain: d, Stale: true, Reason: err.Error()}
}

// usageAlerts flattens service-reported usage alerts into display strings.
func usageAlerts(usage []domain.FabricUsage) []string {
	var alerts []string
	for _, u := range usage {
		for _, a := range u.Alerts {
			alerts = append(alerts, fmt.Sprintf("%s: %s (%s)", strings.ToUpper(a.Severity), a.Message, u.FabricID))
		}
	}
	return alerts
}
