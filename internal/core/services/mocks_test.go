package services

import (
	"context"
	"sync"
	"time"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// mockStore is an in-memory CredentialStore with injectable failures.
type mockStore struct {
	mu      sync.Mutex
	creds   map[string]domain.Credential
	loads   int
	loadErr error
	saveErr error
}

func newMockStore() *mockStore {
	return &mockStore{creds: make(map[string]domain.Credential)}
}

func (s *mockStore) put(key domain.CredentialKey, cred domain.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[key.StorageKey()] = cred
}

func (s *mockStore) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

func (s *mockStore) Load(_ context.Context, key domain.CredentialKey) (*domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	cred, ok := s.creds[key.StorageKey()]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (s *mockStore) Save(_ context.Context, key domain.CredentialKey, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.creds[key.StorageKey()] = cred
	return nil
}

func (s *mockStore) Delete(_ context.Context, key domain.CredentialKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, key.StorageKey())
	return nil
}

// mockMinter counts session mints.
type mockMinter struct {
	mu      sync.Mutex
	mints   int
	mintErr error
	expires time.Time
}

func (m *mockMinter) mintCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mints
}

func (m *mockMinter) CreateSession(_ context.Context, username, _ string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mints++
	if m.mintErr != nil {
		return nil, m.mintErr
	}
	return &domain.Session{ID: "session-" + username, Token: "tok-" + username, ExpiresAt: m.expires}, nil
}

// mockFabricClient implements driven.FabricClient with overridable hooks.
type mockFabricClient struct {
	fragmentFn func(ctx context.Context) (domain.FabricFragment, error)
	reassignFn func(ctx context.Context, fabricID, endpointID, target string) (domain.ReassignmentResult, error)
}

func (m *mockFabricClient) ListFabrics(context.Context, domain.AuthContext) ([]domain.Fabric, error) {
	return nil, nil
}

func (m *mockFabricClient) ListEndpoints(context.Context, domain.AuthContext, string, domain.Pagination) ([]domain.Endpoint, string, error) {
	return nil, "", nil
}

func (m *mockFabricClient) FabricUsage(context.Context, domain.AuthContext, string) (domain.FabricUsage, error) {
	return domain.FabricUsage{}, nil
}

func (m *mockFabricClient) Fragment(ctx context.Context, _ domain.AuthContext) (domain.FabricFragment, error) {
	if m.fragmentFn != nil {
		return m.fragmentFn(ctx)
	}
	return domain.FabricFragment{
		Fabrics:   []domain.Fabric{{ID: "fab-1", Name: "prod-east", Status: "healthy"}},
		Usage:     []domain.FabricUsage{{FabricID: "fab-1", UtilizationPercent: 40}},
		Endpoints: []domain.Endpoint{{ID: "ep-1", FabricID: "fab-1"}},
	}, nil
}

func (m *mockFabricClient) ReassignEndpoint(ctx context.Context, _ domain.AuthContext, fabricID, endpointID, target string) (domain.ReassignmentResult, error) {
	if m.reassignFn != nil {
		return m.reassignFn(ctx, fabricID, endpointID, target)
	}
	return domain.ReassignmentResult{RequestID: "req-1", Status: "accepted"}, nil
}

// mockWorkloadClient implements driven.WorkloadClient.
type mockWorkloadClient struct {
	fragmentFn func(ctx context.Context) ([]domain.Workload, error)
}

func (m *mockWorkloadClient) ListWorkloads(context.Context, domain.AuthContext) ([]domain.Workload, error) {
	return nil, nil
}

func (m *mockWorkloadClient) Workload(context.Context, domain.AuthContext, string) (*domain.WorkloadDetail, error) {
	return nil, nil
}

func (m *mockWorkloadClient) Fragment(ctx context.Context, _ domain.AuthContext) ([]domain.Workload, error) {
	if m.fragmentFn != nil {
		return m.fragmentFn(ctx)
	}
	return []domain.Workload{{ID: "wrk-42", Name: "training-run", State: "running"}}, nil
}

func (m *mockWorkloadClient) ReassignWorkload(context.Context, domain.AuthContext, string, string, string) (domain.ReassignmentResult, error) {
	return domain.ReassignmentResult{}, nil
}

// mockNodeClient implements driven.NodeClient.
type mockNodeClient struct {
	fragmentFn func(ctx context.Context) ([]domain.Node, error)
}

func (m *mockNodeClient) ListNodes(context.Context, domain.AuthContext) ([]domain.Node, error) {
	return nil, nil
}

func (m *mockNodeClient) NodeHealth(context.Context, domain.AuthContext, string) (domain.NodeHealth, error) {
	return domain.NodeHealth{}, nil
}

func (m *mockNodeClient) Fragment(ctx context.Context, _ domain.AuthContext) ([]domain.Node, error) {
	if m.fragmentFn != nil {
		return m.fragmentFn(ctx)
	}
	return []domain.Node{{ID: "sn-1", Name: "rack1-node1", Role: "compute", Status: "online"}}, nil
}

func (m *mockNodeClient) InvokeAction(context.Context, domain.AuthContext, string, string, map[string]any) (domain.ActionResult, error) {
	return domain.ActionResult{}, nil
}

// seedGate returns a gate whose store holds credentials for the three
// snapshot domains.
func seedGate(minter *mockMinter) (*Gate, *mockStore) {
	store := newMockStore()
	for _, d := range domain.SnapshotDomains() {
		store.put(domain.DefaultKey(d), domain.Credential{Username: "user", APIToken: "tok-" + string(d)})
	}
	if minter == nil {
		return NewGate(store, nil), store
	}
	return NewGate(store, minter), store
}
