package cli

import (
	"context"
	"sync"

	config "github.com/digitaldataco/fabrexlens/internal/adapters/driven/config/file"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// fakeWorker satisfies driving.Worker for command tests. onSubmit scripts
// the events a command should produce.
type fakeWorker struct {
	mu        sync.Mutex
	submitted []domain.Command
	events    chan domain.Event
	submitErr error
	onSubmit  func(domain.Command) []domain.Event
	shutdowns int
	closeOnce sync.Once
}

func newFakeWorker() *fakeWorker {
	return &fakeWorker{events: make(chan domain.Event, 16)}
}

func (f *fakeWorker) Submit(cmd domain.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, cmd)
	if f.onSubmit != nil {
		for _, ev := range f.onSubmit(cmd) {
			f.events <- ev
		}
	}
	return nil
}

func (f *fakeWorker) Events() <-chan domain.Event {
	return f.events
}

func (f *fakeWorker) Shutdown(_ context.Context) error {
	f.mu.Lock()
	f.shutdowns++
	f.mu.Unlock()
	f.closeOnce.Do(func() { close(f.events) })
	return nil
}

// fakeGate satisfies driving.CredentialGate for command tests.
type fakeGate struct {
	mu      sync.Mutex
	saved   map[string]domain.Credential
	deleted []string
	saveErr error
}

func newFakeGate() *fakeGate {
	return &fakeGate{saved: make(map[string]domain.Credential)}
}

func (f *fakeGate) Has(_ domain.CredentialKey) bool {
	return false
}

func (f *fakeGate) Authenticate(_ context.Context, _ domain.CredentialKey) (domain.AuthContext, error) {
	return domain.AuthContext{}, domain.ErrCredentialMissing
}

func (f *fakeGate) Invalidate(_ domain.CredentialKey) {}

func (f *fakeGate) Reset() {}

func (f *fakeGate) Save(_ context.Context, key domain.CredentialKey, cred domain.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[key.StorageKey()] = cred
	return nil
}

func (f *fakeGate) Delete(_ context.Context, key domain.CredentialKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key.StorageKey())
	return nil
}

// setupTestServices injects fakes into the package wiring and returns a
// cleanup that restores the lazy production wiring.
func setupTestServices(w *fakeWorker, g *fakeGate) func() {
	cfg := config.Default()
	appConfig = &cfg
	if g != nil {
		credentialGate = g
	}
	if w != nil {
		worker = w
	}
	return func() {
		appConfig = nil
		credentialStore = nil
		credentialGate = nil
		worker = nil
	}
}
