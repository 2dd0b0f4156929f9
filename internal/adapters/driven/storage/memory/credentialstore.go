package memory

import (
	"context"
	"sync"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is an in-memory implementation of driven.CredentialStore.
// Used by tests and the demo wiring; nothing is persisted.
type CredentialStore struct {
	mu    sync.RWMutex
	creds map[string]domain.Credential
}

// NewCredentialStore creates a new in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds: make(map[string]domain.Credential),
	}
}

// Load retrieves the credential for a key, or (nil, nil) when absent.
func (s *CredentialStore) Load(_ context.Context, key domain.CredentialKey) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[key.StorageKey()]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

// Save stores or replaces the credential for a key.
func (s *CredentialStore) Save(_ context.Context, key domain.CredentialKey, cred domain.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[key.StorageKey()] = cred
	return nil
}

// Delete removes the credential for a key. Deleting an absent key is a
// no-op.
func (s *CredentialStore) Delete(_ context.Context, key domain.CredentialKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creds, key.StorageKey())
	return nil
}
