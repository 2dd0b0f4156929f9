package driven

import (
	"context"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// CredentialStore persists credential material outside the core.
// Implementations: encrypted file store, in-memory store for tests.
//
// Load returns (nil, nil) when no credential exists for the key.
// Infrastructure failures wrap domain.ErrStorageUnavailable so the gate
// can distinguish them from a plain miss.
type CredentialStore interface {
	Load(ctx context.Context, key domain.CredentialKey) (*domain.Credential, error)
	Save(ctx context.Context, key domain.CredentialKey, cred domain.Credential) error
	Delete(ctx context.Context, key domain.CredentialKey) error
}
