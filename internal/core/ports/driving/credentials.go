package driving

import (
	"context"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// CredentialGate resolves, caches, and refreshes per-domain authentication
// material. It never prompts interactively; the foreground reacts to
// CredentialIssue events instead.
type CredentialGate interface {
	// Has reports whether a valid credential is cached for the key.
	// Non-blocking; reads the cache only.
	Has(key domain.CredentialKey) bool

	// Authenticate produces the per-request auth context for a key,
	// consulting the cache and falling back to the store. Failures wrap
	// domain.ErrCredentialMissing, ErrCredentialExpired, or
	// ErrStorageUnavailable.
	Authenticate(ctx context.Context, key domain.CredentialKey) (domain.AuthContext, error)

	// Invalidate evicts the cached entry so the next Authenticate refreshes.
	// Called after a server-reported 401/403.
	Invalidate(key domain.CredentialKey)

	// Reset clears the entire cache. Used when the backing store changes
	// underneath the gate.
	Reset()

	// Save writes a credential to the backing store and primes the cache.
	Save(ctx context.Context, key domain.CredentialKey, cred domain.Credential) error

	// Delete removes a credential from the store and the cache.
	Delete(ctx context.Context, key domain.CredentialKey) error
}
