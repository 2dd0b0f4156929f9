package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driving"
	"github.com/digitaldataco/fabrexlens/internal/logger"
)

// Ensure Gate implements the interface.
var _ driving.CredentialGate = (*Gate)(nil)

// defaultSessionTTL bounds cached management-controller sessions when the
// controller does not report an expiry.
const defaultSessionTTL = 30 * time.Minute

// Gate resolves and caches per-domain credentials in front of a
// CredentialStore. Redfish keys additionally mint and cache a session
// token through the SessionMinter. Refreshes for the same key are
// serialised so the store and the controller see one request at a time.
type Gate struct {
	store  driven.CredentialStore
	minter driven.SessionMinter

	mu       sync.Mutex
	creds    map[string]domain.Credential
	sessions map[string]domain.Session
	locks    map[string]*sync.Mutex

	issueMu   sync.Mutex
	cooldown  time.Duration
	lastIssue map[string]issueMark
}

// issueMark remembers the last reported failure for one key.
type issueMark struct {
	at    time.Time
	cause string
}

// NewGate creates a credential gate. The minter may be nil when no
// management controller is configured.
func NewGate(store driven.CredentialStore, minter driven.SessionMinter) *Gate {
	return &Gate{
		store:     store,
		minter:    minter,
		creds:     make(map[string]domain.Credential),
		sessions:  make(map[string]domain.Session),
		locks:     make(map[string]*sync.Mutex),
		cooldown:  domain.DefaultPollInterval,
		lastIssue: make(map[string]issueMark),
	}
}

// Has reports whether a valid credential is cached for the key.
func (g *Gate) Has(key domain.CredentialKey) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	cred, ok := g.creds[key.StorageKey()]
	return ok && !cred.IsExpired()
}

// Authenticate produces the auth context for a key, loading from the store
// on a cache miss. For Redfish keys a session is minted and its token
// cached until expiry.
func (g *Gate) Authenticate(ctx context.Context, key domain.CredentialKey) (domain.AuthContext, error) {
	lock := g.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	cred, err := g.credential(ctx, key)
	if err != nil {
		return domain.AuthContext{}, err
	}

	if key.Domain == domain.DomainRedfish && g.minter != nil {
		return g.sessionAuth(ctx, key, cred)
	}
	return cred.AuthContext(), nil
}

// credential returns the cached credential for the key, falling back to
// the store. Caller holds the per-key lock.
func (g *Gate) credential(ctx context.Context, key domain.CredentialKey) (domain.Credential, error) {
	storageKey := key.StorageKey()

	g.mu.Lock()
	cached, ok := g.creds[storageKey]
	g.mu.Unlock()
	if ok {
		if !cached.IsExpired() {
			return cached, nil
		}
		logger.Debug("gate: cached credential for %s expired, evicting", key)
		g.evict(storageKey)
	}

	stored, err := g.store.Load(ctx, key)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("load credential %s: %w", key, err)
	}
	if stored == nil {
		return domain.Credential{}, fmt.Errorf("credential %s: %w", key, domain.ErrCredentialMissing)
	}
	if stored.IsExpired() {
		return domain.Credential{}, fmt.Errorf("credential %s: %w", key, domain.ErrCredentialExpired)
	}

	g.mu.Lock()
	g.creds[storageKey] = *stored
	g.mu.Unlock()
	return *stored, nil
}

// sessionAuth returns a valid session token for a Redfish key, minting a
// new session if none is cached. Caller holds the per-key lock.
func (g *Gate) sessionAuth(ctx context.Context, key domain.CredentialKey, cred domain.Credential) (domain.AuthContext, error) {
	storageKey := key.StorageKey()

	g.mu.Lock()
	session, ok := g.sessions[storageKey]
	g.mu.Unlock()
	if ok && !session.IsExpired() {
		return domain.BearerAuth(session.Token), nil
	}

	minted, err := g.minter.CreateSession(ctx, cred.Username, cred.Password)
	if err != nil {
		return domain.AuthContext{}, fmt.Errorf("mint session %s: %w", key, err)
	}
	if minted.ExpiresAt.IsZero() {
		minted.ExpiresAt = time.Now().Add(defaultSessionTTL)
	}

	g.mu.Lock()
	g.sessions[storageKey] = *minted
	g.mu.Unlock()
	logger.Debug("gate: minted session %s for %s", minted.ID, key)
	return domain.BearerAuth(minted.Token), nil
}

// Invalidate evicts the cached credential and session for a key.
func (g *Gate) Invalidate(key domain.CredentialKey) {
	logger.Debug("gate: invalidating %s", key)
	g.evict(key.StorageKey())
}

// Reset clears every cached credential, session, and issue mark. Called
// when the backing store changes underneath the gate.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.creds = make(map[string]domain.Credential)
	g.sessions = make(map[string]domain.Session)
	g.mu.Unlock()

	g.issueMu.Lock()
	g.lastIssue = make(map[string]issueMark)
	g.issueMu.Unlock()
	logger.Debug("gate: cache reset")
}

// Save writes a credential to the store and primes the cache.
func (g *Gate) Save(ctx context.Context, key domain.CredentialKey, cred domain.Credential) error {
	if err := g.store.Save(ctx, key, cred); err != nil {
		return fmt.Errorf("save credential %s: %w", key, err)
	}
	g.mu.Lock()
	g.creds[key.StorageKey()] = cred
	delete(g.sessions, key.StorageKey())
	g.mu.Unlock()
	return nil
}

// Delete removes a credential from the store and evicts the cache entry.
func (g *Gate) Delete(ctx context.Context, key domain.CredentialKey) error {
	if err := g.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete credential %s: %w", key, err)
	}
	g.evict(key.StorageKey())
	return nil
}

// SetCooldown sets the issue debounce window. The worker keeps it in step
// with the polling interval so a broken credential surfaces once per cycle.
func (g *Gate) SetCooldown(d time.Duration) {
	if d <= 0 {
		return
	}
	g.issueMu.Lock()
	g.cooldown = d
	g.issueMu.Unlock()
}

// ShouldReport decides whether a credential failure for a key is worth an
// event. Repeats of the same cause inside the cooldown window are
// suppressed; a different cause reports immediately.
func (g *Gate) ShouldReport(key domain.CredentialKey, err error) bool {
	if err == nil {
		return false
	}
	cause := err.Error()

	g.issueMu.Lock()
	defer g.issueMu.Unlock()

	mark, ok := g.lastIssue[key.StorageKey()]
	if ok && mark.cause == cause && time.Since(mark.at) < g.cooldown {
		return false
	}
	g.lastIssue[key.StorageKey()] = issueMark{at: time.Now(), cause: cause}
	return true
}

func (g *Gate) evict(storageKey string) {
	g.mu.Lock()
	delete(g.creds, storageKey)
	delete(g.sessions, storageKey)
	g.mu.Unlock()
}

// keyLock returns the per-key refresh lock, creating it on first use.
func (g *Gate) keyLock(key domain.CredentialKey) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.locks[key.StorageKey()]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[key.StorageKey()] = lock
	}
	return lock
}
