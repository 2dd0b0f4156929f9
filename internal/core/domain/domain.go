package domain

import (
	"fmt"
	"strings"
)

// Domain identifies one remote service family.
// The set is closed: every Domain maps to exactly one service client.
type Domain string

const (
	// DomainFabrex is the fabric service (fabrics, endpoints, usage).
	DomainFabrex Domain = "fabrex"
	// DomainGryf is the workload service.
	DomainGryf Domain = "gryf"
	// DomainSupernode is the node service.
	DomainSupernode Domain = "supernode"
	// DomainRedfish is the management-controller service (BMC sessions).
	DomainRedfish Domain = "redfish"
)

// AllDomains returns every known Domain in stable order.
func AllDomains() []Domain {
	return []Domain{DomainFabrex, DomainGryf, DomainSupernode, DomainRedfish}
}

// SnapshotDomains returns the Domains that contribute fragments to a
// dashboard Snapshot. Redfish only mints management sessions and is excluded.
func SnapshotDomains() []Domain {
	return []Domain{DomainFabrex, DomainGryf, DomainSupernode}
}

// ParseDomain converts a user-supplied string into a Domain.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fabrex":
		return DomainFabrex, nil
	case "gryf":
		return DomainGryf, nil
	case "supernode":
		return DomainSupernode, nil
	case "redfish":
		return DomainRedfish, nil
	default:
		return "", fmt.Errorf("%w: unknown domain %q", ErrInvalidInput, s)
	}
}

// DisplayName returns the human-facing service name.
func (d Domain) DisplayName() string {
	switch d {
	case DomainFabrex:
		return "FabreX"
	case DomainGryf:
		return "Gryf"
	case DomainSupernode:
		return "Supernode"
	case DomainRedfish:
		return "Redfish"
	default:
		return string(d)
	}
}

// DefaultScope is the credential scope used when none is given.
const DefaultScope = "default"

// CredentialKey identifies one credential: a Domain plus a named Scope
// (e.g. environment). Used as the lookup key everywhere credentials flow.
type CredentialKey struct {
	Domain Domain
	Scope  string
}

// NewCredentialKey builds a key, falling back to DefaultScope.
func NewCredentialKey(d Domain, scope string) CredentialKey {
	if scope == "" {
		scope = DefaultScope
	}
	return CredentialKey{Domain: d, Scope: scope}
}

// DefaultKey returns the key for a Domain in the default scope.
func DefaultKey(d Domain) CredentialKey {
	return CredentialKey{Domain: d, Scope: DefaultScope}
}

// StorageKey returns the stable string form used by credential stores
// and caches.
func (k CredentialKey) StorageKey() string {
	return string(k.Domain) + "::" + k.Scope
}

// String implements fmt.Stringer.
func (k CredentialKey) String() string {
	return fmt.Sprintf("%s [%s]", k.Domain.DisplayName(), k.Scope)
}
