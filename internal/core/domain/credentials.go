package domain

import "time"

// Credential is the secret material for one CredentialKey.
// Credentials are read from the store and cached by the credential gate;
// they are never logged and never carried inside Events.
type Credential struct {
	// Username and Password authenticate against the service directly.
	Username string `json:"username"`
	Password string `json:"password"`

	// APIToken, when present, is preferred over basic authentication.
	APIToken string `json:"api_token,omitempty"`

	// Expiry is when the credential stops being valid. Zero means no expiry.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the credential has an expiry in the past.
func (c Credential) IsExpired() bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().After(c.Expiry)
}

// Redacted returns a display summary that never exposes secret material.
func (c Credential) Redacted() string {
	if c.APIToken != "" {
		return c.Username + " / •••• API token"
	}
	return c.Username + " / no API token"
}

// AuthContext builds the per-request authentication value for this
// credential. API tokens win over basic auth.
func (c Credential) AuthContext() AuthContext {
	if c.APIToken != "" {
		return BearerAuth(c.APIToken)
	}
	return BasicAuth(c.Username, c.Password)
}

// AuthContext is a transient per-request authentication value derived from
// a Credential or a minted session token. It is owned by the request that
// built it and never cached.
type AuthContext struct {
	BearerToken string
	BasicUser   string
	BasicPass   string
}

// BearerAuth returns an AuthContext carrying a bearer token.
func BearerAuth(token string) AuthContext {
	return AuthContext{BearerToken: token}
}

// BasicAuth returns an AuthContext carrying a basic username/password pair.
func BasicAuth(username, password string) AuthContext {
	return AuthContext{BasicUser: username, BasicPass: password}
}

// IsZero reports whether no authentication material is present.
func (a AuthContext) IsZero() bool {
	return a.BearerToken == "" && a.BasicUser == "" && a.BasicPass == ""
}

// Session is a management-controller session minted from a username and
// password. The token is cached until ExpiresAt; the session itself is not
// persisted.
type Session struct {
	ID        string
	Token     string
	ExpiresAt time.Time
}

// IsExpired returns true if the session token can no longer be used.
func (s Session) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}
