// Package redfish implements the management-controller session client.
// Redfish authenticates by minting a session: POST /redfish/v1/Sessions
// returns the token in the X-Auth-Token response header.
package redfish

import (
	"context"
	"fmt"

	"github.com/digitaldataco/fabrexlens/internal/clients/httpx"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
)

// Ensure Client implements the port.
var _ driven.SessionMinter = (*Client)(nil)

// Client talks to a Redfish management controller.
type Client struct {
	http *httpx.Client
}

// New creates a Redfish client.
func New(cfg httpx.Config) (*Client, error) {
	http, err := httpx.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("redfish client: %w", err)
	}
	return &Client{http: http}, nil
}

// sessionRequest is the Redfish session creation body. Field casing is
// dictated by the Redfish schema.
type sessionRequest struct {
	UserName string `json:"UserName"`
	Password string `json:"Password"`
}

// sessionResponse is the subset of the session resource we consume.
type sessionResponse struct {
	ID       string `json:"Id"`
	UserName string `json:"UserName,omitempty"`
}

// CreateSession mints a session and extracts the auth token from the
// X-Auth-Token response header.
func (c *Client) CreateSession(ctx context.Context, username, password string) (*domain.Session, error) {
	var resp sessionResponse
	headers, err := c.http.PostJSONWithHeaders(ctx, "/redfish/v1/Sessions", domain.AuthContext{},
		sessionRequest{UserName: username, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token := headers.Get("X-Auth-Token")
	if token == "" {
		return nil, fmt.Errorf("create session: %w: missing X-Auth-Token header", domain.ErrMalformedResponse)
	}

	return &domain.Session{ID: resp.ID, Token: token}, nil
}
