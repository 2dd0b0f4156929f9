// Package supernode implements the Supernode node service client.
package supernode

import (
	"context"
	"fmt"

	"github.com/digitaldataco/fabrexlens/internal/clients/httpx"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
)

// Ensure Client implements the port.
var _ driven.NodeClient = (*Client)(nil)

// Client talks to the Supernode REST API.
type Client struct {
	http *httpx.Client
}

// New creates a Supernode client.
func New(cfg httpx.Config) (*Client, error) {
	http, err := httpx.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("supernode client: %w", err)
	}
	return &Client{http: http}, nil
}

// ListNodes returns the first page of nodes.
func (c *Client) ListNodes(ctx context.Context, auth domain.AuthContext) ([]domain.Node, error) {
	var page httpx.Page[domain.Node]
	if err := c.http.GetJSON(ctx, "/nodes", nil, auth, &page); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return page.Items, nil
}

// NodeHealth returns the health report for one node.
func (c *Client) NodeHealth(ctx context.Context, auth domain.AuthContext, nodeID string) (domain.NodeHealth, error) {
	path := fmt.Sprintf("/nodes/%s/health", nodeID)
	var health domain.NodeHealth
	if err := c.http.GetJSON(ctx, path, nil, auth, &health); err != nil {
		return domain.NodeHealth{}, fmt.Errorf("health for node %s: %w", nodeID, err)
	}
	return health, nil
}

// Fragment is the Supernode snapshot contribution.
func (c *Client) Fragment(ctx context.Context, auth domain.AuthContext) ([]domain.Node, error) {
	return c.ListNodes(ctx, auth)
}

// InvokeAction triggers a named action on a node (e.g. restart).
// Non-idempotent; never retried here.
func (c *Client) InvokeAction(ctx context.Context, auth domain.AuthContext, nodeID, action string, payload map[string]any) (domain.ActionResult, error) {
	path := fmt.Sprintf("/nodes/%s/actions/%s", nodeID, action)
	if payload == nil {
		payload = map[string]any{}
	}
	var result domain.ActionResult
	if err := c.http.PostJSON(ctx, path, auth, payload, &result); err != nil {
		return domain.ActionResult{}, fmt.Errorf("invoke %s on node %s: %w", action, nodeID, err)
	}
	return result, nil
}
