// Package fabrex implements the FabreX fabric service client: fabrics,
// endpoints, per-fabric usage, and endpoint reassignment.
package fabrex

import (
	"context"
	"fmt"

	"github.com/digitaldataco/fabrexlens/internal/clients/httpx"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
)

// Ensure Client implements the port.
var _ driven.FabricClient = (*Client)(nil)

// Client talks to the FabreX REST API.
type Client struct {
	http *httpx.Client
}

// New creates a FabreX client.
func New(cfg httpx.Config) (*Client, error) {
	http, err := httpx.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("fabrex client: %w", err)
	}
	return &Client{http: http}, nil
}

// ListFabrics returns the first page of fabrics.
func (c *Client) ListFabrics(ctx context.Context, auth domain.AuthContext) ([]domain.Fabric, error) {
	var page httpx.Page[domain.Fabric]
	if err := c.http.GetJSON(ctx, "/fabrics", nil, auth, &page); err != nil {
		return nil, fmt.Errorf("list fabrics: %w", err)
	}
	return page.Items, nil
}

// ListEndpoints returns one page of endpoints for a fabric along with the
// next cursor, empty when exhausted.
func (c *Client) ListEndpoints(ctx context.Context, auth domain.AuthContext, fabricID string, page domain.Pagination) ([]domain.Endpoint, string, error) {
	path := fmt.Sprintf("/fabrics/%s/endpoints", fabricID)
	var envelope httpx.Page[domain.Endpoint]
	if err := c.http.GetJSON(ctx, path, httpx.PageQuery(page), auth, &envelope); err != nil {
		return nil, "", fmt.Errorf("list endpoints for fabric %s: %w", fabricID, err)
	}
	return envelope.Items, envelope.Next, nil
}

// FabricUsage returns the utilisation report for one fabric.
func (c *Client) FabricUsage(ctx context.Context, auth domain.AuthContext, fabricID string) (domain.FabricUsage, error) {
	path := fmt.Sprintf("/fabrics/%s/usage", fabricID)
	var usage domain.FabricUsage
	if err := c.http.GetJSON(ctx, path, nil, auth, &usage); err != nil {
		return domain.FabricUsage{}, fmt.Errorf("usage for fabric %s: %w", fabricID, err)
	}
	return usage, nil
}

// Fragment assembles the full FabreX snapshot contribution: every fabric
// with its usage and endpoints. Endpoints missing a fabric reference are
// stamped with the fabric they were listed under.
func (c *Client) Fragment(ctx context.Context, auth domain.AuthContext) (domain.FabricFragment, error) {
	fabrics, err := c.ListFabrics(ctx, auth)
	if err != nil {
		return domain.FabricFragment{}, err
	}

	fragment := domain.FabricFragment{Fabrics: fabrics}
	for _, fabric := range fabrics {
		usage, err := c.FabricUsage(ctx, auth, fabric.ID)
		if err != nil {
			return domain.FabricFragment{}, err
		}
		fragment.Usage = append(fragment.Usage, usage)

		cursor := ""
		for {
			endpoints, next, err := c.ListEndpoints(ctx, auth, fabric.ID, domain.Pagination{Cursor: cursor})
			if err != nil {
				return domain.FabricFragment{}, err
			}
			for i := range endpoints {
				if endpoints[i].FabricID == "" {
					endpoints[i].FabricID = fabric.ID
				}
			}
			fragment.Endpoints = append(fragment.Endpoints, endpoints...)
			if next == "" {
				break
			}
			cursor = next
		}
	}
	return fragment, nil
}

// reassignRequest is the reassignment POST body.
type reassignRequest struct {
	TargetSupernodeID string `json:"targetSupernodeId"`
}

// ReassignEndpoint moves an endpoint to another supernode. Non-idempotent;
// never retried here.
func (c *Client) ReassignEndpoint(ctx context.Context, auth domain.AuthContext, fabricID, endpointID, targetSupernodeID string) (domain.ReassignmentResult, error) {
	path := fmt.Sprintf("/fabrics/%s/endpoints/%s/reassign", fabricID, endpointID)
	var result domain.ReassignmentResult
	err := c.http.PostJSON(ctx, path, auth, reassignRequest{TargetSupernodeID: targetSupernodeID}, &result)
	if err != nil {
		return domain.ReassignmentResult{}, fmt.Errorf("reassign endpoint %s: %w", endpointID, err)
	}
	return result, nil
}
