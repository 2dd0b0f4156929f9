// Package gryf implements the Gryf workload service client.
package gryf

import (
	"context"
	"fmt"

	"github.com/digitaldataco/fabrexlens/internal/clients/httpx"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driven"
)

// Ensure Client implements the port.
var _ driven.WorkloadClient = (*Client)(nil)

// Client talks to the Gryf REST API.
type Client struct {
	http *httpx.Client
}

// New creates a Gryf client.
func New(cfg httpx.Config) (*Client, error) {
	http, err := httpx.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("gryf client: %w", err)
	}
	return &Client{http: http}, nil
}

// ListWorkloads returns the first page of workloads.
func (c *Client) ListWorkloads(ctx context.Context, auth domain.AuthContext) ([]domain.Workload, error) {
	var page httpx.Page[domain.Workload]
	if err := c.http.GetJSON(ctx, "/workloads", nil, auth, &page); err != nil {
		return nil, fmt.Errorf("list workloads: %w", err)
	}
	return page.Items, nil
}

// Workload returns the expanded view of one workload.
func (c *Client) Workload(ctx context.Context, auth domain.AuthContext, workloadID string) (*domain.WorkloadDetail, error) {
	path := fmt.Sprintf("/workloads/%s", workloadID)
	var detail domain.WorkloadDetail
	if err := c.http.GetJSON(ctx, path, nil, auth, &detail); err != nil {
		return nil, fmt.Errorf("workload %s: %w", workloadID, err)
	}
	return &detail, nil
}

// Fragment is the Gryf snapshot contribution.
func (c *Client) Fragment(ctx context.Context, auth domain.AuthContext) ([]domain.Workload, error) {
	return c.ListWorkloads(ctx, auth)
}

// reassignRequest is the workload reassignment POST body.
type reassignRequest struct {
	TargetFabricID string `json:"targetFabricId"`
	Reason         string `json:"reason,omitempty"`
}

// ReassignWorkload moves a workload to another fabric. Non-idempotent;
// never retried here.
func (c *Client) ReassignWorkload(ctx context.Context, auth domain.AuthContext, workloadID, targetFabricID, reason string) (domain.ReassignmentResult, error) {
	path := fmt.Sprintf("/workloads/%s/reassign", workloadID)
	var result domain.ReassignmentResult
	err := c.http.PostJSON(ctx, path, auth, reassignRequest{TargetFabricID: targetFabricID, Reason: reason}, &result)
	if err != nil {
		return domain.ReassignmentResult{}, fmt.Errorf("reassign workload %s: %w", workloadID, err)
	}
	return result, nil
}
