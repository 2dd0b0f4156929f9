package driven

import (
	"context"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// FabricClient talks to the FabreX fabric service.
//
// Fragment is a single idempotent read safe to retry. ReassignEndpoint is a
// non-idempotent write and must never be retried by the client; retry policy
// belongs to the worker supervisor.
type FabricClient interface {
	ListFabrics(ctx context.Context, auth domain.AuthContext) ([]domain.Fabric, error)
	ListEndpoints(ctx context.Context, auth domain.AuthContext, fabricID string, page domain.Pagination) ([]domain.Endpoint, string, error)
	FabricUsage(ctx context.Context, auth domain.AuthContext, fabricID string) (domain.FabricUsage, error)
	Fragment(ctx context.Context, auth domain.AuthContext) (domain.FabricFragment, error)
	ReassignEndpoint(ctx context.Context, auth domain.AuthContext, fabricID, endpointID, targetSupernodeID string) (domain.ReassignmentResult, error)
}

// WorkloadClient talks to the Gryf workload service.
type WorkloadClient interface {
	ListWorkloads(ctx context.Context, auth domain.AuthContext) ([]domain.Workload, error)
	Workload(ctx context.Context, auth domain.AuthContext, workloadID string) (*domain.WorkloadDetail, error)
	Fragment(ctx context.Context, auth domain.AuthContext) ([]domain.Workload, error)
	ReassignWorkload(ctx context.Context, auth domain.AuthContext, workloadID, targetFabricID, reason string) (domain.ReassignmentResult, error)
}

// NodeClient talks to the Supernode node service.
type NodeClient interface {
	ListNodes(ctx context.Context, auth domain.AuthContext) ([]domain.Node, error)
	NodeHealth(ctx context.Context, auth domain.AuthContext, nodeID string) (domain.NodeHealth, error)
	Fragment(ctx context.Context, auth domain.AuthContext) ([]domain.Node, error)
	InvokeAction(ctx context.Context, auth domain.AuthContext, nodeID, action string, payload map[string]any) (domain.ActionResult, error)
}

// SessionMinter mints management-controller sessions from stored basic
// credentials. Implemented by the Redfish client.
type SessionMinter interface {
	CreateSession(ctx context.Context, username, password string) (*domain.Session, error)
}
