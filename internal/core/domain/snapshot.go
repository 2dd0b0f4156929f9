package domain

import "time"

// Fabric is one composable fabric reported by the FabreX service.
type Fabric struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

// Endpoint is a device endpoint attached to a fabric.
type Endpoint struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	FabricID            string `json:"fabricId,omitempty"`
	AttachedSupernodeID string `json:"attachedSupernodeId,omitempty"`
	Status              string `json:"status"`
}

// FabricUsage is the utilisation report for one fabric.
type FabricUsage struct {
	FabricID           string       `json:"fabricId"`
	UtilizationPercent float64      `json:"utilizationPercent"`
	TotalEndpoints     int          `json:"totalEndpoints"`
	AssignedEndpoints  int          `json:"assignedEndpoints"`
	Alerts             []UsageAlert `json:"alerts,omitempty"`
}

// UsageAlert is a service-reported condition on a fabric.
type UsageAlert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Workload is one scheduled workload reported by the Gryf service.
type Workload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
	Owner string `json:"owner,omitempty"`
}

// WorkloadTask is one placement of a workload on a node.
type WorkloadTask struct {
	ID     string `json:"id"`
	Node   string `json:"node"`
	Status string `json:"status"`
}

// WorkloadMetric is a single named measurement for a workload.
type WorkloadMetric struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// WorkloadDetail is the expanded view of a workload.
type WorkloadDetail struct {
	Workload
	Tasks   []WorkloadTask   `json:"tasks,omitempty"`
	Metrics []WorkloadMetric `json:"metrics,omitempty"`
}

// Node is one supernode reported by the node service.
type Node struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// NodeIssue is a health condition on a node.
type NodeIssue struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// NodeHealth is the health report for one node.
type NodeHealth struct {
	NodeID        string      `json:"nodeId"`
	CPUPercent    float64     `json:"cpuPercent"`
	MemoryPercent float64     `json:"memoryPercent"`
	Issues        []NodeIssue `json:"issues,omitempty"`
}

// ReassignmentResult is the service acknowledgement of a mutation request.
type ReassignmentResult struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// ActionResult is the acknowledgement of a node action invocation.
type ActionResult struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
}

// FabricFragment is the FabreX contribution to a Snapshot.
type FabricFragment struct {
	Fabrics   []Fabric
	Usage     []FabricUsage
	Endpoints []Endpoint
}

// FragmentStatus records whether one Domain contributed to a Snapshot.
// A stale fragment keeps the failure reason for display and diagnostics.
type FragmentStatus struct {
	Domain Domain
	Stale  bool
	Reason string
}

// Snapshot is the aggregate point-in-time dashboard view assembled from one
// polling or refresh cycle. Snapshots are immutable once constructed and
// are superseded wholesale by the next cycle's Snapshot.
type Snapshot struct {
	TakenAt    time.Time
	Fabrics    []Fabric
	Usage      []FabricUsage
	Endpoints  []Endpoint
	Workloads  []Workload
	Supernodes []Node
	Alerts     []string
	Fragments  map[Domain]FragmentStatus
}

// StaleDomains returns the Domains whose fragment failed this cycle,
// in SnapshotDomains order.
func (s *Snapshot) StaleDomains() []Domain {
	var stale []Domain
	for _, d := range SnapshotDomains() {
		if f, ok := s.Fragments[d]; ok && f.Stale {
			stale = append(stale, d)
		}
	}
	return stale
}

// Complete reports whether every snapshot Domain contributed a fragment.
func (s *Snapshot) Complete() bool {
	return len(s.StaleDomains()) == 0
}

// Empty reports whether no Domain contributed a fragment.
func (s *Snapshot) Empty() bool {
	return len(s.StaleDomains()) == len(SnapshotDomains())
}

// Pagination holds cursor-based paging parameters for list operations.
type Pagination struct {
	Limit  int
	Cursor string
}
