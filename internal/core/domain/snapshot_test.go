package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func snapshotWith(stale ...Domain) *Snapshot {
	s := &Snapshot{
		TakenAt:   time.Now(),
		Fragments: make(map[Domain]FragmentStatus),
	}
	staleSet := make(map[Domain]bool, len(stale))
	for _, d := range stale {
		staleSet[d] = true
	}
	for _, d := range SnapshotDomains() {
		s.Fragments[d] = FragmentStatus{Domain: d, Stale: staleSet[d]}
	}
	return s
}

func TestSnapshot_StaleDomains(t *testing.T) {
	s := snapshotWith(DomainGryf)

	assert.Equal(t, []Domain{DomainGryf}, s.StaleDomains())
	assert.False(t, s.Complete())
	assert.False(t, s.Empty())
}

func TestSnapshot_Complete(t *testing.T) {
	s := snapshotWith()

	assert.Empty(t, s.StaleDomains())
	assert.True(t, s.Complete())
}

func TestSnapshot_Empty(t *testing.T) {
	s := snapshotWith(SnapshotDomains()...)

	assert.True(t, s.Empty())
	assert.False(t, s.Complete())
}

func TestSubmitReassignment_ResourceKey(t *testing.T) {
	cmd := SubmitReassignment{FabricID: "fab-1", EndpointID: "ep-9", TargetSupernodeID: "sn-2"}
	assert.Equal(t, "fabrex/fab-1/ep-9", cmd.ResourceKey())
}
