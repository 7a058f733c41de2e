package processing

import (
	"sync"

	"github.com/RMahshie/seisview/pkg/models"
)

// ResultSet collects the chart groups of one batch. The worker appends to it
// while readers take snapshots.
type ResultSet struct {
	mu     sync.RWMutex
	groups []*models.ChartGroup
}

// NewResultSet creates an empty result set
func NewResultSet() *ResultSet {
	return &ResultSet{}
}

// Add appends a chart group
func (r *ResultSet) Add(group *models.ChartGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = append(r.groups, group)
}

// Snapshot returns a copy of the groups collected so far
func (r *ResultSet) Snapshot() []*models.ChartGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.ChartGroup, len(r.groups))
	copy(out, r.groups)
	return out
}

// Len returns the number of groups
func (r *ResultSet) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}
