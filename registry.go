package crossway

import (
	"strings"

	"github.com/samber/lo"
)

// PriorityRegistry tracks the lanes eligible for priority service.
// It holds references only; lanes stay owned by their road.
type PriorityRegistry struct {
	lanes []*Lane
}

// NewPriorityRegistry creates an empty registry
func NewPriorityRegistry() *PriorityRegistry {
	return &PriorityRegistry{
		lanes: make([]*Lane, 0, len(DefaultRoadOrder)),
	}
}

// Register appends a lane unless it is already registered
func (r *PriorityRegistry) Register(lane *Lane) {
	if lane == nil || lo.Contains(r.lanes, lane) {
		return
	}
	r.lanes = append(r.lanes, lane)
}

// Peek returns the lane at the head of the registry
func (r *PriorityRegistry) Peek() (*Lane, bool) {
	if len(r.lanes) == 0 {
		return nil, false
	}
	return r.lanes[0], true
}

// Promote moves the first registered lane holding more than threshold
// vehicles to the head, keeping the relative order of the others.
// It returns the promoted lane, or false when no lane qualifies.
func (r *PriorityRegistry) Promote(threshold int) (*Lane, bool) {
	for i, lane := range r.lanes {
		if lane.Size() <= threshold {
			continue
		}
		if i > 0 {
			copy(r.lanes[1:i+1], r.lanes[:i])
			r.lanes[0] = lane
		}
		return lane, true
	}
	return nil, false
}

// Len returns the number of registered lanes
func (r *PriorityRegistry) Len() int {
	return len(r.lanes)
}

// Lanes returns the registered lanes in their current order
func (r *PriorityRegistry) Lanes() []*Lane {
	result := make([]*Lane, len(r.lanes))
	copy(result, r.lanes)
	return result
}

func (r *PriorityRegistry) String() string {
	ids := lo.Map(r.lanes, func(lane *Lane, _ int) string {
		return lane.ID()
	})
	return "[" + strings.Join(ids, ", ") + "]"
}
