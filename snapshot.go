package crossway

import (
	"github.com/sugawarayuuta/sonnet"
)

// LaneStatus is a read-only view of one scheduling lane
type LaneStatus struct {
	ID       string    `json:"id"`
	Road     RoadID    `json:"road"`
	Size     int       `json:"size"`
	Light    string    `json:"light"`
	Vehicles []Vehicle `json:"vehicles"`
}

// Snapshot is a detached copy of the intersection state between ticks.
// Renderers and status endpoints read snapshots, never the live intersection.
type Snapshot struct {
	IntersectionID     string       `json:"intersection_id"`
	Tick               uint64       `json:"tick"`
	ActivePriorityLane string       `json:"active_priority_lane,omitempty"`
	PriorityOrder      []string     `json:"priority_order"`
	Lanes              []LaneStatus `json:"lanes"`
}

// Snapshot captures the scheduling lanes in visiting order
func (i *Intersection) Snapshot() *Snapshot {
	active, _ := i.ActivePriorityLane()

	snapshot := &Snapshot{
		IntersectionID:     i.id,
		Tick:               i.tick,
		ActivePriorityLane: active,
		PriorityOrder:      i.PriorityOrder(),
		Lanes:              make([]LaneStatus, 0, len(i.order)),
	}

	for _, road := range i.Roads() {
		lane := road.PriorityLane()
		status := LaneStatus{
			ID:       lane.ID(),
			Road:     road.ID(),
			Size:     lane.Size(),
			Vehicles: lane.Vehicles(),
		}
		if light := lane.Light(); light != nil {
			status.Light = light.String()
		}
		snapshot.Lanes = append(snapshot.Lanes, status)
	}

	return snapshot
}

// Lane returns the status of one scheduling lane
func (s *Snapshot) Lane(id string) (LaneStatus, bool) {
	for _, lane := range s.Lanes {
		if lane.ID == id {
			return lane, true
		}
	}
	return LaneStatus{}, false
}

// GreenLane returns the lane whose light was green when the snapshot was taken
func (s *Snapshot) GreenLane() (string, bool) {
	for _, lane := range s.Lanes {
		if lane.Light == LightGreen.String() {
			return lane.ID, true
		}
	}
	return "", false
}

// MarshalSnapshot encodes a snapshot as JSON
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return sonnet.Marshal(s)
}

// UnmarshalSnapshot decodes a snapshot from JSON
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := sonnet.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarshalTickReport encodes a tick report as JSON
func MarshalTickReport(r *TickReport) ([]byte, error) {
	return sonnet.Marshal(r)
}
