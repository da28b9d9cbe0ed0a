package crossway

// RoadID identifies one of the four roads meeting at the intersection
type RoadID string

const (
	RoadA RoadID = "A"
	RoadB RoadID = "B"
	RoadC RoadID = "C"
	RoadD RoadID = "D"
)

// DefaultRoadOrder is the order in which roads are visited during
// normal service and registered for priority
var DefaultRoadOrder = []RoadID{RoadA, RoadB, RoadC, RoadD}

// Road groups the three lanes approaching the intersection from one side.
// Only the priority-capable lane takes part in scheduling; the incoming and
// free-turn lanes accept vehicles but are never served.
type Road struct {
	id       RoadID
	incoming *Lane
	priority *Lane
	freeTurn *Lane
}

// NewRoad creates a road with lanes named <road>L1, <road>L2 and <road>L3.
// Only L2 carries a traffic light.
func NewRoad(id RoadID) *Road {
	return &Road{
		id:       id,
		incoming: NewLane(string(id) + "L1"),
		priority: NewLitLane(string(id) + "L2"),
		freeTurn: NewLane(string(id) + "L3"),
	}
}

// ID returns the road identifier
func (r *Road) ID() RoadID {
	return r.id
}

// IncomingLane returns L1
func (r *Road) IncomingLane() *Lane {
	return r.incoming
}

// PriorityLane returns L2, the only lane visible to the scheduler
func (r *Road) PriorityLane() *Lane {
	return r.priority
}

// FreeTurnLane returns L3
func (r *Road) FreeTurnLane() *Lane {
	return r.freeTurn
}

// Lanes returns all three lanes in L1, L2, L3 order
func (r *Road) Lanes() []*Lane {
	return []*Lane{r.incoming, r.priority, r.freeTurn}
}

// Lane looks up one of the road's lanes by identifier
func (r *Road) Lane(id string) (*Lane, bool) {
	for _, lane := range r.Lanes() {
		if lane.ID() == id {
			return lane, true
		}
	}
	return nil, false
}

// IsPriorityCandidate reports whether the scheduling lane holds more than
// threshold vehicles
func (r *Road) IsPriorityCandidate(threshold int) bool {
	return r.priority.Size() > threshold
}
