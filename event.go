package crossway

import "fmt"

// ServiceMode identifies how the intersection served traffic during a tick
type ServiceMode int

const (
	// ModeIdle means no vehicle was waiting on any scheduling lane
	ModeIdle ServiceMode = iota
	// ModePriority means a single congested lane was drained
	ModePriority
	// ModeNormal means every waiting lane received its quota in turn
	ModeNormal
)

// String returns the display name of the mode
func (m ServiceMode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePriority:
		return "priority"
	case ModeNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode by name
func (m ServiceMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name
func (m *ServiceMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*m = ModeIdle
	case "priority":
		*m = ModePriority
	case "normal":
		*m = ModeNormal
	default:
		return fmt.Errorf("unknown service mode %q", string(text))
	}
	return nil
}

// ServedEvent is emitted once for every vehicle released from a lane
type ServedEvent struct {
	Tick    uint64      `json:"tick"`
	LaneID  string      `json:"lane"`
	Vehicle Vehicle     `json:"vehicle"`
	Mode    ServiceMode `json:"mode"`
}

// LaneService records one lane's turn within a tick
type LaneService struct {
	LaneID  string `json:"lane"`
	Quota   int    `json:"quota"`
	Removed int    `json:"removed"`
}

// TickReport describes everything a single Step did
type TickReport struct {
	Tick         uint64        `json:"tick"`
	Mode         ServiceMode   `json:"mode"`
	PriorityLane string        `json:"priority_lane,omitempty"`
	Quota        int           `json:"quota"`
	Services     []LaneService `json:"services"`
	Served       []ServedEvent `json:"served"`
}

// newTickReport creates an empty report for the given tick
func newTickReport(tick uint64) *TickReport {
	return &TickReport{
		Tick:     tick,
		Mode:     ModeIdle,
		Services: make([]LaneService, 0),
		Served:   make([]ServedEvent, 0),
	}
}

// ServedCount returns the number of vehicles released during the tick
func (r *TickReport) ServedCount() int {
	return len(r.Served)
}

// ServedFrom returns the number of vehicles released from one lane
func (r *TickReport) ServedFrom(laneID string) int {
	count := 0
	for _, event := range r.Served {
		if event.LaneID == laneID {
			count++
		}
	}
	return count
}
