package crossway

// LightState represents the signal shown by a traffic light
type LightState int

const (
	// LightRed stops traffic. Every light starts red.
	LightRed LightState = iota
	// LightGreen releases traffic
	LightGreen
)

// String returns the display name of the state
func (s LightState) String() string {
	switch s {
	case LightRed:
		return "RED"
	case LightGreen:
		return "GREEN"
	default:
		return "UNKNOWN"
	}
}

// LightChangeFunc is called after a light actually changes state
type LightChangeFunc func(lightID string, from, to LightState)

// TrafficLight is a two-state signal attached to a single lane
type TrafficLight struct {
	id       string
	state    LightState
	onChange LightChangeFunc
}

// NewTrafficLight creates a light in the red state
func NewTrafficLight(id string) *TrafficLight {
	return &TrafficLight{
		id:    id,
		state: LightRed,
	}
}

// ID returns the light identifier
func (l *TrafficLight) ID() string {
	return l.id
}

// State returns the current state
func (l *TrafficLight) State() LightState {
	return l.state
}

// SetGreen switches the light to green
func (l *TrafficLight) SetGreen() {
	l.transition(LightGreen)
}

// SetRed switches the light to red
func (l *TrafficLight) SetRed() {
	l.transition(LightRed)
}

// IsGreen reports whether the light is green
func (l *TrafficLight) IsGreen() bool {
	return l.state == LightGreen
}

func (l *TrafficLight) String() string {
	return l.state.String()
}

// transition moves the light to the target state; staying put is a no-op
func (l *TrafficLight) transition(to LightState) {
	from := l.state
	if from == to {
		return
	}

	l.state = to
	if l.onChange != nil {
		l.onChange(l.id, from, to)
	}
}
