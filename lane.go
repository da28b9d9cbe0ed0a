package crossway

// Vehicle is an opaque vehicle identifier
type Vehicle string

// Lane holds the queue of vehicles waiting on one lane and, for
// scheduling lanes, the light that controls it
type Lane struct {
	id    string
	queue *Queue[Vehicle]
	light *TrafficLight
}

// NewLane creates an unlit lane
func NewLane(id string) *Lane {
	return &Lane{
		id:    id,
		queue: NewQueue[Vehicle](),
	}
}

// NewLitLane creates a lane controlled by its own traffic light
func NewLitLane(id string) *Lane {
	lane := NewLane(id)
	lane.light = NewTrafficLight(id)
	return lane
}

// ID returns the lane identifier
func (l *Lane) ID() string {
	return l.id
}

// Light returns the lane's traffic light, or nil for an unlit lane
func (l *Lane) Light() *TrafficLight {
	return l.light
}

// AddVehicle appends a vehicle to the back of the lane
func (l *Lane) AddVehicle(v Vehicle) {
	l.queue.Enqueue(v)
}

// RemoveVehicle removes the front vehicle.
// The second return value is false when the lane is empty.
func (l *Lane) RemoveVehicle() (Vehicle, bool) {
	return l.queue.Dequeue()
}

// NextVehicle returns the front vehicle without removing it
func (l *Lane) NextVehicle() (Vehicle, bool) {
	return l.queue.Peek()
}

// Size returns the number of waiting vehicles
func (l *Lane) Size() int {
	return l.queue.Size()
}

// Vehicles returns the waiting vehicles in service order
func (l *Lane) Vehicles() []Vehicle {
	return l.queue.Items()
}
