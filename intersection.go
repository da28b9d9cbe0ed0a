package crossway

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/samber/lo"

	logutil "github.com/anggasct/crossway/pkg/logging"
)

// Intersection arbitrates right-of-way between the scheduling lanes of four
// roads. It owns every road, lane, queue and light; nothing in it is safe
// for concurrent use, so hosts must serialise calls per instance.
// Its own logger records construction and ingestion; served vehicles and
// light changes reach the logs through observers.
type Intersection struct {
	id        string
	config    Config
	roads     map[RoadID]*Road
	order     []RoadID
	lanes     map[string]*Lane
	registry  *PriorityRegistry
	observers *ObserverManager
	logger    logr.Logger

	tick   uint64
	active *Lane
}

// NewIntersection creates an intersection with roads A to D.
// Every light starts red.
func NewIntersection(opts ...Option) (*Intersection, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	i := &Intersection{
		id:        uuid.New().String(),
		config:    config,
		roads:     make(map[RoadID]*Road, len(config.RoadOrder)),
		order:     config.RoadOrder,
		lanes:     make(map[string]*Lane),
		registry:  NewPriorityRegistry(),
		observers: NewObserverManager(),
		logger:    config.Logger.WithName("intersection"),
	}

	for _, id := range i.order {
		road := NewRoad(id)
		i.roads[id] = road
		for _, lane := range road.Lanes() {
			i.lanes[lane.ID()] = lane
			if light := lane.Light(); light != nil {
				light.onChange = i.lightChanged
			}
		}
	}

	if len(config.PriorityLanes) == 0 {
		for _, lane := range i.SchedulingLanes() {
			i.registry.Register(lane)
		}
	} else {
		for _, laneID := range config.PriorityLanes {
			lane, ok := i.lanes[laneID]
			if !ok {
				return nil, NewConfigurationError("PriorityLanes", fmt.Sprintf("unknown lane '%s'", laneID))
			}
			if lane.Light() == nil {
				return nil, NewConfigurationError("PriorityLanes", fmt.Sprintf("lane '%s' is not a scheduling lane", laneID))
			}
			i.registry.Register(lane)
		}
	}

	for _, observer := range config.Observers {
		i.observers.AddObserver(observer)
	}

	i.logger.V(logutil.DEFAULT).Info("Intersection created",
		"id", i.id, "roadOrder", i.order, "priorityLanes", i.registry.String(),
		"priorityThreshold", config.PriorityThreshold, "lowWaterThreshold", config.LowWaterThreshold)

	return i, nil
}

// ID returns the instance identifier
func (i *Intersection) ID() string {
	return i.id
}

// Config returns the configuration the intersection was built with
func (i *Intersection) Config() Config {
	return i.config
}

// Ticks returns the number of completed steps
func (i *Intersection) Ticks() uint64 {
	return i.tick
}

// Road returns a road by identifier
func (i *Intersection) Road(id RoadID) (*Road, bool) {
	road, ok := i.roads[id]
	return road, ok
}

// Roads returns the roads in visiting order
func (i *Intersection) Roads() []*Road {
	return lo.Map(i.order, func(id RoadID, _ int) *Road {
		return i.roads[id]
	})
}

// SchedulingLanes returns the priority-capable lane of every road in visiting order
func (i *Intersection) SchedulingLanes() []*Lane {
	return lo.Map(i.order, func(id RoadID, _ int) *Lane {
		return i.roads[id].PriorityLane()
	})
}

// Lane returns any of the twelve lanes by identifier
func (i *Intersection) Lane(id string) (*Lane, bool) {
	lane, ok := i.lanes[id]
	return lane, ok
}

// PriorityOrder returns the current registry order as lane identifiers
func (i *Intersection) PriorityOrder() []string {
	return lo.Map(i.registry.Lanes(), func(lane *Lane, _ int) string {
		return lane.ID()
	})
}

// AddObserver registers an observer
func (i *Intersection) AddObserver(observer Observer) {
	i.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (i *Intersection) RemoveObserver(observer Observer) {
	i.observers.RemoveObserver(observer)
}

// AddVehicle appends a vehicle to the named lane. The identifier is not
// inspected; duplicates are queued as distinct vehicles.
func (i *Intersection) AddVehicle(laneID string, v Vehicle) error {
	lane, ok := i.lanes[laneID]
	if !ok {
		return NewLaneNotFoundError(laneID)
	}
	lane.AddVehicle(v)
	i.logger.V(logutil.TRACE).Info("Vehicle queued", "lane", laneID, "vehicle", v, "size", lane.Size())
	return nil
}

// LaneSize returns the number of vehicles waiting on a lane
func (i *Intersection) LaneSize(laneID string) (int, error) {
	lane, ok := i.lanes[laneID]
	if !ok {
		return 0, NewLaneNotFoundError(laneID)
	}
	return lane.Size(), nil
}

// IsGreen reports whether a lane's light is green. Unlit lanes are never green.
func (i *Intersection) IsGreen(laneID string) (bool, error) {
	lane, ok := i.lanes[laneID]
	if !ok {
		return false, NewLaneNotFoundError(laneID)
	}
	return lane.Light() != nil && lane.Light().IsGreen(), nil
}

// ActivePriorityLane returns the lane currently receiving priority service.
// While a priority tick runs this is the lane being drained; between ticks
// it is the registry head if it still holds more than the low-water count.
func (i *Intersection) ActivePriorityLane() (string, bool) {
	if i.active != nil {
		return i.active.ID(), true
	}
	lane, ok := i.registry.Peek()
	if ok && lane.Size() > i.config.LowWaterThreshold {
		return lane.ID(), true
	}
	return "", false
}

// TotalNormalVehicles sums the scheduling lanes other than active
func (i *Intersection) TotalNormalVehicles(active *Lane) int {
	return lo.SumBy(i.SchedulingLanes(), func(lane *Lane) int {
		if lane == active {
			return 0
		}
		return lane.Size()
	})
}

// NormalServiceCount returns how many vehicles each lane may release during
// normal service: the average load of the scheduling lanes other than
// active, never less than one.
func (i *Intersection) NormalServiceCount(active *Lane) int {
	n := lo.CountBy(i.SchedulingLanes(), func(lane *Lane) bool {
		return lane != active
	})
	if n == 0 {
		return 1
	}
	return max(i.TotalNormalVehicles(active)/n, 1)
}

// SetGreenLane turns every light red and then the target's light green.
// A target without a light leaves all lights red.
func (i *Intersection) SetGreenLane(target *Lane) {
	for _, lane := range i.SchedulingLanes() {
		if light := lane.Light(); light != nil {
			light.SetRed()
		}
	}
	if target == nil {
		return
	}
	if light := target.Light(); light != nil {
		light.SetGreen()
	}
}

// Step runs one tick: a congested lane is drained if there is one,
// otherwise every waiting lane gets its quota in road order.
func (i *Intersection) Step() *TickReport {
	i.tick++
	report := newTickReport(i.tick)
	defer func() {
		i.active = nil
	}()

	if !i.servePriorityLane(report) {
		i.serveNormalLanes(report)
	}

	i.observers.NotifyTickCompleted(report)

	return report
}

// servePriorityLane drains the registry head down to the low-water mark.
// It reports false when no lane qualifies.
func (i *Intersection) servePriorityLane(report *TickReport) bool {
	previous, _ := i.registry.Peek()
	if promoted, ok := i.registry.Promote(i.config.PriorityThreshold); ok && promoted != previous {
		i.logger.V(logutil.TRACE).Info("Registry reordered", "order", i.registry.String())
		i.observers.NotifyPriorityPromoted(promoted.ID(), i.tick)
	}

	lane, ok := i.registry.Peek()
	if !ok || lane.Size() <= i.config.LowWaterThreshold {
		return false
	}

	i.active = lane
	report.Mode = ModePriority
	report.PriorityLane = lane.ID()
	report.Quota = lane.Size() - i.config.LowWaterThreshold

	i.SetGreenLane(lane)
	removed := 0
	for lane.Size() > i.config.LowWaterThreshold {
		vehicle, ok := lane.RemoveVehicle()
		if !ok {
			break
		}
		i.served(report, lane, vehicle, ModePriority)
		removed++
	}

	report.Services = append(report.Services, LaneService{
		LaneID:  lane.ID(),
		Quota:   report.Quota,
		Removed: removed,
	})
	return true
}

// serveNormalLanes gives each waiting scheduling lane a turn of up to quota vehicles
func (i *Intersection) serveNormalLanes(report *TickReport) {
	quota := i.NormalServiceCount(nil)
	report.Quota = quota

	for _, lane := range i.SchedulingLanes() {
		if lane.Size() == 0 {
			continue
		}

		report.Mode = ModeNormal
		i.SetGreenLane(lane)
		removed := 0
		for removed < quota {
			vehicle, ok := lane.RemoveVehicle()
			if !ok {
				break
			}
			i.served(report, lane, vehicle, ModeNormal)
			removed++
		}

		report.Services = append(report.Services, LaneService{
			LaneID:  lane.ID(),
			Quota:   quota,
			Removed: removed,
		})
	}
}

// served records a removed vehicle and notifies observers
func (i *Intersection) served(report *TickReport, lane *Lane, vehicle Vehicle, mode ServiceMode) {
	event := ServedEvent{
		Tick:    report.Tick,
		LaneID:  lane.ID(),
		Vehicle: vehicle,
		Mode:    mode,
	}
	report.Served = append(report.Served, event)

	i.observers.NotifyServed(event)
}

// lightChanged forwards light transitions to observers
func (i *Intersection) lightChanged(laneID string, from, to LightState) {
	i.observers.NotifyLightChanged(laneID, from, to)
}
