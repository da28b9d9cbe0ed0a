package crossway

import (
	"fmt"
	"sync"
	"testing"
)

// TestObserver records every notification it receives
type TestObserver struct {
	mutex        sync.RWMutex
	Served       []ServedEvent
	LightChanges []LightChange
	Promotions   []Promotion
	Reports      []*TickReport
	Errors       []error
}

type LightChange struct {
	LaneID string
	From   LightState
	To     LightState
}

type Promotion struct {
	LaneID string
	Tick   uint64
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnServed(event ServedEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Served = append(o.Served, event)
}

func (o *TestObserver) OnLightChanged(laneID string, from, to LightState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.LightChanges = append(o.LightChanges, LightChange{LaneID: laneID, From: from, To: to})
}

func (o *TestObserver) OnPriorityPromoted(laneID string, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Promotions = append(o.Promotions, Promotion{LaneID: laneID, Tick: tick})
}

func (o *TestObserver) OnTickCompleted(report *TickReport) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Reports = append(o.Reports, report)
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Served = nil
	o.LightChanges = nil
	o.Promotions = nil
	o.Reports = nil
	o.Errors = nil
}

func (o *TestObserver) ServedCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Served)
}

func (o *TestObserver) ServedLanes() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	lanes := make([]string, len(o.Served))
	for i, event := range o.Served {
		lanes[i] = event.LaneID
	}
	return lanes
}

// newTestIntersection builds an intersection or fails the test
func newTestIntersection(t *testing.T, opts ...Option) *Intersection {
	t.Helper()
	i, err := NewIntersection(opts...)
	if err != nil {
		t.Fatalf("Failed to create intersection: %v", err)
	}
	return i
}

// fillLane queues n vehicles named <lane>-<k> on a lane
func fillLane(t *testing.T, i *Intersection, laneID string, n int) {
	t.Helper()
	for k := 0; k < n; k++ {
		if err := i.AddVehicle(laneID, Vehicle(fmt.Sprintf("%s-%d", laneID, k))); err != nil {
			t.Fatalf("Failed to add vehicle to %s: %v", laneID, err)
		}
	}
}

// assertLaneSize checks the queue length of a lane
func assertLaneSize(t *testing.T, i *Intersection, laneID string, expected int) {
	t.Helper()
	size, err := i.LaneSize(laneID)
	if err != nil {
		t.Fatalf("Unexpected error for lane %s: %v", laneID, err)
	}
	if size != expected {
		t.Errorf("Expected lane %s to hold %d vehicles, got %d", laneID, expected, size)
	}
}

// assertSingleGreen checks that exactly one scheduling light is green
func assertSingleGreen(t *testing.T, i *Intersection, expectedLane string) {
	t.Helper()
	green := 0
	for _, lane := range i.SchedulingLanes() {
		if lane.Light().IsGreen() {
			green++
			if lane.ID() != expectedLane {
				t.Errorf("Expected %s to be green, got %s", expectedLane, lane.ID())
			}
		}
	}
	if green != 1 {
		t.Errorf("Expected exactly 1 green light, got %d", green)
	}
}
