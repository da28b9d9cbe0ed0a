package crossway

import "testing"

func TestLane_VehicleOrder(t *testing.T) {
	lane := NewLane("AL1")

	lane.AddVehicle("v1")
	lane.AddVehicle("v2")
	lane.AddVehicle("v1")

	if lane.Size() != 3 {
		t.Errorf("Expected size 3, got %d", lane.Size())
	}

	next, ok := lane.NextVehicle()
	if !ok || next != "v1" {
		t.Errorf("Expected next vehicle v1, got %s", next)
	}

	expected := []Vehicle{"v1", "v2", "v1"}
	for i, want := range expected {
		got, ok := lane.RemoveVehicle()
		if !ok || got != want {
			t.Errorf("Removal %d: expected %s, got %s", i, want, got)
		}
	}

	if _, ok := lane.RemoveVehicle(); ok {
		t.Error("Expected empty lane to report no vehicle")
	}
	if _, ok := lane.NextVehicle(); ok {
		t.Error("Expected empty lane to have no next vehicle")
	}
}

func TestLane_Light(t *testing.T) {
	if NewLane("AL1").Light() != nil {
		t.Error("Expected plain lane to be unlit")
	}

	lit := NewLitLane("AL2")
	if lit.Light() == nil {
		t.Fatal("Expected lit lane to carry a light")
	}
	if lit.Light().ID() != "AL2" {
		t.Errorf("Expected light ID AL2, got %s", lit.Light().ID())
	}
}

func TestRoad_Lanes(t *testing.T) {
	road := NewRoad(RoadC)

	if road.ID() != RoadC {
		t.Errorf("Expected road C, got %s", road.ID())
	}

	expected := []string{"CL1", "CL2", "CL3"}
	for i, lane := range road.Lanes() {
		if lane.ID() != expected[i] {
			t.Errorf("Expected lane %s, got %s", expected[i], lane.ID())
		}
	}

	if road.PriorityLane().ID() != "CL2" || road.PriorityLane().Light() == nil {
		t.Error("Expected CL2 to be the lit priority lane")
	}
	if road.IncomingLane().Light() != nil || road.FreeTurnLane().Light() != nil {
		t.Error("Expected L1 and L3 to be unlit")
	}

	if lane, ok := road.Lane("CL3"); !ok || lane != road.FreeTurnLane() {
		t.Error("Expected lookup of CL3 to return the free-turn lane")
	}
	if _, ok := road.Lane("AL2"); ok {
		t.Error("Expected lookup of a foreign lane to fail")
	}
}

func TestRoad_IsPriorityCandidate(t *testing.T) {
	road := NewRoad(RoadA)

	for i := 0; i < DefaultPriorityThreshold; i++ {
		road.PriorityLane().AddVehicle(Vehicle("v"))
	}
	if road.IsPriorityCandidate(DefaultPriorityThreshold) {
		t.Error("Expected lane at the threshold not to be a candidate")
	}

	road.PriorityLane().AddVehicle("v")
	if !road.IsPriorityCandidate(DefaultPriorityThreshold) {
		t.Error("Expected lane above the threshold to be a candidate")
	}

	for i := 0; i < 20; i++ {
		road.IncomingLane().AddVehicle("x")
	}
	other := NewRoad(RoadB)
	for i := 0; i < 20; i++ {
		other.FreeTurnLane().AddVehicle("x")
	}
	if other.IsPriorityCandidate(DefaultPriorityThreshold) {
		t.Error("Expected non-scheduling lanes to be ignored")
	}
}
