package crossway

import "testing"

func TestTrafficLight_InitialState(t *testing.T) {
	light := NewTrafficLight("AL2")

	if light.IsGreen() {
		t.Error("Expected new light to be red")
	}
	if light.State() != LightRed {
		t.Errorf("Expected state %v, got %v", LightRed, light.State())
	}
	if light.ID() != "AL2" {
		t.Errorf("Expected ID 'AL2', got '%s'", light.ID())
	}
}

func TestTrafficLight_Transitions(t *testing.T) {
	light := NewTrafficLight("AL2")

	var changes []LightState
	light.onChange = func(id string, from, to LightState) {
		changes = append(changes, to)
	}

	light.SetGreen()
	if !light.IsGreen() {
		t.Error("Expected light to be green")
	}

	light.SetGreen()
	light.SetRed()
	light.SetRed()

	if light.IsGreen() {
		t.Error("Expected light to be red")
	}

	if len(changes) != 2 {
		t.Fatalf("Expected 2 state changes, got %d", len(changes))
	}
	if changes[0] != LightGreen || changes[1] != LightRed {
		t.Errorf("Expected [GREEN RED], got %v", changes)
	}
}

func TestLightState_String(t *testing.T) {
	testCases := map[LightState]string{
		LightRed:      "RED",
		LightGreen:    "GREEN",
		LightState(7): "UNKNOWN",
	}

	for state, expected := range testCases {
		if state.String() != expected {
			t.Errorf("Expected %s, got %s", expected, state.String())
		}
	}

	light := NewTrafficLight("BL2")
	light.SetGreen()
	if light.String() != "GREEN" {
		t.Errorf("Expected GREEN, got %s", light.String())
	}
}
