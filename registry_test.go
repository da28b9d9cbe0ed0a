package crossway

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func registryIDs(r *PriorityRegistry) []string {
	ids := make([]string, 0, r.Len())
	for _, lane := range r.Lanes() {
		ids = append(ids, lane.ID())
	}
	return ids
}

func fill(lane *Lane, n int) {
	for i := 0; i < n; i++ {
		lane.AddVehicle("v")
	}
}

func TestPriorityRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewPriorityRegistry()
	a, b := NewLitLane("AL2"), NewLitLane("BL2")

	r.Register(a)
	r.Register(b)
	r.Register(a)
	r.Register(nil)

	if diff := cmp.Diff([]string{"AL2", "BL2"}, registryIDs(r)); diff != "" {
		t.Errorf("Unexpected registry order (-want +got):\n%s", diff)
	}
	if r.String() != "[AL2, BL2]" {
		t.Errorf("Expected [AL2, BL2], got %s", r.String())
	}
}

func TestPriorityRegistry_EmptyRegistry(t *testing.T) {
	r := NewPriorityRegistry()

	if _, ok := r.Peek(); ok {
		t.Error("Expected empty registry to have no head")
	}
	if _, ok := r.Promote(DefaultPriorityThreshold); ok {
		t.Error("Expected promotion on empty registry to do nothing")
	}
	if r.String() != "[]" {
		t.Errorf("Expected [], got %s", r.String())
	}
}

func TestPriorityRegistry_Promote(t *testing.T) {
	testCases := []struct {
		name     string
		sizes    []int
		promoted string
		order    []string
	}{
		{
			name:  "no lane qualifies",
			sizes: []int{3, 10, 0, 7},
			order: []string{"AL2", "BL2", "CL2", "DL2"},
		},
		{
			name:     "head qualifies",
			sizes:    []int{11, 0, 0, 0},
			promoted: "AL2",
			order:    []string{"AL2", "BL2", "CL2", "DL2"},
		},
		{
			name:     "stable partition",
			sizes:    []int{0, 1, 12, 0},
			promoted: "CL2",
			order:    []string{"CL2", "AL2", "BL2", "DL2"},
		},
		{
			name:     "first match wins over largest",
			sizes:    []int{0, 11, 30, 0},
			promoted: "BL2",
			order:    []string{"BL2", "AL2", "CL2", "DL2"},
		},
		{
			name:     "last lane qualifies",
			sizes:    []int{0, 0, 0, 15},
			promoted: "DL2",
			order:    []string{"DL2", "AL2", "BL2", "CL2"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewPriorityRegistry()
			for i, id := range []string{"AL2", "BL2", "CL2", "DL2"} {
				lane := NewLitLane(id)
				fill(lane, tc.sizes[i])
				r.Register(lane)
			}

			lane, ok := r.Promote(DefaultPriorityThreshold)
			if tc.promoted == "" {
				if ok {
					t.Errorf("Expected no promotion, got %s", lane.ID())
				}
			} else if !ok || lane.ID() != tc.promoted {
				t.Errorf("Expected %s to be promoted, got %v", tc.promoted, lane)
			}

			if diff := cmp.Diff(tc.order, registryIDs(r)); diff != "" {
				t.Errorf("Unexpected registry order (-want +got):\n%s", diff)
			}

			head, _ := r.Peek()
			if head.ID() != tc.order[0] {
				t.Errorf("Expected head %s, got %s", tc.order[0], head.ID())
			}
		})
	}
}

func TestPriorityRegistry_PromoteTracksQueueChanges(t *testing.T) {
	r := NewPriorityRegistry()
	a, b := NewLitLane("AL2"), NewLitLane("BL2")
	r.Register(a)
	r.Register(b)

	fill(b, 11)
	r.Promote(DefaultPriorityThreshold)
	if head, _ := r.Peek(); head != b {
		t.Fatalf("Expected BL2 at head, got %s", head.ID())
	}

	// BL2 drains, AL2 fills: the next promotion follows the new sizes
	for b.Size() > 0 {
		b.RemoveVehicle()
	}
	fill(a, 11)
	r.Promote(DefaultPriorityThreshold)
	if diff := cmp.Diff([]string{"AL2", "BL2"}, registryIDs(r)); diff != "" {
		t.Errorf("Unexpected registry order (-want +got):\n%s", diff)
	}
}
