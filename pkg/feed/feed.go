// Package feed supplies vehicle arrivals to an intersection
package feed

import (
	"context"

	"go.uber.org/multierr"

	"github.com/anggasct/crossway"
)

// DefaultLanes are the scheduling lanes fed by the sources in this package
var DefaultLanes = []string{"AL2", "BL2", "CL2", "DL2"}

// Ingester accepts vehicles for a lane. *crossway.Intersection satisfies it.
type Ingester interface {
	AddVehicle(laneID string, v crossway.Vehicle) error
}

var _ Ingester = (*crossway.Intersection)(nil)

// Arrival is one vehicle reaching one lane
type Arrival struct {
	LaneID  string           `json:"lane"`
	Vehicle crossway.Vehicle `json:"vehicle"`
}

// Source produces arrivals until its context is cancelled
type Source interface {
	Run(ctx context.Context, out chan<- Arrival) error
}

// Apply hands every arrival to the ingester. Rejected arrivals do not stop
// the others; their errors are combined.
func Apply(ingester Ingester, arrivals []Arrival) error {
	var err error
	for _, arrival := range arrivals {
		err = multierr.Append(err, ingester.AddVehicle(arrival.LaneID, arrival.Vehicle))
	}
	return err
}

// emit sends arrivals in order, giving up when ctx is done
func emit(ctx context.Context, out chan<- Arrival, arrivals []Arrival) bool {
	for _, arrival := range arrivals {
		select {
		case out <- arrival:
		case <-ctx.Done():
			return false
		}
	}
	return true
}
