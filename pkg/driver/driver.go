// Package driver runs an intersection on a fixed tick cadence.
//
// The driver goroutine is the only one that touches the intersection:
// arrivals come in over a channel and readers get published snapshots.
package driver

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"

	"github.com/anggasct/crossway"
	"github.com/anggasct/crossway/pkg/feed"
	logutil "github.com/anggasct/crossway/pkg/logging"
)

// DefaultInterval is the tick period used when Interval is zero
const DefaultInterval = time.Second

// TickFunc is called on the driver goroutine after every step
type TickFunc func(report *crossway.TickReport, snapshot *crossway.Snapshot)

// Driver owns an intersection and steps it on a ticker
type Driver struct {
	Intersection *crossway.Intersection
	Interval     time.Duration
	// MaxSteps stops the driver after that many steps; zero runs until cancelled
	MaxSteps int
	OnTick   TickFunc
	Logger   logr.Logger

	status atomic.Pointer[crossway.Snapshot]
	steps  atomic.Uint64
}

// New creates a driver with the default interval and a discarding logger
func New(intersection *crossway.Intersection) *Driver {
	return &Driver{
		Intersection: intersection,
		Interval:     DefaultInterval,
		Logger:       logr.Discard(),
	}
}

// Status returns the snapshot published after the latest step, or nil
// before Run starts
func (d *Driver) Status() *crossway.Snapshot {
	return d.status.Load()
}

// Steps returns the number of steps taken
func (d *Driver) Steps() uint64 {
	return d.steps.Load()
}

// Run applies arrivals and steps the intersection every interval until ctx
// is cancelled or MaxSteps is reached. A closed or nil arrivals channel just
// stops ingestion.
func (d *Driver) Run(ctx context.Context, arrivals <-chan feed.Arrival) error {
	if d.Intersection == nil {
		return crossway.NewConfigurationError("Driver", "intersection is required")
	}
	if d.MaxSteps < 0 {
		return crossway.NewConfigurationError("Driver", "max steps must not be negative")
	}
	interval := d.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	if interval < 0 {
		return crossway.NewConfigurationError("Driver", "interval must be positive")
	}

	logger := d.Logger.WithName("driver")
	d.status.Store(d.Intersection.Snapshot())
	logger.V(logutil.DEFAULT).Info("Driver started", "interval", interval, "maxSteps", d.MaxSteps)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.V(logutil.DEFAULT).Info("Driver stopped", "steps", d.Steps())
			return nil

		case arrival, ok := <-arrivals:
			if !ok {
				arrivals = nil
				continue
			}
			d.ingest(logger, arrival)

		case <-ticker.C:
			arrivals = d.drain(logger, arrivals)
			d.step()

			if d.MaxSteps > 0 && d.Steps() >= uint64(d.MaxSteps) {
				logger.V(logutil.DEFAULT).Info("Driver finished", "steps", d.Steps())
				return nil
			}
		}
	}
}

// drain applies every arrival already waiting so that it is seen by the
// next step. It returns nil once the channel is closed.
func (d *Driver) drain(logger logr.Logger, arrivals <-chan feed.Arrival) <-chan feed.Arrival {
	for {
		select {
		case arrival, ok := <-arrivals:
			if !ok {
				return nil
			}
			d.ingest(logger, arrival)
		default:
			return arrivals
		}
	}
}

func (d *Driver) ingest(logger logr.Logger, arrival feed.Arrival) {
	if err := d.Intersection.AddVehicle(arrival.LaneID, arrival.Vehicle); err != nil {
		logger.Error(err, "Dropped arrival", "lane", arrival.LaneID, "vehicle", arrival.Vehicle)
	}
}

func (d *Driver) step() {
	report := d.Intersection.Step()
	snapshot := d.Intersection.Snapshot()
	d.status.Store(snapshot)
	d.steps.Add(1)

	if d.OnTick != nil {
		d.OnTick(report, snapshot)
	}
}
