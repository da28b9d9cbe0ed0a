// Package observers provides observers for monitoring intersection activity
package observers

import (
	"github.com/go-logr/logr"

	"github.com/anggasct/crossway"
	logutil "github.com/anggasct/crossway/pkg/logging"
)

// LoggingObserver logs intersection events through a logr.Logger
type LoggingObserver struct {
	crossway.BaseObserver
	logger logr.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger logr.Logger, name string) *LoggingObserver {
	if name != "" {
		logger = logger.WithName(name)
	}
	return &LoggingObserver{
		logger: logger,
	}
}

// OnServed logs each released vehicle
func (o *LoggingObserver) OnServed(event crossway.ServedEvent) {
	o.logger.V(logutil.DEBUG).Info("Removed vehicle",
		"tick", event.Tick, "lane", event.LaneID, "vehicle", event.Vehicle, "mode", event.Mode.String())
}

// OnLightChanged logs light transitions
func (o *LoggingObserver) OnLightChanged(laneID string, from, to crossway.LightState) {
	if to == crossway.LightGreen {
		o.logger.V(logutil.VERBOSE).Info("Green light set", "lane", laneID)
		return
	}
	o.logger.V(logutil.TRACE).Info("Light changed", "lane", laneID, "from", from.String(), "to", to.String())
}

// OnPriorityPromoted logs registry promotions
func (o *LoggingObserver) OnPriorityPromoted(laneID string, tick uint64) {
	o.logger.V(logutil.DEFAULT).Info("Priority lane promoted", "lane", laneID, "tick", tick)
}

// OnTickCompleted logs a one-line tick summary
func (o *LoggingObserver) OnTickCompleted(report *crossway.TickReport) {
	o.logger.V(logutil.VERBOSE).Info("Tick completed",
		"tick", report.Tick, "mode", report.Mode.String(), "served", report.ServedCount(),
		"quota", report.Quota, "priorityLane", report.PriorityLane)
}

// OnError logs observer failures
func (o *LoggingObserver) OnError(err error) {
	o.logger.Error(err, "Observer failed")
}
