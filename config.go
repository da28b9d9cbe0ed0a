package crossway

import (
	"fmt"

	"github.com/go-logr/logr"
)

const (
	// DefaultPriorityThreshold is the queue length a lane must exceed to be promoted
	DefaultPriorityThreshold = 10
	// DefaultLowWaterThreshold is the queue length a priority lane is drained down to
	DefaultLowWaterThreshold = 5
)

// Config holds the tunables of an intersection
type Config struct {
	// PriorityThreshold is the size a scheduling lane must exceed to be promoted
	PriorityThreshold int
	// LowWaterThreshold is the size priority service drains a lane down to
	LowWaterThreshold int
	// RoadOrder fixes the visiting order of normal service
	RoadOrder []RoadID
	// PriorityLanes lists the lanes registered for priority, in registration
	// order. Empty means every scheduling lane in road order.
	PriorityLanes []string
	// Logger receives structured logs; defaults to logr.Discard()
	Logger logr.Logger
	// Observers are registered before the first tick
	Observers []Observer
}

// Option configures an intersection
type Option func(*Config)

// DefaultConfig returns the configuration used when no options are given
func DefaultConfig() Config {
	order := make([]RoadID, len(DefaultRoadOrder))
	copy(order, DefaultRoadOrder)

	return Config{
		PriorityThreshold: DefaultPriorityThreshold,
		LowWaterThreshold: DefaultLowWaterThreshold,
		RoadOrder:         order,
		Logger:            logr.Discard(),
	}
}

// WithPriorityThreshold sets the promotion threshold
func WithPriorityThreshold(threshold int) Option {
	return func(c *Config) {
		c.PriorityThreshold = threshold
	}
}

// WithLowWaterThreshold sets the drain target of priority service
func WithLowWaterThreshold(threshold int) Option {
	return func(c *Config) {
		c.LowWaterThreshold = threshold
	}
}

// WithRoadOrder sets the order roads are visited in during normal service
func WithRoadOrder(order ...RoadID) Option {
	return func(c *Config) {
		c.RoadOrder = append([]RoadID(nil), order...)
	}
}

// WithPriorityLanes restricts priority registration to the given lanes
func WithPriorityLanes(laneIDs ...string) Option {
	return func(c *Config) {
		c.PriorityLanes = append([]string(nil), laneIDs...)
	}
}

// WithLogger sets the logger
func WithLogger(logger logr.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithObserver registers an observer at construction time
func WithObserver(observer Observer) Option {
	return func(c *Config) {
		c.Observers = append(c.Observers, observer)
	}
}

// Validate checks the configuration for consistency
func (c Config) Validate() error {
	if c.LowWaterThreshold <= 0 {
		return NewConfigurationError("LowWaterThreshold", fmt.Sprintf("must be positive, got %d", c.LowWaterThreshold))
	}
	if c.PriorityThreshold <= c.LowWaterThreshold {
		return NewConfigurationError("PriorityThreshold",
			fmt.Sprintf("must be above the low-water threshold (%d <= %d)", c.PriorityThreshold, c.LowWaterThreshold))
	}

	if len(c.RoadOrder) != len(DefaultRoadOrder) {
		return NewConfigurationError("RoadOrder", fmt.Sprintf("expected %d roads, got %d", len(DefaultRoadOrder), len(c.RoadOrder)))
	}
	seen := make(map[RoadID]bool, len(c.RoadOrder))
	for _, id := range c.RoadOrder {
		if !isKnownRoad(id) {
			return NewConfigurationError("RoadOrder", fmt.Sprintf("unknown road '%s'", id))
		}
		if seen[id] {
			return NewConfigurationError("RoadOrder", fmt.Sprintf("road '%s' listed twice", id))
		}
		seen[id] = true
	}

	return nil
}

func isKnownRoad(id RoadID) bool {
	for _, known := range DefaultRoadOrder {
		if known == id {
			return true
		}
	}
	return false
}
