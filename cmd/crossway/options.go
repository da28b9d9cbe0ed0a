package main

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/anggasct/crossway"
	"github.com/anggasct/crossway/pkg/feed"
	"github.com/anggasct/crossway/pkg/logging"
)

const (
	SourceRandom = "random"
	SourceFile   = "file"
)

// Options contains the command-line configuration for the simulator.
type Options struct {
	//
	// Arbitration.
	//
	PriorityThreshold int      // Vehicles above which a lane is promoted.
	LowWaterThreshold int      // Vehicles a drained lane is left with.
	PriorityLanes     []string // Lanes eligible for priority, in registry order.
	RoadOrder         []string // Road visiting order.
	//
	// Simulation.
	//
	Tick           time.Duration // Time between steps.
	Steps          int           // Steps to run; zero runs until interrupted.
	Source         string        // Arrival source: random or file.
	DataDir        string        // Directory holding <lane>.txt files for the file source.
	Seed           int64         // Seed for the random source.
	TimePerVehicle time.Duration // Time one vehicle needs to cross, for green time estimates.
	Quiet          bool          // Suppresses the per-step output.
	JSON           bool          // Prints each tick report as a JSON line instead of the status block.
	Diagram        string        // File receiving a DOT (or .svg) diagram of the final snapshot.
	//
	// Diagnostics.
	//
	LogVerbosity int    // Number for the log level verbosity.
	Development  bool   // Human readable console logs.
	MetricsAddr  string // Address serving /metrics and /status; empty disables it.
	Ledger       string // SQLite file recording served vehicles; empty disables it.

	// internal
	fs *pflag.FlagSet // FlagSet used in AddFlags() and consulted in Complete()
}

// NewOptions returns a new Options struct initialized with default values.
func NewOptions() *Options {
	return &Options{
		PriorityThreshold: crossway.DefaultPriorityThreshold,
		LowWaterThreshold: crossway.DefaultLowWaterThreshold,
		Tick:              time.Second,
		Source:            SourceRandom,
		DataDir:           "lane_data",
		TimePerVehicle:    2 * time.Second,
		LogVerbosity:      logging.DEFAULT,
		MetricsAddr:       ":9090",
	}
}

// AddFlags binds the Options fields to command-line flags on the given FlagSet.
func (opts *Options) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	opts.fs = fs

	fs.IntVar(&opts.PriorityThreshold, "priority-threshold", opts.PriorityThreshold,
		"Vehicles above which a lane takes priority.")
	fs.IntVar(&opts.LowWaterThreshold, "low-water-threshold", opts.LowWaterThreshold,
		"Vehicles a priority lane is drained down to.")
	fs.StringSliceVar(&opts.PriorityLanes, "priority-lanes", opts.PriorityLanes,
		"Lanes eligible for priority in registry order. Defaults to every L2 lane.")
	fs.StringSliceVar(&opts.RoadOrder, "road-order", opts.RoadOrder,
		"Road visiting order, e.g. A,B,C,D.")
	fs.DurationVar(&opts.Tick, "tick", opts.Tick,
		"Time between simulation steps.")
	fs.IntVar(&opts.Steps, "steps", opts.Steps,
		"Number of steps to run. Zero runs until interrupted.")
	fs.StringVar(&opts.Source, "source", opts.Source,
		"Arrival source: random or file.")
	fs.StringVar(&opts.DataDir, "data-dir", opts.DataDir,
		"Directory of <lane>.txt files read by the file source.")
	fs.Int64Var(&opts.Seed, "seed", opts.Seed,
		"Seed for the random source. Defaults to the current time.")
	fs.DurationVar(&opts.TimePerVehicle, "time-per-vehicle", opts.TimePerVehicle,
		"Time one vehicle needs to cross, used for green time estimates.")
	fs.BoolVar(&opts.Quiet, "quiet", opts.Quiet,
		"Do not print anything after each step.")
	fs.BoolVar(&opts.JSON, "json", opts.JSON,
		"Print each tick report as one JSON line instead of the status block.")
	fs.StringVar(&opts.Diagram, "dot", opts.Diagram,
		"Write a Graphviz diagram of the final state to this file. A .svg name renders it with dot.")
	fs.IntVarP(&opts.LogVerbosity, "v", "v", opts.LogVerbosity,
		"Number for the log level verbosity.")
	fs.BoolVar(&opts.Development, "development", opts.Development,
		"Use the human readable console log encoder.")
	fs.StringVar(&opts.MetricsAddr, "metrics-addr", opts.MetricsAddr,
		"Address serving /metrics and /status. Empty disables the server.")
	fs.StringVar(&opts.Ledger, "ledger", opts.Ledger,
		"SQLite file recording every served vehicle. Empty disables the ledger.")
}

// Complete performs post-processing of parsed command-line arguments.
func (opts *Options) Complete() error {
	if opts.fs != nil {
		if seed := opts.fs.Lookup("seed"); seed != nil && !seed.Changed {
			opts.Seed = time.Now().UnixNano()
		}
	}
	return nil
}

// Validate checks the Options for invalid or conflicting values.
func (opts *Options) Validate() error {
	if opts.Tick <= 0 {
		return fmt.Errorf("invalid value %s for flag %q: must be positive", opts.Tick, "tick")
	}
	if opts.Steps < 0 {
		return fmt.Errorf("invalid value %d for flag %q: must not be negative", opts.Steps, "steps")
	}
	if opts.TimePerVehicle < 0 {
		return fmt.Errorf("invalid value %s for flag %q: must not be negative", opts.TimePerVehicle, "time-per-vehicle")
	}
	switch opts.Source {
	case SourceRandom:
	case SourceFile:
		if opts.DataDir == "" {
			return fmt.Errorf("flag %q is required with --source=%s", "data-dir", SourceFile)
		}
	default:
		return fmt.Errorf("invalid value %q for flag %q: must be %s or %s", opts.Source, "source", SourceRandom, SourceFile)
	}

	// Thresholds and lanes are checked by the intersection itself
	_, err := crossway.NewIntersection(opts.IntersectionOptions(logr.Discard())...)
	return err
}

// IntersectionOptions converts the arbitration flags to intersection options
func (opts *Options) IntersectionOptions(logger logr.Logger) []crossway.Option {
	intersectionOpts := []crossway.Option{
		crossway.WithPriorityThreshold(opts.PriorityThreshold),
		crossway.WithLowWaterThreshold(opts.LowWaterThreshold),
		crossway.WithLogger(logger),
	}
	if len(opts.PriorityLanes) > 0 {
		intersectionOpts = append(intersectionOpts, crossway.WithPriorityLanes(opts.PriorityLanes...))
	}
	if len(opts.RoadOrder) > 0 {
		roads := make([]crossway.RoadID, len(opts.RoadOrder))
		for k, road := range opts.RoadOrder {
			roads[k] = crossway.RoadID(road)
		}
		intersectionOpts = append(intersectionOpts, crossway.WithRoadOrder(roads...))
	}
	return intersectionOpts
}

// NewSource creates the configured arrival source
func (opts *Options) NewSource(logger logr.Logger) (feed.Source, error) {
	if opts.Source == SourceFile {
		return feed.NewFileSource(opts.DataDir, feed.DefaultLanes, logger)
	}
	return feed.NewRandomSource(feed.DefaultLanes, opts.Tick, opts.Seed), nil
}
