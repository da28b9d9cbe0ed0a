// Command crossway simulates a four-way intersection, printing the lane
// status after every step and serving metrics over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/anggasct/crossway"
	"github.com/anggasct/crossway/pkg/driver"
	"github.com/anggasct/crossway/pkg/feed"
	"github.com/anggasct/crossway/pkg/ledger"
	"github.com/anggasct/crossway/pkg/logging"
	"github.com/anggasct/crossway/pkg/observers"
	"github.com/anggasct/crossway/visualization"
)

const shutdownTimeout = 5 * time.Second

func main() {
	opts := NewOptions()
	opts.AddFlags(pflag.CommandLine)
	pflag.Parse()

	if err := opts.Complete(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.NewLogger(opts.LogVerbosity, opts.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger, os.Stdout); err != nil {
		logging.Fatal(logger, err, "Simulation failed")
	}
}

// run wires the intersection to its source, driver and HTTP server and
// blocks until the steps are done or ctx is cancelled
func run(ctx context.Context, opts *Options, logger logr.Logger, out io.Writer) (err error) {
	metrics := observers.NewMetricsObserver(opts.TimePerVehicle)
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return err
	}
	registry.MustRegister(collectors.NewGoCollector())

	intersectionOpts := append(opts.IntersectionOptions(logger),
		crossway.WithObserver(metrics),
		crossway.WithObserver(observers.NewLoggingObserver(logger, "events")),
	)

	if opts.Ledger != "" {
		l, openErr := ledger.Open(opts.Ledger)
		if openErr != nil {
			return openErr
		}
		defer func() {
			err = multierr.Combine(err, l.Err(), l.Close())
		}()
		intersectionOpts = append(intersectionOpts, crossway.WithObserver(l))
	}

	intersection, err := crossway.NewIntersection(intersectionOpts...)
	if err != nil {
		return err
	}

	source, err := opts.NewSource(logger)
	if err != nil {
		return err
	}

	renderer := visualization.NewTextRenderer(out)
	d := driver.New(intersection)
	d.Interval = opts.Tick
	d.MaxSteps = opts.Steps
	d.Logger = logger
	d.OnTick = func(report *crossway.TickReport, snapshot *crossway.Snapshot) {
		metrics.ObserveSnapshot(snapshot)
		if report.Mode != crossway.ModeIdle {
			logger.V(logging.VERBOSE).Info("Estimated green time",
				"tick", report.Tick, "duration", metrics.EstimateGreenTime(report.ServedCount()))
		}
		switch {
		case opts.Quiet:
		case opts.JSON:
			if err := writeReport(out, report); err != nil {
				logger.Error(err, "Failed to write tick report")
			}
		default:
			if err := renderer.Render(report.Tick, snapshot); err != nil {
				logger.Error(err, "Failed to render status")
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	arrivals := make(chan feed.Arrival, 64)
	g.Go(func() error {
		return source.Run(runCtx, arrivals)
	})
	g.Go(func() error {
		defer cancel()
		return d.Run(runCtx, arrivals)
	})

	if opts.MetricsAddr != "" {
		server := &http.Server{
			Addr:              opts.MetricsAddr,
			Handler:           newMux(registry, d.Status),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.V(logging.DEFAULT).Info("Serving metrics", "addr", opts.MetricsAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-runCtx.Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			return server.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()

	if opts.Diagram != "" {
		if diagramErr := visualization.WriteDiagram(opts.Diagram, d.Status()); diagramErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to write diagram: %w", diagramErr))
		}
	}

	if opts.JSON {
		logger.V(logging.DEFAULT).Info("Simulation stopped", "steps", d.Steps(),
			"served", metrics.GetTotalServed(), "servedPerLane", metrics.GetServedPerLane())
		return err
	}
	fmt.Fprintf(out, "\nSimulation stopped after %d steps.\n", d.Steps())
	fmt.Fprint(out, metrics.Summary())
	return err
}

// writeReport writes one tick report as a JSON line
func writeReport(out io.Writer, report *crossway.TickReport) error {
	data, err := crossway.MarshalTickReport(report)
	if err != nil {
		return err
	}
	_, err = out.Write(append(data, '\n'))
	return err
}
