package observers

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anggasct/crossway"
)

const namespace = "crossway"

// MetricsObserver counts served vehicles and ticks, and mirrors the counts
// into Prometheus collectors
type MetricsObserver struct {
	crossway.BaseObserver

	timePerVehicle time.Duration
	totalServed    int
	servedPerLane  map[string]int
	laneOrder      []string
	tickCounts     map[crossway.ServiceMode]int
	errorCount     int
	mutex          sync.RWMutex

	servedCounter *prometheus.CounterVec
	tickCounter   *prometheus.CounterVec
	queueGauge    *prometheus.GaugeVec
}

// NewMetricsObserver creates a new metrics observer. timePerVehicle is the
// rough time one vehicle needs to clear the intersection.
func NewMetricsObserver(timePerVehicle time.Duration) *MetricsObserver {
	return &MetricsObserver{
		timePerVehicle: timePerVehicle,
		servedPerLane:  make(map[string]int),
		tickCounts:     make(map[crossway.ServiceMode]int),
		servedCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vehicles_served_total",
				Help:      "Count of vehicles released from each lane.",
			},
			[]string{"lane"},
		),
		tickCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ticks_total",
				Help:      "Count of completed ticks by service mode.",
			},
			[]string{"mode"},
		),
		queueGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "lane_queue_length",
				Help:      "Vehicles waiting on each scheduling lane at the last snapshot.",
			},
			[]string{"lane"},
		),
	}
}

// Register registers the collectors with a Prometheus registerer
func (o *MetricsObserver) Register(registerer prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{o.servedCounter, o.tickCounter, o.queueGauge} {
		if err := registerer.Register(collector); err != nil {
			return fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}
	return nil
}

// RecordVehicleServed counts one vehicle passing through a lane
func (o *MetricsObserver) RecordVehicleServed(laneID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.totalServed++
	if _, seen := o.servedPerLane[laneID]; !seen {
		o.laneOrder = append(o.laneOrder, laneID)
	}
	o.servedPerLane[laneID]++
	o.servedCounter.WithLabelValues(laneID).Inc()
}

// OnServed records served metrics
func (o *MetricsObserver) OnServed(event crossway.ServedEvent) {
	o.RecordVehicleServed(event.LaneID)
}

// OnTickCompleted records tick metrics
func (o *MetricsObserver) OnTickCompleted(report *crossway.TickReport) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.tickCounts[report.Mode]++
	o.tickCounter.WithLabelValues(report.Mode.String()).Inc()
}

// OnError records error metrics
func (o *MetricsObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.errorCount++
}

// ObserveSnapshot updates the queue length gauges
func (o *MetricsObserver) ObserveSnapshot(snapshot *crossway.Snapshot) {
	for _, lane := range snapshot.Lanes {
		o.queueGauge.WithLabelValues(lane.ID).Set(float64(lane.Size))
	}
}

// EstimateGreenTime estimates how long a green phase releasing the given
// number of vehicles lasts
func (o *MetricsObserver) EstimateGreenTime(vehicles int) time.Duration {
	return time.Duration(vehicles) * o.timePerVehicle
}

// GetTotalServed returns the number of vehicles served across all lanes
func (o *MetricsObserver) GetTotalServed() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.totalServed
}

// GetServedPerLane returns the number of vehicles served per lane
func (o *MetricsObserver) GetServedPerLane() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int)
	for lane, count := range o.servedPerLane {
		result[lane] = count
	}
	return result
}

// GetTickCounts returns the number of ticks per service mode
func (o *MetricsObserver) GetTickCounts() map[crossway.ServiceMode]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[crossway.ServiceMode]int)
	for mode, count := range o.tickCounts {
		result[mode] = count
	}
	return result
}

// GetErrorCount returns the number of observer errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.errorCount
}

// Summary renders the collected counts in lane first-served order
func (o *MetricsObserver) Summary() string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var b strings.Builder
	b.WriteString("[METRICS SUMMARY]\n")
	fmt.Fprintf(&b, "Total vehicles served: %d\n", o.totalServed)
	for _, lane := range o.laneOrder {
		fmt.Fprintf(&b, "Lane %s: %d vehicles served\n", lane, o.servedPerLane[lane])
	}

	modes := make([]crossway.ServiceMode, 0, len(o.tickCounts))
	for mode := range o.tickCounts {
		modes = append(modes, mode)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	for _, mode := range modes {
		fmt.Fprintf(&b, "Ticks (%s): %d\n", mode, o.tickCounts[mode])
	}
	return b.String()
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.totalServed = 0
	o.servedPerLane = make(map[string]int)
	o.laneOrder = nil
	o.tickCounts = make(map[crossway.ServiceMode]int)
	o.errorCount = 0
	o.servedCounter.Reset()
	o.tickCounter.Reset()
	o.queueGauge.Reset()
}
