package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anggasct/crossway"
)

const (
	// FirstArrivalChance is the probability of one vehicle reaching a lane per round
	FirstArrivalChance = 0.8
	// SecondArrivalChance is the probability of a further vehicle in the same round
	SecondArrivalChance = 0.4
)

// RandomSource generates zero to two vehicles per lane every interval
type RandomSource struct {
	lanes    []string
	interval time.Duration
	rng      *rand.Rand
	mutex    sync.Mutex
}

// NewRandomSource creates a random source. The same seed reproduces the
// same arrivals, vehicle ids included.
func NewRandomSource(lanes []string, interval time.Duration, seed int64) *RandomSource {
	if len(lanes) == 0 {
		lanes = DefaultLanes
	}
	return &RandomSource{
		lanes:    lanes,
		interval: interval,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Generate produces one round of arrivals in lane order
func (s *RandomSource) Generate() []Arrival {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var arrivals []Arrival
	for _, lane := range s.lanes {
		count := 0
		if s.rng.Float64() < FirstArrivalChance {
			count++
		}
		if s.rng.Float64() < SecondArrivalChance {
			count++
		}
		for k := 0; k < count; k++ {
			arrivals = append(arrivals, Arrival{LaneID: lane, Vehicle: s.vehicleID(lane)})
		}
	}
	return arrivals
}

// vehicleID returns "<lane>_<first 8 hex digits of a uuid>"
func (s *RandomSource) vehicleID(lane string) crossway.Vehicle {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		id = uuid.New()
	}
	return crossway.Vehicle(fmt.Sprintf("%s_%s", lane, id.String()[:8]))
}

// Run emits a round of arrivals every interval until ctx is cancelled
func (s *RandomSource) Run(ctx context.Context, out chan<- Arrival) error {
	if s.interval <= 0 {
		return crossway.NewConfigurationError("RandomSource", "interval must be positive")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !emit(ctx, out, s.Generate()) {
				return nil
			}
		}
	}
}
