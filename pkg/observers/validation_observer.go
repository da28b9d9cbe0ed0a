package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/crossway"
)

// ValidationObserver checks light arbitration as it happens: at most one
// light green at a time, and vehicles only released from the green lane
type ValidationObserver struct {
	crossway.BaseObserver

	green      map[string]bool
	violations []string
	mutex      sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		green:      make(map[string]bool),
		violations: make([]string, 0),
	}
}

// OnLightChanged tracks green lights
func (o *ValidationObserver) OnLightChanged(laneID string, from, to crossway.LightState) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if to == crossway.LightGreen {
		o.green[laneID] = true
	} else {
		delete(o.green, laneID)
	}

	if len(o.green) > 1 {
		o.violations = append(o.violations, fmt.Sprintf(
			"%d lights green at once after %s turned %s", len(o.green), laneID, to))
	}
}

// OnServed validates that the serving lane is the single green one
func (o *ValidationObserver) OnServed(event crossway.ServedEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.green[event.LaneID] || len(o.green) != 1 {
		o.violations = append(o.violations, fmt.Sprintf(
			"vehicle '%s' released from lane '%s' on tick %d without a green light",
			event.Vehicle, event.LaneID, event.Tick))
	}
}

// OnError validates error handling
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.violations = append(o.violations, fmt.Sprintf("Error occurred: %v", err))
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset clears recorded violations; tracked light state is kept
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.violations = make([]string, 0)
}
