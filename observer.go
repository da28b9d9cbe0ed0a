package crossway

import "reflect"

// Observer receives every vehicle released by the intersection
type Observer interface {
	// OnServed is called once per removed vehicle, in removal order
	OnServed(event ServedEvent)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnLightChanged is called when a light actually changes state
	OnLightChanged(laneID string, from, to LightState)

	// OnPriorityPromoted is called when a new lane moves to the head of the priority registry
	OnPriorityPromoted(laneID string, tick uint64)

	// OnTickCompleted is called at the end of every Step
	OnTickCompleted(report *TickReport)

	// OnError is called when an observer callback fails
	OnError(err error)
}

// ServedFunc adapts a plain function to the Observer interface
type ServedFunc func(event ServedEvent)

// OnServed calls f(event)
func (f ServedFunc) OnServed(event ServedEvent) {
	f(event)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnServed implements the required Observer method
func (o *BaseObserver) OnServed(event ServedEvent) {}

// OnLightChanged implements the optional ExtendedObserver method
func (o *BaseObserver) OnLightChanged(laneID string, from, to LightState) {}

// OnPriorityPromoted implements the optional ExtendedObserver method
func (o *BaseObserver) OnPriorityPromoted(laneID string, tick uint64) {}

// OnTickCompleted implements the optional ExtendedObserver method
func (o *BaseObserver) OnTickCompleted(report *TickReport) {}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if sameObserver(obs, observer) {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// sameObserver compares observers without panicking on func-typed ones
func sameObserver(a, b Observer) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	return len(om.observers)
}

// snapshot copies the observer list so callbacks may add or remove observers
func (om *ObserverManager) snapshot() []Observer {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// safeCall runs fn and reports a panic to the observer's OnError, if it has one
func safeCall(observer Observer, callback string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver); ok {
				func() {
					defer func() { _ = recover() }()
					extObs.OnError(NewObserverError(callback, r))
				}()
			}
		}
	}()
	fn()
}

// NotifyServed notifies all observers of a served vehicle
func (om *ObserverManager) NotifyServed(event ServedEvent) {
	for _, observer := range om.snapshot() {
		obs := observer
		safeCall(obs, "OnServed", func() {
			obs.OnServed(event)
		})
	}
}

// NotifyLightChanged notifies all observers of a light change
func (om *ObserverManager) NotifyLightChanged(laneID string, from, to LightState) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			safeCall(extObs, "OnLightChanged", func() {
				extObs.OnLightChanged(laneID, from, to)
			})
		}
	}
}

// NotifyPriorityPromoted notifies all observers of a registry promotion
func (om *ObserverManager) NotifyPriorityPromoted(laneID string, tick uint64) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			safeCall(extObs, "OnPriorityPromoted", func() {
				extObs.OnPriorityPromoted(laneID, tick)
			})
		}
	}
}

// NotifyTickCompleted notifies all observers that a tick finished
func (om *ObserverManager) NotifyTickCompleted(report *TickReport) {
	for _, observer := range om.snapshot() {
		if extObs, ok := observer.(ExtendedObserver); ok {
			safeCall(extObs, "OnTickCompleted", func() {
				extObs.OnTickCompleted(report)
			})
		}
	}
}
