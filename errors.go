package crossway

import "fmt"

// ErrorCode represents specific error conditions in the intersection
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Lane identifier does not name any lane of the intersection
	ErrCodeLaneNotFound
	// Intersection configuration is invalid
	ErrCodeInvalidConfiguration
	// An observer panicked while being notified
	ErrCodeObserverPanic
)

// LaneError represents lane lookup failures
type LaneError struct {
	Code    ErrorCode
	LaneID  string
	Message string
}

func (e *LaneError) Error() string {
	return fmt.Sprintf("lane error [%s]: %s", e.LaneID, e.Message)
}

// NewLaneNotFoundError creates a new lane not found error
func NewLaneNotFoundError(laneID string) *LaneError {
	return &LaneError{
		Code:    ErrCodeLaneNotFound,
		LaneID:  laneID,
		Message: fmt.Sprintf("lane '%s' not found", laneID),
	}
}

// ConfigurationError represents intersection configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// ObserverError wraps a panic raised inside an observer callback
type ObserverError struct {
	Callback  string
	Recovered any
}

func (e *ObserverError) Error() string {
	return fmt.Sprintf("observer panic in %s: %v", e.Callback, e.Recovered)
}

// NewObserverError creates a new observer panic error
func NewObserverError(callback string, recovered any) *ObserverError {
	return &ObserverError{
		Callback:  callback,
		Recovered: recovered,
	}
}

// IsLaneError checks if an error is a LaneError
func IsLaneError(err error) bool {
	_, ok := err.(*LaneError)
	return ok
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}

// IsObserverError checks if an error is an ObserverError
func IsObserverError(err error) bool {
	_, ok := err.(*ObserverError)
	return ok
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	switch e := err.(type) {
	case *LaneError:
		return e.Code
	case *ConfigurationError:
		return ErrCodeInvalidConfiguration
	case *ObserverError:
		return ErrCodeObserverPanic
	default:
		return ErrCodeNone
	}
}
