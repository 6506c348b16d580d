package throttle

import (
	"errors"
	"fmt"

	"github.com/mobile-next/windowthrottle/types"
)

var (
	ErrInvalidConfiguration   = errors.New("invalid configuration")
	ErrUnsupportedEnvironment = errors.New("unsupported environment")
	ErrListenerPanic          = errors.New("listener panicked")
	ErrInvalidQuery           = errors.New("invalid query")
	ErrMeasurement            = errors.New("measurement failed")
)

// ConfigurationError reports an invalid option value. The engine is not started.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// UnsupportedEnvironmentError reports a missing collaborator. The engine is inert.
type UnsupportedEnvironmentError struct {
	Missing string
}

func (e *UnsupportedEnvironmentError) Error() string {
	return fmt.Sprintf("unsupported environment: no %s available", e.Missing)
}

func (e *UnsupportedEnvironmentError) Unwrap() error { return ErrUnsupportedEnvironment }

// ListenerError wraps a panic raised by a listener during dispatch.
type ListenerError struct {
	Event types.EventName
	// Index is the listener's position in the dispatch order.
	Index int
	Value interface{}
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d for %s panicked: %v", e.Index, e.Event, e.Value)
}

func (e *ListenerError) Unwrap() error { return ErrListenerPanic }

// InvalidQueryError reports an unrecognized activity kind or event name.
type InvalidQueryError struct {
	Kind string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: unknown kind %q", e.Kind)
}

func (e *InvalidQueryError) Unwrap() error { return ErrInvalidQuery }
