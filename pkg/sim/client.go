package sim

import (
	"errors"

	"flightdeck/pkg/simvar"
)

var (
	// ErrNotConnected is returned when a client action requires a connection.
	ErrNotConnected = errors.New("simulator not connected")
)

// EventID is a client event enumeration ID bound to a named simulator event.
type EventID uint32

// Values maps subscribed registrations to their latest value.
type Values map[simvar.Registration]float64

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Transport defines the simulator connection used by the registry.
type Transport interface {
	// RegisterToggleEvent binds id to the named simulator event. It returns the
	// send ID used to correlate a later rejection, or false on immediate failure.
	RegisterToggleEvent(id EventID, name string) (sendID uint32, ok bool)
	// Trigger fires a previously bound event with a payload.
	Trigger(id EventID, value uint32) error
	// RegisterSimValues subscribes variables for periodic telemetry.
	// Subscriptions are reference counted per registration.
	RegisterSimValues(regs ...simvar.Registration)
	// DeRegisterSimValues releases one reference per registration.
	DeRegisterSimValues(regs ...simvar.Registration)
	// SetListener installs the receiver of asynchronous notifications.
	SetListener(l Listener)
	// GetState returns the current simulator connection state.
	GetState() State
	// Close cleans up resources associated with the client.
	Close() error
}

// Listener receives asynchronous notifications from a Transport.
// Callbacks run on the transport's dispatch goroutine.
type Listener interface {
	// Connected is called after a (re)connect, once subscriptions are restored.
	Connected()
	// Disconnected is called when the simulator connection is lost.
	Disconnected()
	// InvalidEventRegistered reports that the registration sent with sendID was rejected.
	InvalidEventRegistered(sendID uint32)
	// GenericValuesUpdated delivers the latest values of subscribed variables.
	GenericValuesUpdated(values Values)
}
