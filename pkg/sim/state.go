// Package sim provides simulator transport contracts and shared helpers.
package sim

// State represents the connection state of the simulator.
type State string

const (
	// StateDisconnected indicates no connection to the simulator.
	StateDisconnected State = "disconnected"
	// StateConnected indicates an open simulator session.
	StateConnected State = "connected"
)
