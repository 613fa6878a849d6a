// Package simconnect binds SimConnect.dll and implements sim.Transport for
// Microsoft Flight Simulator. It is only built on Windows.
package simconnect
