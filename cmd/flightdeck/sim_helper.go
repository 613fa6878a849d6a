package main

import (
	"flightdeck/pkg/config"
	"flightdeck/pkg/sim"
	"flightdeck/pkg/sim/mocksim"
)

// transport is a sim.Transport whose loops begin with Start, after the
// registry has installed itself as listener.
type transport interface {
	sim.Transport
	Start()
}

func newMock(cfg *config.Config) *mocksim.MockClient {
	return mocksim.NewClient(mocksim.Config{
		TickRate:      cfg.Sim.UpdateInterval.Std(),
		StartHeading:  cfg.Sim.Mock.StartHeading,
		StartAltitude: cfg.Sim.Mock.StartAltitude,
		StartAirspeed: cfg.Sim.Mock.StartAirspeed,
	})
}
