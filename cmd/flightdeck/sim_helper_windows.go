//go:build windows

package main

import (
	"log/slog"

	"flightdeck/pkg/config"
	"flightdeck/pkg/sim/simconnect"
)

func initializeSimClient(cfg *config.Config) transport {
	if cfg.Sim.Provider == "mock" {
		slog.Info("Sim Source: Mock")
		return newMock(cfg)
	}

	slog.Info("Sim Source: SimConnect")
	sc, err := simconnect.NewClient(simconnect.Config{
		AppName:           cfg.Sim.AppName,
		DLLPath:           cfg.Sim.DLLPath,
		SDKPath:           cfg.Sim.SDKPath,
		ReconnectInterval: cfg.Sim.ReconnectInterval.Std(),
		UpdateInterval:    cfg.Sim.UpdateInterval.Std(),
	})
	if err != nil {
		slog.Error("Failed to create SimConnect client, falling back to Mock", "error", err)
		return newMock(cfg)
	}
	return sc
}
