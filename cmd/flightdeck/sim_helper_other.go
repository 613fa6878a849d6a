//go:build !windows

package main

import (
	"log/slog"

	"flightdeck/pkg/config"
)

func initializeSimClient(cfg *config.Config) transport {
	if cfg.Sim.Provider != "mock" {
		slog.Warn("SimConnect is only available on Windows, using Mock", "provider", cfg.Sim.Provider)
	} else {
		slog.Info("Sim Source: Mock")
	}
	return newMock(cfg)
}
