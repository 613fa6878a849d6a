package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"flightdeck/pkg/action"
	"flightdeck/pkg/config"
	"flightdeck/pkg/deck"
	"flightdeck/pkg/expr"
	"flightdeck/pkg/logging"
	"flightdeck/pkg/registry"
	"flightdeck/pkg/version"
)

const defaultConfigPath = "configs/flightdeck.yaml"

// options are the launch arguments. The host passes port, pluginUUID,
// registerEvent and info with single-dash flags.
type options struct {
	Port          int
	PluginUUID    string
	RegisterEvent string
	Info          string
	ConfigPath    string
}

func main() {
	var opts options
	var initConfig bool
	flag.IntVar(&opts.Port, "port", 0, "Host websocket port")
	flag.StringVar(&opts.PluginUUID, "pluginUUID", "", "Plugin instance UUID assigned by the host")
	flag.StringVar(&opts.RegisterEvent, "registerEvent", "registerPlugin", "Registration event name")
	flag.StringVar(&opts.Info, "info", "", "Host and device info (JSON)")
	flag.StringVar(&opts.ConfigPath, "config", defaultConfigPath, "Path to the config file")
	flag.BoolVar(&initConfig, "init-config", false, "Generate default config file and exit")
	flag.Parse()

	if initConfig {
		if err := config.GenerateDefault(opts.ConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", opts.ConfigPath)
		return
	}

	if opts.Port == 0 || opts.PluginUUID == "" {
		fmt.Fprintln(os.Stderr, "flightdeck is started by the host application: -port and -pluginUUID are required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	appCfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("flightdeck started", "version", version.Version, "provider", appCfg.Sim.Provider)
	if info, err := deck.ParseInfo(opts.Info); err != nil {
		slog.Warn("Ignoring launch info", "error", err)
	} else {
		slog.Info("Host", "platform", info.Application.Platform, "version", info.Application.Version, "devices", len(info.Devices))
	}

	tr := initializeSimClient(appCfg)
	defer tr.Close()
	reg := registry.New(tr)
	tr.Start()

	conn, err := deck.Connect(ctx, opts.Port, opts.PluginUUID, opts.RegisterEvent)
	if err != nil {
		return fmt.Errorf("failed to connect to host: %w", err)
	}
	defer conn.Close()

	mgr := action.NewManager(reg, expr.NewParser(appCfg.Expressions.CacheSize), conn, actionConfig(appCfg))
	defer mgr.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := conn.Run(gctx, mgr)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err == nil {
			slog.Info("Host closed the connection")
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("flightdeck stopped", "actions", mgr.Count())
	return nil
}

func actionConfig(cfg *config.Config) action.Config {
	return action.Config{
		HoldDuration:  cfg.Deck.HoldDuration.Std(),
		SwapDelay:     cfg.Deck.SwapDelay.Std(),
		CacheExpiry:   cfg.Deck.CacheExpiry.Std(),
		NumpadProfile: cfg.Deck.NumpadProfile,
	}
}
