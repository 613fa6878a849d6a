package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvSimProvider = "FLIGHTDECK_SIM_PROVIDER"
	EnvLogLevel    = "FLIGHTDECK_LOG_LEVEL"
	EnvSDK         = "MSFS_SDK"
)

// Config holds the application configuration.
type Config struct {
	Sim         SimConfig         `yaml:"sim"`
	Log         LogConfig         `yaml:"log"`
	Deck        DeckConfig        `yaml:"deck"`
	Expressions ExpressionsConfig `yaml:"expressions"`
}

// SimConfig holds settings for the simulator connection.
type SimConfig struct {
	Provider          string        `yaml:"provider"` // "simconnect", "mock"
	AppName           string        `yaml:"app_name"`
	DLLPath           string        `yaml:"dll_path"`
	SDKPath           string        `yaml:"sdk_path"`
	ReconnectInterval Duration      `yaml:"reconnect_interval"`
	UpdateInterval    Duration      `yaml:"update_interval"`
	Mock              MockSimConfig `yaml:"mock"`
}

// MockSimConfig holds the initial state of the mock aircraft.
type MockSimConfig struct {
	StartHeading  float64 `yaml:"start_heading"`
	StartAltitude float64 `yaml:"start_altitude"`
	StartAirspeed float64 `yaml:"start_airspeed"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path       string `yaml:"path"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Trace      bool   `yaml:"trace"`
}

// DeckConfig holds settings for key and dial behaviour.
type DeckConfig struct {
	HoldDuration  Duration `yaml:"hold_duration"`
	SwapDelay     Duration `yaml:"swap_delay"`
	CacheExpiry   Duration `yaml:"cache_expiry"`
	NumpadProfile string   `yaml:"numpad_profile"`
}

// ExpressionsConfig holds settings for feedback expressions.
type ExpressionsConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sim: SimConfig{
			Provider:          "simconnect",
			AppName:           "flightdeck",
			ReconnectInterval: Duration(5 * time.Second),
			UpdateInterval:    Duration(100 * time.Millisecond),
			Mock: MockSimConfig{
				StartHeading:  0,
				StartAltitude: 3000,
				StartAirspeed: 110,
			},
		},
		Log: LogConfig{
			Path:       "./logs/flightdeck.log",
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Deck: DeckConfig{
			HoldDuration:  Duration(1 * time.Second),
			SwapDelay:     Duration(500 * time.Millisecond),
			CacheExpiry:   Duration(500 * time.Millisecond),
			NumpadProfile: "Numpad",
		},
		Expressions: ExpressionsConfig{
			CacheSize: 256,
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// Environment overrides (optionally from a .env file next to the config) are
// applied afterwards and never written back.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := loadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv reads KEY=value pairs into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvSimProvider); v != "" {
		cfg.Sim.Provider = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if cfg.Sim.SDKPath == "" {
		cfg.Sim.SDKPath = os.Getenv(EnvSDK)
	}
}

// Validate checks enumerated and numeric settings.
func (c *Config) Validate() error {
	c.Sim.Provider = strings.ToLower(strings.TrimSpace(c.Sim.Provider))
	switch c.Sim.Provider {
	case "simconnect", "mock":
	default:
		return fmt.Errorf("invalid sim provider %q: must be simconnect or mock", c.Sim.Provider)
	}
	switch strings.ToUpper(c.Log.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Sim.UpdateInterval <= 0 {
		return fmt.Errorf("sim.update_interval must be positive")
	}
	if c.Expressions.CacheSize <= 0 {
		return fmt.Errorf("expressions.cache_size must be positive")
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# flightdeck configuration
# ------------------------
# Durations: ns, us (or µs), ms, s, m, h, d (day)
# Environment overrides: FLIGHTDECK_SIM_PROVIDER, FLIGHTDECK_LOG_LEVEL, MSFS_SDK

`)
	data = append(header, data...)

	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: simconnect, mock\n${1}provider:"))

	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	reDLL := regexp.MustCompile(`(?m)^(\s+)dll_path:`)
	data = reDLL.ReplaceAll(data, []byte("${1}# Empty: search sdk_path, MSFS_SDK, the Steam install and the usual SDK folders\n${1}dll_path:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
