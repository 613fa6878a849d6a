// Package version holds the build version reported by the plugin.
package version

// Version is overridden at link time with -ldflags "-X flightdeck/pkg/version.Version=...".
var Version = "v0.3.0"
