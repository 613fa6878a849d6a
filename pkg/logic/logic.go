// Package logic implements the toggle and value strategies behind deck actions,
// one per controllable aircraft function.
package logic

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

var (
	// ErrUnknownLogic is returned by New for an unregistered function name.
	ErrUnknownLogic = errors.New("unknown toggle logic")
	// ErrNotValueLogic is returned when a value gesture targets a pure toggle.
	ErrNotValueLogic = errors.New("logic has no adjustable value")
)

// DefaultCacheExpiry is how long a value target survives after the last adjustment.
const DefaultCacheExpiry = 500 * time.Millisecond

// Events is the subset of the registry a logic needs.
type Events interface {
	Trigger(name string, value uint32) bool
}

// Logic is a toggleable aircraft function.
type Logic interface {
	// Name returns the factory key.
	Name() string
	// Variables returns the registrations the logic reads.
	Variables() []simvar.Registration
	// Events returns the simulator events the logic fires.
	Events() []string
	// Active reports whether the function is engaged.
	Active(values sim.Values) bool
	// Toggle flips the function. It returns false when nothing was sent.
	Toggle() bool
	// IsChanged reports whether the display needs a refresh; old may be nil.
	IsChanged(old, new sim.Values) bool
}

// ValueLogic is a Logic with an adjustable numeric target.
type ValueLogic interface {
	Logic
	// Value returns the pending target if one is cached, else the live value.
	Value(values sim.Values) float64
	// Format renders a value for display.
	Format(value float64) string
	// ChangeValue adjusts the target by sign*increment steps and writes it.
	ChangeValue(values sim.Values, sign, increment int) bool
	// Sync sets the target to the related live value (e.g. current heading).
	Sync(values sim.Values) bool
	// Stop cancels the pending cache expiry.
	Stop()
}

type options struct {
	cacheExpiry time.Duration
}

// Option configures a logic created by New.
type Option func(*options)

// WithCacheExpiry overrides DefaultCacheExpiry.
func WithCacheExpiry(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cacheExpiry = d
		}
	}
}

type constructor func(events Events, o options) Logic

var factories = map[string]constructor{
	"AP":       newMaster,
	"FD":       newFlightDirector,
	"HDG":      newHeading,
	"ALT":      newAltitude,
	"VS":       newVerticalSpeed,
	"FLC":      newAirspeed,
	"NAV":      newNav,
	"APR":      newApproach,
	"AVIONICS": newAvionics,
	"VOR1":     func(e Events, o options) Logic { return newVOR(1, e, o) },
	"VOR2":     func(e Events, o options) Logic { return newVOR(2, e, o) },
	"ADF":      newADF,
	"QNH":      newQNH,
}

// New returns the logic registered under name (case-insensitive).
func New(name string, events Events, opts ...Option) (Logic, error) {
	o := options{cacheExpiry: DefaultCacheExpiry}
	for _, opt := range opts {
		opt(&o)
	}
	ctor, ok := factories[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLogic, name)
	}
	return ctor(events, o), nil
}

// Names lists the registered logic keys in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mustResolve(name, unit string) simvar.Registration {
	r, ok := simvar.Resolve(name, unit)
	if !ok {
		panic("logic: blank variable name")
	}
	return r
}
