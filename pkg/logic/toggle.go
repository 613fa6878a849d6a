package logic

import (
	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

// toggle is the shared pure-toggle behaviour.
type toggle struct {
	name        string
	events      Events
	active      simvar.Registration
	toggleEvent string
}

func (t *toggle) Name() string { return t.name }

func (t *toggle) Variables() []simvar.Registration {
	return []simvar.Registration{t.active}
}

func (t *toggle) Events() []string {
	if t.toggleEvent == "" {
		return nil
	}
	return []string{t.toggleEvent}
}

func (t *toggle) Active(values sim.Values) bool {
	return values[t.active] != 0
}

func (t *toggle) Toggle() bool {
	if t.toggleEvent == "" {
		return false
	}
	return t.events.Trigger(t.toggleEvent, 0)
}

func (t *toggle) IsChanged(old, new sim.Values) bool {
	if old == nil {
		return true
	}
	return t.Active(old) != t.Active(new)
}

func newToggle(name string, events Events, active simvar.Registration, event string) *toggle {
	return &toggle{name: name, events: events, active: active, toggleEvent: event}
}

func newMaster(events Events, _ options) Logic {
	return newToggle("AP", events, mustResolve("AUTOPILOT MASTER", ""), "AP_MASTER")
}

func newFlightDirector(events Events, _ options) Logic {
	return newToggle("FD", events, mustResolve("AUTOPILOT FLIGHT DIRECTOR ACTIVE", ""), "TOGGLE_FLIGHT_DIRECTOR")
}

func newNav(events Events, _ options) Logic {
	return newToggle("NAV", events, mustResolve("AUTOPILOT NAV1 LOCK", ""), "AP_NAV1_HOLD")
}

func newApproach(events Events, _ options) Logic {
	return newToggle("APR", events, mustResolve("AUTOPILOT APPROACH HOLD", ""), "AP_APR_HOLD")
}

func newAvionics(events Events, _ options) Logic {
	return newToggle("AVIONICS", events, mustResolve("AVIONICS MASTER SWITCH", ""), "TOGGLE_AVIONICS_MASTER")
}
