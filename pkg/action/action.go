// Package action turns device events into registry calls and pushes the
// resulting simulator state back to the keys and dials that show it.
package action

import (
	"time"

	"flightdeck/pkg/deck"
	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

// Action identifiers declared in the plugin manifest.
const (
	UUIDToggle  = "dev.flightdeck.toggle"
	UUIDGeneric = "dev.flightdeck.generic"
	UUIDNavCom  = "dev.flightdeck.navcom"
	UUIDNumpad  = "dev.flightdeck.numpad"
)

// Registry is the part of the event/variable registry actions use.
type Registry interface {
	RegisterEvent(name string) (id sim.EventID, valid, ok bool)
	Trigger(name string, value uint32) bool
	IsValid(name string) bool
	RegisterSimValues(regs ...simvar.Registration)
	DeRegisterSimValues(regs ...simvar.Registration)
	Subscribe(fn func(sim.Values)) func()
	Values() sim.Values
}

// Config tunes action behaviour.
type Config struct {
	HoldDuration  time.Duration
	SwapDelay     time.Duration
	CacheExpiry   time.Duration
	NumpadProfile string
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		HoldDuration:  time.Second,
		SwapDelay:     500 * time.Millisecond,
		CacheExpiry:   500 * time.Millisecond,
		NumpadProfile: "Numpad",
	}
}

// instance is one placed action.
type instance interface {
	appear(values sim.Values)
	disappear()
	keyDown()
	keyUp()
	rotate(ticks int)
	refresh(values sim.Values)
}

// base carries what every action needs to address its key.
type base struct {
	context string
	device  string
	encoder bool
	sender  deck.Sender
}

func newBase(ev deck.Event, sender deck.Sender) base {
	return base{
		context: ev.Context,
		device:  ev.Device,
		encoder: ev.Payload.Controller == deck.ControllerEncoder,
		sender:  sender,
	}
}

func (b base) setTitle(title string) {
	b.sender.SetTitle(b.context, title)
	if b.encoder {
		b.sender.SetFeedback(b.context, map[string]any{"value": title})
	}
}

func (b base) setActive(active bool) {
	slot := deck.StateInactive
	if active {
		slot = deck.StateActive
	}
	b.sender.SetState(b.context, deck.MustStateIndex(slot))
}

func (b base) alert() {
	b.sender.ShowAlert(b.context)
}

func splitTicks(ticks int) (sign, increment int) {
	switch {
	case ticks > 0:
		return 1, ticks
	case ticks < 0:
		return -1, -ticks
	}
	return 0, 0
}
