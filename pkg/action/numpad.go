package action

import (
	"errors"

	"flightdeck/pkg/numpad"
	"flightdeck/pkg/sim"
)

// Numpad keys.
const (
	KeyEnter     = "enter"
	KeySwap      = "swap"
	KeyBackspace = "backspace"
	KeyCancel    = "cancel"
	KeyDisplay   = "display"
)

type numpadSettings struct {
	Key string `json:"key"`
}

// numpadAction is one key of the numeric entry profile.
type numpadAction struct {
	base
	key   string
	store *numpad.Store
	// changed is called after the entry on this device was modified.
	changed func(device string)
}

func (a *numpadAction) appear(sim.Values) {
	if a.key == KeyDisplay {
		a.showEntry()
		return
	}
	a.sender.SetTitle(a.context, a.label())
}

func (a *numpadAction) label() string {
	switch a.key {
	case KeyEnter:
		return "ENT"
	case KeySwap:
		return "SWAP"
	case KeyBackspace:
		return "DEL"
	case KeyCancel:
		return "ESC"
	}
	return a.key
}

func (a *numpadAction) disappear() {}

func (a *numpadAction) keyDown() {
	s, ok := a.store.Get(a.device)
	if !ok {
		a.alert()
		return
	}

	var err error
	switch a.key {
	case KeyEnter:
		err = s.Commit(false)
	case KeySwap:
		err = s.Commit(true)
	case KeyBackspace:
		s.Backspace()
	case KeyCancel:
		s.Cancel()
	case KeyDisplay:
		return
	default:
		if len(a.key) == 1 {
			err = s.Press(a.key[0])
		}
	}
	if errors.Is(err, numpad.ErrOutOfRange) || errors.Is(err, numpad.ErrSessionClosed) {
		a.alert()
	}
	a.changed(a.device)
}

func (a *numpadAction) keyUp() {}

func (a *numpadAction) rotate(int) {}

func (a *numpadAction) refresh(sim.Values) {}

func (a *numpadAction) showEntry() {
	title := ""
	if s, ok := a.store.Get(a.device); ok {
		title = s.Kind() + "\n" + s.Display()
	}
	a.sender.SetTitle(a.context, title)
}
