package action

import (
	"sync"

	"flightdeck/pkg/radio"
	"flightdeck/pkg/sim"
)

type navcomSettings struct {
	Type string `json:"type"`
}

// navcomAction shows a radio's frequencies; a press opens the numpad to set the standby.
type navcomAction struct {
	base
	reg     Registry
	handler *radio.Handler
	openPad func(a *navcomAction)

	mu    sync.Mutex
	last  radio.Display
	shown bool
}

func newNavComAction(b base, reg Registry, cfg Config, s navcomSettings, openPad func(*navcomAction)) (*navcomAction, error) {
	h, err := radio.New(s.Type, reg)
	if err != nil {
		return nil, err
	}
	h.SetSwapDelay(cfg.SwapDelay)
	return &navcomAction{base: b, reg: reg, handler: h, openPad: openPad}, nil
}

func (a *navcomAction) appear(values sim.Values) {
	a.handler.RegisterEvents()
	a.reg.RegisterSimValues(a.handler.Variables()...)
	a.render(values, true)
}

func (a *navcomAction) disappear() {
	a.reg.DeRegisterSimValues(a.handler.Variables()...)
}

func (a *navcomAction) keyDown() {}

func (a *navcomAction) keyUp() {
	a.openPad(a)
}

func (a *navcomAction) rotate(int) {}

func (a *navcomAction) refresh(values sim.Values) {
	a.render(values, false)
}

func (a *navcomAction) render(values sim.Values, force bool) {
	d := a.handler.DisplayValues(values)

	a.mu.Lock()
	changed := force || !a.shown || d != a.last
	a.last = d
	a.shown = true
	a.mu.Unlock()

	if !changed {
		return
	}
	a.setActive(d.DependencyOn)
	title := d.Active
	if !d.StandbyAbsent {
		title = d.Active + "\n" + d.Standby
	}
	a.sender.SetTitle(a.context, title)
	if a.encoder {
		a.sender.SetFeedback(a.context, map[string]any{"active": d.Active, "standby": d.Standby})
	}
}
