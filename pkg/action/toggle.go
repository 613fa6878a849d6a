package action

import (
	"log/slog"
	"sync"
	"time"

	"flightdeck/pkg/logic"
	"flightdeck/pkg/sim"
)

type toggleSettings struct {
	Type string `json:"type"`
}

// toggleAction drives a preset logic: press toggles, hold syncs, the dial adjusts.
type toggleAction struct {
	base
	reg    Registry
	hold   time.Duration
	logic  logic.Logic
	value  logic.ValueLogic
	logger *slog.Logger

	mu        sync.Mutex
	timer     *time.Timer
	last      sim.Values
	lastTitle string
}

func newToggleAction(b base, reg Registry, cfg Config, s toggleSettings) (*toggleAction, error) {
	l, err := logic.New(s.Type, reg, logic.WithCacheExpiry(cfg.CacheExpiry))
	if err != nil {
		return nil, err
	}
	a := &toggleAction{
		base:   b,
		reg:    reg,
		hold:   cfg.HoldDuration,
		logic:  l,
		logger: slog.Default().With("component", "action", "type", l.Name()),
	}
	if v, ok := l.(logic.ValueLogic); ok {
		a.value = v
	}
	return a, nil
}

func (a *toggleAction) appear(values sim.Values) {
	for _, ev := range a.logic.Events() {
		a.reg.RegisterEvent(ev)
	}
	a.reg.RegisterSimValues(a.logic.Variables()...)
	a.render(values, true)
}

func (a *toggleAction) disappear() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	if a.value != nil {
		a.value.Stop()
	}
	a.reg.DeRegisterSimValues(a.logic.Variables()...)
}

func (a *toggleAction) keyDown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.hold, a.onHold)
}

func (a *toggleAction) onHold() {
	if a.value == nil {
		return
	}
	values := a.reg.Values()
	if !a.value.Sync(values) {
		a.alert()
		return
	}
	a.sender.ShowOk(a.context)
	a.render(values, false)
}

func (a *toggleAction) keyUp() {
	a.mu.Lock()
	short := a.timer != nil && a.timer.Stop()
	a.timer = nil
	a.mu.Unlock()

	if !short {
		return
	}
	if !a.logic.Toggle() {
		a.logger.Debug("Toggle not sent")
		a.alert()
	}
}

func (a *toggleAction) rotate(ticks int) {
	if a.value == nil {
		a.alert()
		return
	}
	sign, inc := splitTicks(ticks)
	if sign == 0 {
		return
	}
	values := a.reg.Values()
	if !a.value.ChangeValue(values, sign, inc) {
		a.alert()
		return
	}
	a.render(values, false)
}

func (a *toggleAction) refresh(values sim.Values) {
	a.render(values, false)
}

func (a *toggleAction) render(values sim.Values, force bool) {
	a.mu.Lock()
	changed := force || a.logic.IsChanged(a.last, values)
	title := ""
	if a.value != nil {
		title = a.value.Format(a.value.Value(values))
		changed = changed || title != a.lastTitle
	}
	a.last = values
	a.lastTitle = title
	a.mu.Unlock()

	if !changed {
		return
	}
	a.setActive(a.logic.Active(values))
	if a.value != nil {
		a.setTitle(title)
	}
}
