package action

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"flightdeck/pkg/expr"
	"flightdeck/pkg/registry"
	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

type genericSettings struct {
	ToggleEvent   string `json:"toggle_event"`
	ToggleValue   string `json:"toggle_value"`
	Feedback      string `json:"feedback"`
	Display       string `json:"display"`
	DisplayFormat string `json:"display_format"`
}

// genericAction fires a configured event and shows an expression and a variable.
type genericAction struct {
	base
	reg      Registry
	event    string
	payload  uint32
	feedback *expr.Expression
	display  simvar.Registration
	format   string
	vars     []simvar.Registration

	mu          sync.Mutex
	lastActive  bool
	lastTitle   string
	initialized bool
}

func newGenericAction(b base, reg Registry, parser *expr.Parser, s genericSettings) *genericAction {
	a := &genericAction{
		base:   b,
		reg:    reg,
		event:  registry.NormalizeEventName(s.ToggleEvent),
		format: s.DisplayFormat,
	}
	if a.format == "" {
		a.format = "%.0f"
	}
	if v := strings.TrimSpace(s.ToggleValue); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			// Leave the event unbound; presses alert instead of sending 0.
			slog.Warn("Invalid event value, event disabled", "event", a.event, "value", v, "error", err)
			a.event = ""
		}
		a.payload = uint32(int32(n))
	}
	if s.Feedback != "" {
		deps, e := parser.Parse(s.Feedback)
		a.feedback = e
		a.vars = append(a.vars, deps...)
	}
	if r, ok := simvar.ResolveSetting(s.Display); ok {
		a.display = r
		a.vars = append(a.vars, r)
	}
	return a
}

func (a *genericAction) appear(values sim.Values) {
	if a.event != "" {
		a.reg.RegisterEvent(a.event)
	}
	a.reg.RegisterSimValues(a.vars...)
	a.render(values, true)
}

func (a *genericAction) disappear() {
	a.reg.DeRegisterSimValues(a.vars...)
}

func (a *genericAction) keyDown() {}

func (a *genericAction) keyUp() {
	if a.event == "" || !a.reg.Trigger(a.event, a.payload) {
		a.alert()
	}
}

func (a *genericAction) rotate(int) {}

func (a *genericAction) refresh(values sim.Values) {
	a.render(values, false)
}

func (a *genericAction) render(values sim.Values, force bool) {
	active := a.feedback.Evaluate(values)
	title := ""
	if !a.display.IsZero() {
		if v, ok := values[a.display]; ok {
			title = fmt.Sprintf(a.format, v)
		}
	}

	a.mu.Lock()
	changed := force || !a.initialized || active != a.lastActive || title != a.lastTitle
	a.initialized = true
	a.lastActive = active
	a.lastTitle = title
	a.mu.Unlock()

	if !changed {
		return
	}
	a.setActive(active)
	if !a.display.IsZero() {
		a.setTitle(title)
	}
}
