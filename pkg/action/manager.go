package action

import (
	"context"
	"log/slog"
	"sync"

	"flightdeck/pkg/deck"
	"flightdeck/pkg/expr"
	"flightdeck/pkg/numpad"
	"flightdeck/pkg/sim"
)

// Manager owns the placed actions and implements deck.Handler.
type Manager struct {
	reg     Registry
	parser  *expr.Parser
	numpads *numpad.Store
	sender  deck.Sender
	cfg     Config
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.RWMutex
	actions     map[string]instance
	unsubscribe func()
}

// NewManager creates a manager and subscribes it to telemetry pushes.
func NewManager(reg Registry, parser *expr.Parser, sender deck.Sender, cfg Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		reg:     reg,
		parser:  parser,
		numpads: numpad.NewStore(),
		sender:  sender,
		cfg:     cfg,
		logger:  slog.Default().With("component", "actions"),
		ctx:     ctx,
		cancel:  cancel,
		actions: make(map[string]instance),
	}
	m.unsubscribe = reg.Subscribe(m.onValues)
	return m
}

// Close releases every action and waits for pending radio writes.
func (m *Manager) Close() {
	m.unsubscribe()
	m.cancel()

	m.mu.Lock()
	actions := m.actions
	m.actions = make(map[string]instance)
	m.mu.Unlock()
	for _, a := range actions {
		a.disappear()
	}
	m.wg.Wait()
}

// Count returns the number of placed actions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.actions)
}

func (m *Manager) build(ev deck.Event) (instance, error) {
	b := newBase(ev, m.sender)
	switch ev.Action {
	case UUIDToggle:
		var s toggleSettings
		if err := ev.DecodeSettings(&s); err != nil {
			return nil, err
		}
		return newToggleAction(b, m.reg, m.cfg, s)
	case UUIDGeneric:
		var s genericSettings
		if err := ev.DecodeSettings(&s); err != nil {
			return nil, err
		}
		return newGenericAction(b, m.reg, m.parser, s), nil
	case UUIDNavCom:
		var s navcomSettings
		if err := ev.DecodeSettings(&s); err != nil {
			return nil, err
		}
		return newNavComAction(b, m.reg, m.cfg, s, m.openNumpad)
	case UUIDNumpad:
		var s numpadSettings
		if err := ev.DecodeSettings(&s); err != nil {
			return nil, err
		}
		return &numpadAction{base: b, key: s.Key, store: m.numpads, changed: m.refreshNumpad}, nil
	}
	return nil, errUnknownAction(ev.Action)
}

// WillAppear creates the action for a newly shown key.
func (m *Manager) WillAppear(ev deck.Event) {
	m.place(ev)
}

// DidReceiveSettings rebuilds the action with its new settings.
func (m *Manager) DidReceiveSettings(ev deck.Event) {
	m.place(ev)
}

func (m *Manager) place(ev deck.Event) {
	a, err := m.build(ev)

	m.mu.Lock()
	old := m.actions[ev.Context]
	if err == nil {
		m.actions[ev.Context] = a
	} else {
		delete(m.actions, ev.Context)
	}
	m.mu.Unlock()

	if old != nil {
		old.disappear()
	}
	if err != nil {
		m.logger.Warn("Cannot create action", "action", ev.Action, "context", ev.Context, "error", err)
		m.sender.ShowAlert(ev.Context)
		return
	}
	a.appear(m.reg.Values())
}

// WillDisappear releases the action's registrations.
func (m *Manager) WillDisappear(ev deck.Event) {
	m.mu.Lock()
	a := m.actions[ev.Context]
	delete(m.actions, ev.Context)
	m.mu.Unlock()
	if a != nil {
		a.disappear()
	}
}

func (m *Manager) lookup(ev deck.Event) instance {
	m.mu.RLock()
	a := m.actions[ev.Context]
	m.mu.RUnlock()
	if a == nil {
		m.sender.ShowAlert(ev.Context)
	}
	return a
}

// KeyDown forwards a press.
func (m *Manager) KeyDown(ev deck.Event) {
	if a := m.lookup(ev); a != nil {
		a.keyDown()
	}
}

// KeyUp forwards a release.
func (m *Manager) KeyUp(ev deck.Event) {
	if a := m.lookup(ev); a != nil {
		a.keyUp()
	}
}

// DialRotate forwards dial ticks.
func (m *Manager) DialRotate(ev deck.Event) {
	if a := m.lookup(ev); a != nil {
		a.rotate(ev.Payload.Ticks)
	}
}

func (m *Manager) onValues(values sim.Values) {
	m.mu.RLock()
	actions := make([]instance, 0, len(m.actions))
	for _, a := range m.actions {
		actions = append(actions, a)
	}
	m.mu.RUnlock()

	for _, a := range actions {
		a.refresh(values)
	}
}

// openNumpad starts an entry for the radio and shows the numpad profile.
func (m *Manager) openNumpad(a *navcomAction) {
	h := a.handler
	p := h.Params()
	s := m.numpads.Start(a.device, numpad.Config{
		Kind:           h.Kind(),
		MaxDigits:      len(p.MinPattern),
		Validate:       h.InRange,
		SkipRangeCheck: p.SkipRangeCheck,
		Format:         func(d string) string { return h.FormatMask(d, '_') },
	})
	m.logger.Debug("Numpad entry started", "session", s.ID(), "radio", s.Kind(), "device", a.device)
	m.sender.SwitchToProfile(a.device, m.cfg.NumpadProfile)
	m.refreshNumpad(a.device)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.awaitNumpad(a, s)
	}()
}

func (m *Manager) awaitNumpad(a *navcomAction, s *numpad.Session) {
	res, err := s.Wait(m.ctx)

	if m.numpads.End(a.device, s.ID()) {
		m.sender.SwitchToProfile(a.device, "")
	}
	if err != nil {
		m.logger.Debug("Numpad entry ended", "session", s.ID(), "radio", s.Kind(), "error", err)
		return
	}

	m.logger.Debug("Numpad entry committed", "session", s.ID(), "radio", s.Kind(), "digits", res.Digits, "swap", res.Swap)
	if err := a.handler.Trigger(m.ctx, res.Digits, res.Swap); err != nil {
		m.logger.Warn("Radio set failed", "session", s.ID(), "radio", s.Kind(), "digits", res.Digits, "error", err)
		a.alert()
		return
	}
	a.sender.ShowOk(a.context)
}

// refreshNumpad redraws the entry display keys on device.
func (m *Manager) refreshNumpad(device string) {
	m.mu.RLock()
	var displays []*numpadAction
	for _, a := range m.actions {
		if n, ok := a.(*numpadAction); ok && n.device == device && n.key == KeyDisplay {
			displays = append(displays, n)
		}
	}
	m.mu.RUnlock()

	for _, d := range displays {
		d.showEntry()
	}
}
