// Package mocksim implements a simulator transport without a simulator. It
// keeps a small aircraft model that reacts to the usual autopilot, radio and
// switch events, and publishes subscribed variables on every tick.
package mocksim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"flightdeck/pkg/logging"
	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

// ErrUnknownEvent is returned by Trigger for an event the model does not know.
var ErrUnknownEvent = errors.New("mocksim: unknown event")

const defaultTickRate = 100 * time.Millisecond

// Config holds the initial aircraft state and timing of the mock simulation.
type Config struct {
	TickRate      time.Duration
	StartHeading  float64
	StartAltitude float64
	StartAirspeed float64
}

type binding struct {
	name  string
	apply eventFunc
}

// MockClient implements sim.Transport.
type MockClient struct {
	mu       sync.Mutex
	config   Config
	ac       aircraft
	listener sim.Listener
	state    sim.State

	events     map[sim.EventID]binding
	nextSendID uint32
	rejected   []uint32

	subs      *sim.Subscriptions
	published sim.Values

	stopCh    chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewClient creates a mock simulator. The physics loop starts with Start.
func NewClient(cfg Config) *MockClient {
	if cfg.TickRate <= 0 {
		cfg.TickRate = defaultTickRate
	}
	return &MockClient{
		config:    cfg,
		ac:        newAircraft(cfg),
		state:     sim.StateDisconnected,
		events:    make(map[sim.EventID]binding),
		subs:      sim.NewSubscriptions(),
		published: make(sim.Values),
		stopCh:    make(chan struct{}),
	}
}

// Start runs the physics loop and reports the connection to the listener.
func (m *MockClient) Start() {
	m.startOnce.Do(func() {
		m.mu.Lock()
		m.state = sim.StateConnected
		m.mu.Unlock()

		m.wg.Add(1)
		go m.physicsLoop()
	})
}

// SetListener installs the receiver of asynchronous notifications.
func (m *MockClient) SetListener(l sim.Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = l
}

// GetState returns the connection state.
func (m *MockClient) GetState() sim.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RegisterToggleEvent binds id to name. Unknown names are accepted here and
// rejected on the next tick, the way the simulator reports them.
func (m *MockClient) RegisterToggleEvent(id sim.EventID, name string) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != sim.StateConnected {
		return 0, false
	}
	m.nextSendID++
	sendID := m.nextSendID

	apply, known := eventTable[name]
	if !known {
		delete(m.events, id)
		m.rejected = append(m.rejected, sendID)
		return sendID, true
	}
	m.events[id] = binding{name: name, apply: apply}
	return sendID, true
}

// Trigger applies a bound event to the aircraft model.
func (m *MockClient) Trigger(id sim.EventID, value uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != sim.StateConnected {
		return sim.ErrNotConnected
	}
	b, ok := m.events[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrUnknownEvent, id)
	}
	logging.TraceDefault("Mock event", "event", b.name, "value", value)
	b.apply(m.ac, value)
	return nil
}

// RegisterSimValues subscribes variables for periodic publication.
func (m *MockClient) RegisterSimValues(regs ...simvar.Registration) {
	m.subs.Add(regs...)
}

// DeRegisterSimValues releases subscriptions.
func (m *MockClient) DeRegisterSimValues(regs ...simvar.Registration) {
	removed := m.subs.Remove(regs...)
	if len(removed) == 0 {
		return
	}
	m.mu.Lock()
	for _, r := range removed {
		delete(m.published, r)
	}
	m.mu.Unlock()
}

// Value reads a model variable in the requested unit.
func (m *MockClient) Value(reg simvar.Registration) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ac.read(reg)
}

// Close stops the physics loop.
func (m *MockClient) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()

		m.mu.Lock()
		wasConnected := m.state == sim.StateConnected
		m.state = sim.StateDisconnected
		l := m.listener
		m.mu.Unlock()

		if wasConnected && l != nil {
			l.Disconnected()
		}
	})
	return nil
}

func (m *MockClient) physicsLoop() {
	defer m.wg.Done()

	m.mu.Lock()
	l := m.listener
	m.mu.Unlock()
	if l != nil {
		l.Connected()
	}

	ticker := time.NewTicker(m.config.TickRate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-m.stopCh:
			return
		case now := <-ticker.C:
			m.tick(now.Sub(last).Seconds())
			last = now
		}
	}
}

// tick advances the model and delivers notifications outside the lock.
func (m *MockClient) tick(dt float64) {
	regs := m.subs.All()

	m.mu.Lock()
	m.ac.update(dt)
	rejected := m.rejected
	m.rejected = nil
	changed := make(sim.Values)
	for _, r := range regs {
		v, ok := m.ac.read(r)
		if !ok {
			continue
		}
		if prev, seen := m.published[r]; seen && prev == v {
			continue
		}
		m.published[r] = v
		changed[r] = v
	}
	l := m.listener
	m.mu.Unlock()

	if l == nil {
		return
	}
	for _, id := range rejected {
		l.InvalidEventRegistered(id)
	}
	if len(changed) > 0 {
		l.GenericValuesUpdated(changed)
	}
}
