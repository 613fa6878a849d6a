// Package registry shares simulator events and variable subscriptions between
// all active deck actions.
//
// Event names are assigned a client event ID on first registration. The ID is
// permanent for the process lifetime; only the validity flag changes when the
// simulator rejects a registration or a reconnect re-registers it.
package registry

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"flightdeck/pkg/logging"
	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

// customEventPrefix is the enum-safe spelling of a MobiFlight event prefix.
const customEventPrefix = "MobiFlight_"

type eventEntry struct {
	id     sim.EventID
	name   string
	valid  bool
	sendID uint32
}

// Registry de-duplicates event registrations and fans out variable telemetry.
// It implements sim.Listener.
type Registry struct {
	transport sim.Transport
	logger    *slog.Logger

	mu       sync.Mutex
	events   map[string]*eventEntry
	bySendID map[uint32]string
	nextID   sim.EventID

	subs *sim.Subscriptions

	subMu     sync.RWMutex
	listeners map[int]func(sim.Values)
	nextSub   int
	latest    sim.Values
}

// New creates a registry on top of a transport and installs itself as the
// transport's listener.
func New(transport sim.Transport) *Registry {
	r := &Registry{
		transport: transport,
		logger:    slog.Default().With("component", "registry"),
		events:    make(map[string]*eventEntry),
		bySendID:  make(map[uint32]string),
		subs:      sim.NewSubscriptions(),
		listeners: make(map[int]func(sim.Values)),
		latest:    make(sim.Values),
	}
	transport.SetListener(r)
	return r
}

// NormalizeEventName trims the name, reverses the "__" index encoding and maps
// the enum-safe custom module prefix to its dotted form.
func NormalizeEventName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, customEventPrefix) {
		return simvar.CustomPrefix + strings.TrimPrefix(name, customEventPrefix)
	}
	return strings.ReplaceAll(name, "__", ":")
}

// RegisterEvent makes sure the named event is bound on the simulator side.
// It returns the permanent ID and the current validity, or ok=false for blank names.
// A failed registration keeps its ID and is retried on the next call.
func (r *Registry) RegisterEvent(name string) (id sim.EventID, valid, ok bool) {
	key := NormalizeEventName(name)
	if key == "" {
		return 0, false, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.events[key]
	if exists && entry.valid {
		return entry.id, true, true
	}
	if !exists {
		r.nextID++
		entry = &eventEntry{id: r.nextID, name: key}
		r.events[key] = entry
	}
	r.registerLocked(entry)
	return entry.id, entry.valid, true
}

// registerLocked issues the transport registration for entry and records the outcome.
func (r *Registry) registerLocked(entry *eventEntry) {
	sendID, ok := r.transport.RegisterToggleEvent(entry.id, entry.name)
	if entry.sendID != 0 {
		delete(r.bySendID, entry.sendID)
		entry.sendID = 0
	}
	entry.valid = ok
	if !ok {
		r.logger.Warn("Event registration failed", "event", entry.name, "id", entry.id)
		return
	}
	entry.sendID = sendID
	r.bySendID[sendID] = entry.name
	r.logger.Debug("Event registered", "event", entry.name, "id", entry.id, "sendID", sendID)
}

// ReInitializeEvents re-binds every known event with its original ID.
func (r *Registry) ReInitializeEvents() {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*eventEntry, 0, len(r.events))
	for _, e := range r.events {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	for _, e := range entries {
		r.registerLocked(e)
	}
	r.logger.Info("Events re-initialized", "count", len(entries))
}

// Trigger fires a registered, valid event. It returns false without side
// effects for blank, unknown or invalid names.
func (r *Registry) Trigger(name string, value uint32) bool {
	key := NormalizeEventName(name)
	if key == "" {
		return false
	}

	r.mu.Lock()
	entry, ok := r.events[key]
	if !ok || !entry.valid {
		r.mu.Unlock()
		return false
	}
	id := entry.id
	r.mu.Unlock()

	if err := r.transport.Trigger(id, value); err != nil {
		r.logger.Warn("Event trigger failed", "event", key, "error", err)
		return false
	}
	return true
}

// IsValid reports whether the event is registered and accepted by the simulator.
func (r *Registry) IsValid(name string) bool {
	key := NormalizeEventName(name)
	if key == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.events[key]
	return ok && entry.valid
}

// EventID returns the assigned ID for a registered event.
func (r *Registry) EventID(name string) (sim.EventID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.events[NormalizeEventName(name)]
	if !ok {
		return 0, false
	}
	return entry.id, true
}

// RegisterSimValues subscribes variables on the transport. Registrations that
// are neither catalog variables nor L: variables are rejected.
func (r *Registry) RegisterSimValues(regs ...simvar.Registration) {
	if accepted := r.filter(regs); len(accepted) > 0 {
		r.subs.Add(accepted...)
		r.transport.RegisterSimValues(accepted...)
	}
}

// DeRegisterSimValues releases variables registered with RegisterSimValues.
// A variable whose last holder lets go disappears from Values.
func (r *Registry) DeRegisterSimValues(regs ...simvar.Registration) {
	accepted := r.filter(regs)
	if len(accepted) == 0 {
		return
	}
	if dropped := r.subs.Remove(accepted...); len(dropped) > 0 {
		r.subMu.Lock()
		for _, reg := range dropped {
			delete(r.latest, reg)
		}
		r.subMu.Unlock()
	}
	r.transport.DeRegisterSimValues(accepted...)
}

func (r *Registry) filter(regs []simvar.Registration) []simvar.Registration {
	accepted := make([]simvar.Registration, 0, len(regs))
	for _, reg := range regs {
		if reg.IsZero() {
			continue
		}
		if !reg.Forwardable() {
			r.logger.Warn("Rejected unknown simulator variable", "variable", reg.String())
			continue
		}
		accepted = append(accepted, reg)
	}
	return accepted
}

// Subscribe registers fn for every telemetry push and returns a cancel func.
func (r *Registry) Subscribe(fn func(sim.Values)) func() {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.listeners[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.listeners, id)
		r.subMu.Unlock()
	}
}

// Values returns a copy of the latest telemetry.
func (r *Registry) Values() sim.Values {
	r.subMu.RLock()
	defer r.subMu.RUnlock()
	return r.latest.Clone()
}

// Connected re-binds all events after a simulator (re)connect.
func (r *Registry) Connected() {
	r.ReInitializeEvents()
}

// Disconnected drops the cached telemetry.
func (r *Registry) Disconnected() {
	r.subMu.Lock()
	r.latest = make(sim.Values)
	r.subMu.Unlock()
}

// InvalidEventRegistered clears the validity of the event sent with sendID.
// The entry and its ID are kept so a later RegisterEvent can retry.
func (r *Registry) InvalidEventRegistered(sendID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.bySendID[sendID]
	if !ok {
		return
	}
	delete(r.bySendID, sendID)
	if entry, ok := r.events[name]; ok {
		entry.valid = false
		entry.sendID = 0
		r.logger.Warn("Simulator rejected event", "event", name, "id", entry.id)
	}
}

// GenericValuesUpdated merges the push into the latest values and notifies
// subscribers. Values of variables nobody holds are dropped. All subscribers
// share one snapshot and must not modify it.
func (r *Registry) GenericValuesUpdated(values sim.Values) {
	r.subMu.Lock()
	for k, v := range values {
		if r.subs.Count(k) > 0 {
			r.latest[k] = v
		}
	}
	snapshot := r.latest.Clone()
	fns := make([]func(sim.Values), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()

	logging.Trace(r.logger, "Values updated", "changed", len(values), "subscribers", len(fns))
	for _, fn := range fns {
		fn(snapshot)
	}
}
