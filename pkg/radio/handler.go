// Package radio formats and sets NAV, COM, ADF and transponder frequencies.
package radio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

var (
	// ErrRejected is returned when the simulator did not accept the set event.
	ErrRejected = errors.New("radio event rejected")
	// ErrInvalidValue is returned for input that cannot be encoded.
	ErrInvalidValue = errors.New("invalid radio value")
	// ErrOutOfRange is returned when a value falls outside min/max patterns.
	ErrOutOfRange = errors.New("radio value out of range")
)

// DefaultSwapDelay gives the simulator time to apply a standby set before the swap.
const DefaultSwapDelay = 500 * time.Millisecond

// Events is the subset of the registry a handler needs.
type Events interface {
	RegisterEvent(name string) (sim.EventID, bool, bool)
	Trigger(name string, value uint32) bool
}

// Params describe one radio.
type Params struct {
	Active   simvar.Registration
	Standby  *simvar.Registration
	Battery  *simvar.Registration
	Avionics *simvar.Registration

	ToggleEvent string
	SetEvent    string

	// MinPattern and MaxPattern are digit strings bounding valid input; Mask
	// places those digits for display, with 'x' marking a digit slot.
	MinPattern string
	MaxPattern string
	Mask       string
	// SkipRangeCheck lets numeric entry commit values outside the patterns.
	SkipRangeCheck bool
}

// Display is what a radio action shows.
type Display struct {
	Active        string
	Standby       string
	StandbyAbsent bool
	DependencyOn  bool
}

// Handler implements the shared display/set protocol on top of a format-specific encoder.
type Handler struct {
	kind      string
	params    Params
	encode    Encoder
	format    func(float64) string
	events    Events
	swapDelay time.Duration
	logger    *slog.Logger
}

// NewHandler builds a handler from explicit parameters.
func NewHandler(kind string, p Params, encode Encoder, format func(float64) string, events Events) *Handler {
	return &Handler{
		kind:      kind,
		params:    p,
		encode:    encode,
		format:    format,
		events:    events,
		swapDelay: DefaultSwapDelay,
		logger:    slog.Default().With("component", "radio", "radio", kind),
	}
}

// SetSwapDelay overrides DefaultSwapDelay.
func (h *Handler) SetSwapDelay(d time.Duration) {
	h.swapDelay = d
}

// Kind returns the radio type key (e.g. "NAV1").
func (h *Handler) Kind() string { return h.kind }

// Params returns the handler's parameters.
func (h *Handler) Params() Params { return h.params }

// Variables returns every registration the handler displays or depends on.
func (h *Handler) Variables() []simvar.Registration {
	regs := []simvar.Registration{h.params.Active}
	for _, r := range []*simvar.Registration{h.params.Standby, h.params.Battery, h.params.Avionics} {
		if r != nil {
			regs = append(regs, *r)
		}
	}
	return regs
}

// Events returns the events the handler fires.
func (h *Handler) Events() []string {
	var out []string
	for _, e := range []string{h.params.SetEvent, h.params.ToggleEvent} {
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// RegisterEvents binds the handler's events.
func (h *Handler) RegisterEvents() {
	for _, e := range h.Events() {
		h.events.RegisterEvent(e)
	}
}

// DisplayValues renders active/standby text. Both are blank while a dependency is off.
func (h *Handler) DisplayValues(values sim.Values) Display {
	d := Display{
		StandbyAbsent: h.params.Standby == nil,
		DependencyOn:  h.dependencyOn(values),
	}
	if !d.DependencyOn {
		return d
	}
	if v, ok := values[h.params.Active]; ok {
		d.Active = h.format(v)
	}
	if h.params.Standby != nil {
		if v, ok := values[*h.params.Standby]; ok {
			d.Standby = h.format(v)
		}
	}
	return d
}

func (h *Handler) dependencyOn(values sim.Values) bool {
	for _, dep := range []*simvar.Registration{h.params.Battery, h.params.Avionics} {
		if dep != nil && values[*dep] == 0 {
			return false
		}
	}
	return true
}

// Pad right-pads digits with zeros to the minimum pattern length.
func (h *Handler) Pad(digits string) string {
	return padRight(strings.TrimSpace(digits), len(h.params.MinPattern))
}

// InRange reports whether padded digits lie within the min/max patterns.
func (h *Handler) InRange(digits string) bool {
	digits = h.Pad(digits)
	if !isDigits(digits) || len(digits) != len(h.params.MaxPattern) {
		return false
	}
	// Equal-length digit strings compare numerically.
	return digits >= h.params.MinPattern && digits <= h.params.MaxPattern
}

// Trigger pads and encodes the value, fires the set event and, if swap is
// requested and a toggle event exists, fires it after the swap delay.
// It blocks for the delay; callers run it on their own goroutine.
func (h *Handler) Trigger(ctx context.Context, digits string, swap bool) error {
	padded := h.Pad(digits)
	payload, ok := h.encode(padded)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidValue, digits)
	}
	if !h.events.Trigger(h.params.SetEvent, payload) {
		return fmt.Errorf("%w: %s", ErrRejected, h.params.SetEvent)
	}
	h.logger.Debug("Radio set", "value", padded, "payload", fmt.Sprintf("0x%08X", payload))

	if !swap || h.params.ToggleEvent == "" {
		return nil
	}

	timer := time.NewTimer(h.swapDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	if !h.events.Trigger(h.params.ToggleEvent, 0) {
		return fmt.Errorf("%w: %s", ErrRejected, h.params.ToggleEvent)
	}
	return nil
}

// FormatMask renders typed digits into the mask, filling untyped slots with fill.
func (h *Handler) FormatMask(digits string, fill byte) string {
	var b strings.Builder
	i := 0
	for j := 0; j < len(h.params.Mask); j++ {
		c := h.params.Mask[j]
		if c != 'x' {
			b.WriteByte(c)
			continue
		}
		if i < len(digits) {
			b.WriteByte(digits[i])
			i++
		} else {
			b.WriteByte(fill)
		}
	}
	return b.String()
}
