package logic

import (
	"fmt"
	"math"

	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

// qnhFactor converts pascals to the 1/16 millibar units KOHLSMAN_SET expects.
const qnhFactor = 0.16

// qnhStep is one half-millibar adjustment step in pascals.
const qnhStep = 50

// valued extends toggle with a numeric target that can be adjusted and synced.
type valued struct {
	*toggle
	value    simvar.Registration
	sync     simvar.Registration
	setEvent string

	calc     func(current float64, sign, increment int) float64
	snapshot func(live float64) float64
	encode   func(v float64) uint32
	format   func(v float64) string

	cache *valueCache
}

func (v *valued) Variables() []simvar.Registration {
	return []simvar.Registration{v.active, v.value, v.sync}
}

func (v *valued) Events() []string {
	return append(v.toggle.Events(), v.setEvent)
}

func (v *valued) Value(values sim.Values) float64 {
	if cached, ok := v.cache.get(); ok {
		return cached
	}
	return values[v.value]
}

func (v *valued) Format(value float64) string {
	return v.format(value)
}

func (v *valued) IsChanged(old, new sim.Values) bool {
	if v.toggle.IsChanged(old, new) {
		return true
	}
	return old[v.value] != new[v.value]
}

func (v *valued) ChangeValue(values sim.Values, sign, increment int) bool {
	sign = normalizeSign(sign)
	if sign == 0 {
		return false
	}
	if increment < 1 {
		increment = 1
	}
	return v.cache.update(
		func() (float64, bool) {
			live, ok := values[v.value]
			return math.Round(live), ok
		},
		func(cur float64) float64 { return v.calc(cur, sign, increment) },
		v.write,
	)
}

func (v *valued) Sync(values sim.Values) bool {
	live, ok := values[v.sync]
	if !ok {
		return false
	}
	target := v.snapshot(live)
	return v.cache.update(
		func() (float64, bool) { return target, true },
		func(float64) float64 { return target },
		v.write,
	)
}

func (v *valued) Stop() {
	v.cache.stop()
}

func (v *valued) write(value float64) bool {
	return v.events.Trigger(v.setEvent, v.encode(value))
}

func normalizeSign(sign int) int {
	switch {
	case sign > 0:
		return 1
	case sign < 0:
		return -1
	}
	return 0
}

// CalculateSphericalIncrement wraps a bearing adjustment into [0, 360).
func CalculateSphericalIncrement(current float64, sign, increment int) float64 {
	v := math.Mod(current+360+float64(sign*increment), 360)
	if v < 0 {
		v += 360
	}
	return v
}

// encodeInt sends the rounded value as a signed 32-bit payload.
func encodeInt(v float64) uint32 {
	return uint32(int32(math.Round(v)))
}

func formatBearing(v float64) string {
	return fmt.Sprintf("%03.0f", v)
}

func formatWhole(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func roundTo(step float64) func(float64) float64 {
	return func(v float64) float64 {
		return math.Round(v/step) * step
	}
}

func normalizeBearing(v float64) float64 {
	return CalculateSphericalIncrement(math.Round(v), 0, 0)
}

func newValued(name string, events Events, o options, active, value, sync simvar.Registration, toggleEvent, setEvent string) *valued {
	return &valued{
		toggle:   newToggle(name, events, active, toggleEvent),
		value:    value,
		sync:     sync,
		setEvent: setEvent,
		snapshot: func(v float64) float64 { return math.Round(v) },
		encode:   encodeInt,
		format:   formatWhole,
		cache:    newValueCache(o.cacheExpiry),
	}
}

func newHeading(events Events, o options) Logic {
	v := newValued("HDG", events, o,
		mustResolve("AUTOPILOT HEADING LOCK", ""),
		mustResolve("AUTOPILOT HEADING LOCK DIR", ""),
		mustResolve("PLANE HEADING DEGREES MAGNETIC", ""),
		"AP_HDG_HOLD", "HEADING_BUG_SET")
	v.calc = CalculateSphericalIncrement
	v.snapshot = normalizeBearing
	v.format = formatBearing
	return v
}

func newAltitude(events Events, o options) Logic {
	v := newValued("ALT", events, o,
		mustResolve("AUTOPILOT ALTITUDE LOCK", ""),
		mustResolve("AUTOPILOT ALTITUDE LOCK VAR", ""),
		mustResolve("INDICATED ALTITUDE", ""),
		"AP_ALT_HOLD", "AP_ALT_VAR_SET_ENGLISH")
	v.calc = func(cur float64, sign, increment int) float64 {
		return cur + float64(100*sign*increment)
	}
	v.snapshot = roundTo(100)
	return v
}

func newVerticalSpeed(events Events, o options) Logic {
	v := newValued("VS", events, o,
		mustResolve("AUTOPILOT VERTICAL HOLD", ""),
		mustResolve("AUTOPILOT VERTICAL HOLD VAR", ""),
		mustResolve("VERTICAL SPEED", ""),
		"AP_VS_HOLD", "AP_VS_VAR_SET_ENGLISH")
	// Single-step only: the increment multiplier is ignored on purpose.
	v.calc = func(cur float64, sign, _ int) float64 {
		return cur + float64(100*sign)
	}
	v.snapshot = roundTo(100)
	return v
}

func newAirspeed(events Events, o options) Logic {
	v := newValued("FLC", events, o,
		mustResolve("AUTOPILOT FLIGHT LEVEL CHANGE", ""),
		mustResolve("AUTOPILOT AIRSPEED HOLD VAR", ""),
		mustResolve("AIRSPEED INDICATED", ""),
		"FLIGHT_LEVEL_CHANGE", "AP_SPD_VAR_SET")
	v.calc = func(cur float64, sign, increment int) float64 {
		return math.Max(0, cur+float64(increment*sign))
	}
	return v
}

func newVOR(index int, events Events, o options) Logic {
	v := newValued(fmt.Sprintf("VOR%d", index), events, o,
		mustResolve(fmt.Sprintf("NAV HAS NAV:%d", index), ""),
		mustResolve(fmt.Sprintf("NAV OBS:%d", index), ""),
		mustResolve(fmt.Sprintf("NAV RADIAL:%d", index), ""),
		"", fmt.Sprintf("VOR%d_SET", index))
	v.calc = CalculateSphericalIncrement
	// The radial is FROM the station; syncing centres the needle on the course TO it.
	v.snapshot = func(radial float64) float64 {
		return normalizeBearing(radial + 180)
	}
	v.format = formatBearing
	return v
}

func newADF(events Events, o options) Logic {
	v := newValued("ADF", events, o,
		mustResolve("ADF SIGNAL:1", ""),
		mustResolve("ADF CARD", ""),
		mustResolve("PLANE HEADING DEGREES MAGNETIC", ""),
		"", "ADF_CARD_SET")
	v.calc = CalculateSphericalIncrement
	v.snapshot = normalizeBearing
	v.format = formatBearing
	return v
}

func newQNH(events Events, o options) Logic {
	v := newValued("QNH", events, o,
		mustResolve("KOHLSMAN SETTING STD:1", ""),
		mustResolve("KOHLSMAN SETTING MB:1", "pascals"),
		mustResolve("SEA LEVEL PRESSURE", "pascals"),
		"BAROMETRIC_STD_PRESSURE", "KOHLSMAN_SET")
	v.calc = func(cur float64, sign, increment int) float64 {
		return cur + float64(qnhStep*sign*increment)
	}
	v.snapshot = roundTo(qnhStep)
	v.encode = func(pa float64) uint32 {
		return uint32(math.Round(pa * qnhFactor))
	}
	v.format = func(pa float64) string {
		return fmt.Sprintf("%.1f", pa/100)
	}
	return v
}
