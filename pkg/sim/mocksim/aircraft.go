package mocksim

import (
	"math"
	"strings"

	"flightdeck/pkg/simvar"
)

// aircraft holds model variables keyed by canonical name, in the catalog's default unit.
type aircraft map[string]float64

func newAircraft(cfg Config) aircraft {
	hdg := normalizeDegrees(cfg.StartHeading)
	return aircraft{
		"PLANE HEADING DEGREES MAGNETIC": hdg,
		"AUTOPILOT HEADING LOCK DIR":     hdg,
		"INDICATED ALTITUDE":             cfg.StartAltitude,
		"PLANE ALTITUDE":                 cfg.StartAltitude,
		"AUTOPILOT ALTITUDE LOCK VAR":    math.Round(cfg.StartAltitude/100) * 100,
		"AIRSPEED INDICATED":             cfg.StartAirspeed,
		"AUTOPILOT AIRSPEED HOLD VAR":    cfg.StartAirspeed,
		"KOHLSMAN SETTING MB:1":          1013.25,
		"SEA LEVEL PRESSURE":             1013.25,
		"ELECTRICAL MASTER BATTERY":      1,
		"AVIONICS MASTER SWITCH":         1,
		"NAV ACTIVE FREQUENCY:1":         110.50,
		"NAV STANDBY FREQUENCY:1":        113.90,
		"NAV ACTIVE FREQUENCY:2":         111.70,
		"NAV STANDBY FREQUENCY:2":        108.00,
		"NAV HAS NAV:1":                  1,
		"NAV RADIAL:1":                   90,
		"COM ACTIVE FREQUENCY:1":         122.800,
		"COM STANDBY FREQUENCY:1":        121.500,
		"COM ACTIVE FREQUENCY:2":         118.000,
		"COM STANDBY FREQUENCY:2":        124.350,
		"ADF ACTIVE FREQUENCY:1":         350,
		"ADF STANDBY FREQUENCY:1":        890,
		"TRANSPONDER CODE:1":             1200,
		"GENERAL ENG OIL PRESSURE:1":     0,
		"SIMULATION RATE":                1,
	}
}

func (a aircraft) get(name string) float64 { return a[name] }

func (a aircraft) set(name string, v float64) { a[name] = v }

func (a aircraft) toggle(name string) {
	if a[name] != 0 {
		a[name] = 0
		return
	}
	a[name] = 1
}

func (a aircraft) on(name string) bool { return a[name] != 0 }

// read returns a variable converted to the registration's unit.
// Names the model does not track read as zero when the catalog knows them.
func (a aircraft) read(r simvar.Registration) (float64, bool) {
	v, ok := a[r.Name]
	if !ok && !r.Forwardable() {
		return 0, false
	}
	native, _ := simvar.Lookup(r.Name)
	return convert(v, native, r.Unit), true
}

// update advances the autopilot model by dt seconds.
func (a aircraft) update(dt float64) {
	if dt <= 0 {
		return
	}
	if a.on("AUTOPILOT MASTER") && a.on("AUTOPILOT HEADING LOCK") {
		cur := a.get("PLANE HEADING DEGREES MAGNETIC")
		target := a.get("AUTOPILOT HEADING LOCK DIR")
		diff := math.Remainder(target-cur, 360)
		step := 3 * dt // standard rate turn
		if math.Abs(diff) <= step {
			cur = target
		} else {
			cur += math.Copysign(step, diff)
		}
		a.set("PLANE HEADING DEGREES MAGNETIC", normalizeDegrees(cur))
	}

	vs := 0.0
	if a.on("AUTOPILOT MASTER") {
		switch {
		case a.on("AUTOPILOT VERTICAL HOLD"):
			vs = a.get("AUTOPILOT VERTICAL HOLD VAR")
		case a.on("AUTOPILOT ALTITUDE LOCK"):
			diff := a.get("AUTOPILOT ALTITUDE LOCK VAR") - a.get("INDICATED ALTITUDE")
			vs = math.Max(-1000, math.Min(1000, diff*60))
		}
	}
	alt := a.get("INDICATED ALTITUDE") + vs*dt/60
	a.set("VERTICAL SPEED", vs)
	a.set("INDICATED ALTITUDE", alt)
	a.set("PLANE ALTITUDE", alt)

	if a.on("AUTOPILOT MASTER") && a.on("AUTOPILOT FLIGHT LEVEL CHANGE") {
		a.set("AIRSPEED INDICATED", a.get("AUTOPILOT AIRSPEED HOLD VAR"))
	}
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// convert translates between the handful of units the model publishes.
func convert(v float64, from, to string) float64 {
	from, to = strings.ToLower(from), strings.ToLower(to)
	if from == to || from == "" || to == "" {
		return v
	}
	if f, ok := unitScale[from]; ok {
		if t, ok := unitScale[to]; ok && f.dimension == t.dimension {
			return v * f.factor / t.factor
		}
	}
	if from == "degrees" && to == "radians" {
		return v * math.Pi / 180
	}
	return v
}

type scale struct {
	dimension string
	factor    float64
}

var unitScale = map[string]scale{
	"hz":          {"frequency", 1},
	"khz":         {"frequency", 1e3},
	"mhz":         {"frequency", 1e6},
	"pascals":     {"pressure", 1},
	"millibars":   {"pressure", 100},
	"mbar":        {"pressure", 100},
	"inhg":        {"pressure", 3386.389},
	"feet":        {"length", 0.3048},
	"meters":      {"length", 1},
	"knots":       {"speed", 0.514444},
	"feet/minute": {"speed", 0.00508},
	"m/s":         {"speed", 1},
}
