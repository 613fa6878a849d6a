package simvar

import (
	"strconv"
	"strings"
)

type catalogEntry struct {
	name string
	unit string
}

// catalog maps canonical variable names (without a ":N" index) to their default unit.
var catalog = map[string]string{
	// Autopilot
	"AUTOPILOT MASTER":                  "bool",
	"AUTOPILOT AVAILABLE":               "bool",
	"AUTOPILOT FLIGHT DIRECTOR ACTIVE":  "bool",
	"AUTOPILOT YAW DAMPER":              "bool",
	"AUTOPILOT HEADING LOCK":            "bool",
	"AUTOPILOT HEADING LOCK DIR":        "degrees",
	"AUTOPILOT ALTITUDE LOCK":           "bool",
	"AUTOPILOT ALTITUDE LOCK VAR":       "feet",
	"AUTOPILOT VERTICAL HOLD":           "bool",
	"AUTOPILOT VERTICAL HOLD VAR":       "feet/minute",
	"AUTOPILOT FLIGHT LEVEL CHANGE":     "bool",
	"AUTOPILOT AIRSPEED HOLD":           "bool",
	"AUTOPILOT AIRSPEED HOLD VAR":       "knots",
	"AUTOPILOT NAV1 LOCK":               "bool",
	"AUTOPILOT APPROACH HOLD":           "bool",
	"AUTOPILOT BACKCOURSE HOLD":         "bool",
	"AUTOPILOT GLIDESLOPE HOLD":         "bool",
	"AUTOPILOT BANK HOLD":               "bool",
	"AUTOPILOT PITCH HOLD":              "bool",
	"AUTOPILOT THROTTLE ARM":            "bool",
	"AUTOPILOT MANAGED THROTTLE ACTIVE": "bool",
	"GPS DRIVES NAV1":                   "bool",
	"GPS WP DESIRED TRACK":              "degrees",

	// Flight instruments
	"PLANE HEADING DEGREES MAGNETIC": "degrees",
	"PLANE HEADING DEGREES TRUE":     "degrees",
	"PLANE ALTITUDE":                 "feet",
	"PLANE ALT ABOVE GROUND":         "feet",
	"PLANE LATITUDE":                 "degrees",
	"PLANE LONGITUDE":                "degrees",
	"PLANE PITCH DEGREES":            "degrees",
	"PLANE BANK DEGREES":             "degrees",
	"INDICATED ALTITUDE":             "feet",
	"VERTICAL SPEED":                 "feet/minute",
	"AIRSPEED INDICATED":             "knots",
	"AIRSPEED TRUE":                  "knots",
	"GROUND VELOCITY":                "knots",
	"KOHLSMAN SETTING MB":            "millibars",
	"KOHLSMAN SETTING HG":            "inhg",
	"KOHLSMAN SETTING STD":           "bool",
	"SEA LEVEL PRESSURE":             "millibars",
	"AMBIENT PRESSURE":               "inhg",
	"G FORCE":                        "gforce",
	"SIM ON GROUND":                  "bool",
	"STALL WARNING":                  "bool",
	"OVERSPEED WARNING":              "bool",

	// Radios
	"NAV ACTIVE FREQUENCY":  "mhz",
	"NAV STANDBY FREQUENCY": "mhz",
	"NAV OBS":               "degrees",
	"NAV RADIAL":            "degrees",
	"NAV HAS NAV":           "bool",
	"NAV CDI":               "number",
	"COM ACTIVE FREQUENCY":  "mhz",
	"COM STANDBY FREQUENCY": "mhz",
	"COM TRANSMIT":          "bool",
	"ADF ACTIVE FREQUENCY":  "khz",
	"ADF STANDBY FREQUENCY": "khz",
	"ADF CARD":              "degrees",
	"ADF SIGNAL":            "number",
	"ADF RADIAL":            "degrees",
	"TRANSPONDER CODE":      "number",
	"TRANSPONDER STATE":     "number",
	"TRANSPONDER IDENT":     "bool",

	// Electrical
	"ELECTRICAL MASTER BATTERY":     "bool",
	"AVIONICS MASTER SWITCH":        "bool",
	"GENERAL ENG MASTER ALTERNATOR": "bool",
	"CIRCUIT AVIONICS ON":           "bool",
	"APU SWITCH":                    "bool",
	"APU PCT RPM":                   "percent",

	// Engines
	"GENERAL ENG COMBUSTION":               "bool",
	"GENERAL ENG OIL PRESSURE":             "psf",
	"GENERAL ENG OIL TEMPERATURE":          "rankine",
	"GENERAL ENG RPM":                      "rpm",
	"GENERAL ENG THROTTLE LEVER POSITION":  "percent",
	"GENERAL ENG MIXTURE LEVER POSITION":   "percent",
	"GENERAL ENG PROPELLER LEVER POSITION": "percent",
	"GENERAL ENG FUEL PUMP SWITCH":         "bool",
	"GENERAL ENG STARTER":                  "bool",
	"TURB ENG N1":                          "percent",
	"TURB ENG N2":                          "percent",
	"ENG ANTI ICE":                         "bool",
	"NUMBER OF ENGINES":                    "number",
	"FUEL TOTAL QUANTITY":                  "gallons",
	"FUEL TOTAL QUANTITY WEIGHT":           "pounds",

	// Lights
	"LIGHT BEACON":      "bool",
	"LIGHT STROBE":      "bool",
	"LIGHT LANDING":     "bool",
	"LIGHT TAXI":        "bool",
	"LIGHT NAV":         "bool",
	"LIGHT PANEL":       "bool",
	"LIGHT CABIN":       "bool",
	"LIGHT LOGO":        "bool",
	"LIGHT WING":        "bool",
	"LIGHT RECOGNITION": "bool",

	// Controls
	"GEAR HANDLE POSITION":     "bool",
	"FLAPS HANDLE INDEX":       "number",
	"FLAPS HANDLE PERCENT":     "percent over 100",
	"SPOILERS HANDLE POSITION": "percent over 100",
	"SPOILERS ARMED":           "bool",
	"BRAKE PARKING POSITION":   "bool",
	"PITOT HEAT":               "bool",
	"STRUCTURAL DEICE SWITCH":  "bool",
	"EXIT OPEN":                "percent over 100",
	"SIMULATION RATE":          "number",
	"CAMERA STATE":             "enum",
}

// Lookup returns the default unit for a known variable name.
// Indexed names such as "NAV OBS:1" resolve through their base name.
func Lookup(name string) (string, bool) {
	entry, ok := lookupEntry(name)
	if !ok {
		return "", false
	}
	return entry.unit, true
}

// lookupEntry finds the catalog entry for name, returning the canonical spelling
// including any index suffix.
func lookupEntry(name string) (catalogEntry, bool) {
	if hasPassthroughPrefix(name) {
		return catalogEntry{}, false
	}
	upper := strings.ToUpper(strings.TrimSpace(name))
	base, index, hasIndex := strings.Cut(upper, ":")
	if hasIndex {
		if _, err := strconv.Atoi(index); err != nil {
			return catalogEntry{}, false
		}
	}
	unit, ok := catalog[base]
	if !ok {
		return catalogEntry{}, false
	}
	return catalogEntry{name: upper, unit: unit}, true
}
