package mocksim

import (
	"fmt"
	"math"
)

type eventFunc func(a aircraft, value uint32)

func toggleVar(name string) eventFunc {
	return func(a aircraft, _ uint32) { a.toggle(name) }
}

func setSigned(name string) eventFunc {
	return func(a aircraft, v uint32) { a.set(name, float64(int32(v))) }
}

func setDegrees(name string) eventFunc {
	return func(a aircraft, v uint32) { a.set(name, normalizeDegrees(float64(int32(v)))) }
}

func swap(active, standby string) eventFunc {
	return func(a aircraft, _ uint32) {
		act, stby := a.get(active), a.get(standby)
		a.set(active, stby)
		a.set(standby, act)
	}
}

// decodeBCD reads packed decimal nibbles, most significant first.
func decodeBCD(v uint32, nibbles int) float64 {
	out := 0.0
	for i := nibbles - 1; i >= 0; i-- {
		out = out*10 + float64((v>>(4*uint(i)))&0xF)
	}
	return out
}

func navStandby(index int) eventFunc {
	name := fmt.Sprintf("NAV STANDBY FREQUENCY:%d", index)
	return func(a aircraft, v uint32) {
		// 0x1345 is 113.45 MHz; the leading 1 is implied.
		a.set(name, 100+decodeBCD(v, 4)/100)
	}
}

func comStandby(index int) eventFunc {
	name := fmt.Sprintf("COM STANDBY FREQUENCY:%d", index)
	return func(a aircraft, v uint32) {
		a.set(name, float64(v)/1e6)
	}
}

var eventTable = map[string]eventFunc{
	"AP_MASTER":               toggleVar("AUTOPILOT MASTER"),
	"TOGGLE_FLIGHT_DIRECTOR":  toggleVar("AUTOPILOT FLIGHT DIRECTOR ACTIVE"),
	"AP_NAV1_HOLD":            toggleVar("AUTOPILOT NAV1 LOCK"),
	"AP_APR_HOLD":             toggleVar("AUTOPILOT APPROACH HOLD"),
	"AP_HDG_HOLD":             toggleVar("AUTOPILOT HEADING LOCK"),
	"AP_ALT_HOLD":             toggleVar("AUTOPILOT ALTITUDE LOCK"),
	"AP_VS_HOLD":              toggleVar("AUTOPILOT VERTICAL HOLD"),
	"FLIGHT_LEVEL_CHANGE":     toggleVar("AUTOPILOT FLIGHT LEVEL CHANGE"),
	"TOGGLE_AVIONICS_MASTER":  toggleVar("AVIONICS MASTER SWITCH"),
	"TOGGLE_MASTER_BATTERY":   toggleVar("ELECTRICAL MASTER BATTERY"),
	"BAROMETRIC_STD_PRESSURE": toggleVar("KOHLSMAN SETTING STD:1"),
	"TOGGLE_BEACON_LIGHTS":    toggleVar("LIGHT BEACON"),
	"LANDING_LIGHTS_TOGGLE":   toggleVar("LIGHT LANDING"),
	"STROBES_TOGGLE":          toggleVar("LIGHT STROBE"),
	"TOGGLE_NAV_LIGHTS":       toggleVar("LIGHT NAV"),
	"TOGGLE_TAXI_LIGHTS":      toggleVar("LIGHT TAXI"),
	"PANEL_LIGHTS_TOGGLE":     toggleVar("LIGHT PANEL"),
	"GEAR_TOGGLE":             toggleVar("GEAR HANDLE POSITION"),
	"PARKING_BRAKES":          toggleVar("BRAKE PARKING POSITION"),
	"PITOT_HEAT_TOGGLE":       toggleVar("PITOT HEAT"),

	"HEADING_BUG_SET":        setDegrees("AUTOPILOT HEADING LOCK DIR"),
	"AP_ALT_VAR_SET_ENGLISH": setSigned("AUTOPILOT ALTITUDE LOCK VAR"),
	"AP_VS_VAR_SET_ENGLISH":  setSigned("AUTOPILOT VERTICAL HOLD VAR"),
	"AP_SPD_VAR_SET":         setSigned("AUTOPILOT AIRSPEED HOLD VAR"),
	"VOR1_SET":               setDegrees("NAV OBS:1"),
	"VOR2_SET":               setDegrees("NAV OBS:2"),
	"ADF_CARD_SET":           setDegrees("ADF CARD"),
	"KOHLSMAN_SET": func(a aircraft, v uint32) {
		// 16ths of a millibar
		a.set("KOHLSMAN SETTING MB:1", math.Round(float64(v)/16*100)/100)
	},

	"NAV1_STBY_SET":          navStandby(1),
	"NAV2_STBY_SET":          navStandby(2),
	"NAV1_RADIO_SWAP":        swap("NAV ACTIVE FREQUENCY:1", "NAV STANDBY FREQUENCY:1"),
	"NAV2_RADIO_SWAP":        swap("NAV ACTIVE FREQUENCY:2", "NAV STANDBY FREQUENCY:2"),
	"COM_STBY_RADIO_SET_HZ":  comStandby(1),
	"COM2_STBY_RADIO_SET_HZ": comStandby(2),
	"COM_STBY_RADIO_SWAP":    swap("COM ACTIVE FREQUENCY:1", "COM STANDBY FREQUENCY:1"),
	"COM2_RADIO_SWAP":        swap("COM ACTIVE FREQUENCY:2", "COM STANDBY FREQUENCY:2"),
	"ADF_STBY_SET": func(a aircraft, v uint32) {
		a.set("ADF STANDBY FREQUENCY:1", decodeBCD(v>>16, 4))
	},
	"ADF1_RADIO_SWAP": swap("ADF ACTIVE FREQUENCY:1", "ADF STANDBY FREQUENCY:1"),
	"XPNDR_SET": func(a aircraft, v uint32) {
		a.set("TRANSPONDER CODE:1", decodeBCD(v, 4))
	},
}

// Known reports whether the model handles the named event.
func Known(name string) bool {
	_, ok := eventTable[name]
	return ok
}
