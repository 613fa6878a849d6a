package radio

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"flightdeck/pkg/simvar"
)

// ErrUnknownRadio is returned by New for an unsupported radio type.
var ErrUnknownRadio = errors.New("unknown radio type")

type builder func(events Events) *Handler

var builders = map[string]builder{
	"NAV1": func(e Events) *Handler { return newNav(1, e) },
	"NAV2": func(e Events) *Handler { return newNav(2, e) },
	"COM1": func(e Events) *Handler { return newCom(1, e) },
	"COM2": func(e Events) *Handler { return newCom(2, e) },
	"ADF":  newADF,
	"XPDR": newTransponder,
}

// New returns the handler for a radio type key (case-insensitive).
func New(kind string, events Events) (*Handler, error) {
	b, ok := builders[strings.ToUpper(strings.TrimSpace(kind))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRadio, kind)
	}
	return b(events), nil
}

// Kinds lists supported radio types.
func Kinds() []string {
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func resolve(name, unit string) simvar.Registration {
	r, _ := simvar.Resolve(name, unit)
	return r
}

func ptr(r simvar.Registration) *simvar.Registration {
	return &r
}

func formatter(layout string) func(float64) string {
	return func(v float64) string { return fmt.Sprintf(layout, v) }
}

func electricalDeps(p *Params) {
	p.Battery = ptr(resolve("ELECTRICAL MASTER BATTERY", ""))
	p.Avionics = ptr(resolve("AVIONICS MASTER SWITCH", ""))
}

func newNav(index int, events Events) *Handler {
	p := Params{
		Active:      resolve(fmt.Sprintf("NAV ACTIVE FREQUENCY:%d", index), ""),
		Standby:     ptr(resolve(fmt.Sprintf("NAV STANDBY FREQUENCY:%d", index), "")),
		ToggleEvent: fmt.Sprintf("NAV%d_RADIO_SWAP", index),
		SetEvent:    fmt.Sprintf("NAV%d_STBY_SET", index),
		MinPattern:  "10800",
		MaxPattern:  "11795",
		Mask:        "xxx.xx",
	}
	electricalDeps(&p)
	return NewHandler(fmt.Sprintf("NAV%d", index), p, EncodeBCD, formatter("%.2f"), events)
}

func newCom(index int, events Events) *Handler {
	swap, set := "COM_STBY_RADIO_SWAP", "COM_STBY_RADIO_SET_HZ"
	if index > 1 {
		swap = fmt.Sprintf("COM%d_RADIO_SWAP", index)
		set = fmt.Sprintf("COM%d_STBY_RADIO_SET_HZ", index)
	}
	p := Params{
		Active:      resolve(fmt.Sprintf("COM ACTIVE FREQUENCY:%d", index), ""),
		Standby:     ptr(resolve(fmt.Sprintf("COM STANDBY FREQUENCY:%d", index), "")),
		ToggleEvent: swap,
		SetEvent:    set,
		MinPattern:  "118000",
		MaxPattern:  "136990",
		Mask:        "xxx.xxx",
	}
	electricalDeps(&p)
	return NewHandler(fmt.Sprintf("COM%d", index), p, EncodeScaledHz, formatter("%.3f"), events)
}

func newADF(events Events) *Handler {
	p := Params{
		Active:      resolve("ADF ACTIVE FREQUENCY:1", ""),
		Standby:     ptr(resolve("ADF STANDBY FREQUENCY:1", "")),
		ToggleEvent: "ADF1_RADIO_SWAP",
		SetEvent:    "ADF_STBY_SET",
		MinPattern:  "0190",
		MaxPattern:  "1750",
		Mask:        "xxxx",
	}
	electricalDeps(&p)
	return NewHandler("ADF", p, EncodeADFHz, formatter("%.0f"), events)
}

func newTransponder(events Events) *Handler {
	p := Params{
		Active:     resolve("TRANSPONDER CODE:1", ""),
		SetEvent:   "XPNDR_SET",
		MinPattern: "0000",
		MaxPattern: "7777",
		Mask:       "xxxx",
		// Squawk digits are octal per slot; the simulator ignores invalid codes.
		SkipRangeCheck: true,
	}
	p.Battery = ptr(resolve("ELECTRICAL MASTER BATTERY", ""))
	return NewHandler("XPDR", p, EncodeBCDFull, formatter("%04.0f"), events)
}
