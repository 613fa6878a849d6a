package simvar

import "strings"

// Resolve turns a free-form variable name and optional unit into a registration.
// It returns false for blank names. Unknown names still resolve; callers
// forwarding to a transport must check Forwardable.
func Resolve(name, unit string) (Registration, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Registration{}, false
	}

	reg := Registration{Name: canonicalName(name), Unit: canonicalUnit(unit)}
	if reg.Unit != "" {
		return reg, true
	}

	switch {
	case reg.IsLocal():
		reg.Unit = defaultLocalUnit
	default:
		if entry, ok := lookupEntry(reg.Name); ok {
			reg.Unit = entry.unit
		}
	}
	return reg, true
}

// ResolveSetting resolves "NAME" or "NAME|unit" strings as used in action settings.
func ResolveSetting(s string) (Registration, bool) {
	name, unit, _ := strings.Cut(s, "|")
	return Resolve(name, unit)
}
