// Package simvar resolves free-form simulator variable names into canonical registrations.
package simvar

import (
	"strings"
)

const (
	// LocalPrefix marks a local (L:) variable that bypasses the catalog.
	LocalPrefix = "L:"
	// CustomPrefix marks a MobiFlight custom variable that bypasses the catalog.
	CustomPrefix = "MobiFlight."

	defaultLocalUnit = "number"
)

// Registration identifies one simulator variable subscription.
// Values are comparable and are used directly as map keys; build them with
// Resolve or New so both fields are canonical.
type Registration struct {
	Name string
	Unit string
}

// New builds a canonical registration without consulting the catalog for a default unit.
func New(name, unit string) Registration {
	return Registration{Name: canonicalName(name), Unit: canonicalUnit(unit)}
}

// String returns "NAME (unit)".
func (r Registration) String() string {
	if r.Unit == "" {
		return r.Name
	}
	return r.Name + " (" + r.Unit + ")"
}

// IsZero reports whether the registration is empty.
func (r Registration) IsZero() bool {
	return r.Name == ""
}

// IsLocal reports whether the registration is an L: variable.
func (r Registration) IsLocal() bool {
	return strings.HasPrefix(r.Name, LocalPrefix)
}

// IsCustom reports whether the registration is a MobiFlight custom variable.
func (r Registration) IsCustom() bool {
	return strings.HasPrefix(r.Name, CustomPrefix)
}

// IsKnown reports whether the registration names a catalog variable.
func (r Registration) IsKnown() bool {
	_, ok := Lookup(r.Name)
	return ok
}

// Forwardable reports whether a transport can subscribe the registration.
func (r Registration) Forwardable() bool {
	return r.IsLocal() || r.IsKnown()
}

// canonicalName reverses the enum-safe encoding (__ -> ':', _ -> ' ')
// for catalog-style names and collapses whitespace. Local and custom names are
// only trimmed.
func canonicalName(name string) string {
	name = strings.TrimSpace(name)
	if hasPassthroughPrefix(name) {
		return name
	}
	name = strings.ReplaceAll(name, "__", ":")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	name = strings.ReplaceAll(name, " :", ":")
	name = strings.ReplaceAll(name, ": ", ":")
	if entry, ok := lookupEntry(name); ok {
		return entry.name
	}
	return name
}

func canonicalUnit(unit string) string {
	return strings.ToLower(strings.Join(strings.Fields(unit), " "))
}

func hasPassthroughPrefix(name string) bool {
	return strings.HasPrefix(name, LocalPrefix) || strings.HasPrefix(name, CustomPrefix)
}
