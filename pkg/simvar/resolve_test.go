package simvar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		unit     string
		want     Registration
		wantOK   bool
		wantKnow bool
	}{
		{"Blank", "   ", "", Registration{}, false, false},
		{"KnownDefaultUnit", "AUTOPILOT HEADING LOCK DIR", "", Registration{"AUTOPILOT HEADING LOCK DIR", "degrees"}, true, true},
		{"EnumSafeEncoding", "GENERAL_ENG_OIL_PRESSURE__1", "", Registration{"GENERAL ENG OIL PRESSURE:1", "psf"}, true, true},
		{"LowerCaseKnown", " autopilot master ", "", Registration{"AUTOPILOT MASTER", "bool"}, true, true},
		{"ExplicitUnit", "INDICATED ALTITUDE", " Meters ", Registration{"INDICATED ALTITUDE", "meters"}, true, true},
		{"LocalVariable", "L:A32NX_AUTOPILOT_1_ACTIVE", "", Registration{"L:A32NX_AUTOPILOT_1_ACTIVE", "number"}, true, false},
		{"LocalVariableUnit", "L:XMLVAR_Baro1_Mode", "Bool", Registration{"L:XMLVAR_Baro1_Mode", "bool"}, true, false},
		{"CustomVariable", "MobiFlight.FNX_TCAS_MODE", "", Registration{"MobiFlight.FNX_TCAS_MODE", ""}, true, false},
		{"UnknownStillResolves", "NOT_A_REAL_VAR", "", Registration{"NOT A REAL VAR", ""}, true, false},
		{"BadIndex", "NAV OBS:X", "", Registration{"NAV OBS:X", ""}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.input, tt.unit)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnow, got.IsKnown())
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	for base := range catalog {
		for _, input := range []string{base, base + ":1", encode(base), encode(base) + "__2"} {
			first, ok := Resolve(input, "")
			if !ok {
				t.Fatalf("Resolve(%q) failed", input)
			}
			again, ok := Resolve(first.Name, "")
			if !ok {
				t.Fatalf("Resolve(%q) failed", first.Name)
			}
			if again != first {
				t.Errorf("Resolve not idempotent for %q: %v then %v", input, first, again)
			}
		}
	}
}

func TestRegistration_Equality(t *testing.T) {
	a, _ := Resolve("NAV_ACTIVE_FREQUENCY__1", "MHz")
	b, _ := Resolve("NAV ACTIVE FREQUENCY : 1", "mhz")
	c := New("nav active frequency:1", "MHz")

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)

	seen := map[Registration]int{a: 1}
	seen[b]++
	assert.Len(t, seen, 1)
}

func TestRegistration_Forwardable(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"AUTOPILOT MASTER", true},
		{"L:SOME_LVAR", true},
		{"MobiFlight.SOMETHING", false},
		{"MADE UP VARIABLE", false},
	}
	for _, tt := range tests {
		reg, _ := Resolve(tt.input, "")
		if got := reg.Forwardable(); got != tt.want {
			t.Errorf("Forwardable(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestResolveSetting(t *testing.T) {
	reg, ok := ResolveSetting("PLANE ALTITUDE|meters")
	assert.True(t, ok)
	assert.Equal(t, Registration{"PLANE ALTITUDE", "meters"}, reg)

	reg, ok = ResolveSetting("PLANE ALTITUDE")
	assert.True(t, ok)
	assert.Equal(t, "feet", reg.Unit)

	_, ok = ResolveSetting("|feet")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	unit, ok := Lookup("com active frequency:2")
	assert.True(t, ok)
	assert.Equal(t, "mhz", unit)

	_, ok = Lookup("L:AUTOPILOT MASTER")
	assert.False(t, ok)
}

func encode(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case ' ':
			out = append(out, '_')
		case ':':
			out = append(out, '_', '_')
		default:
			out = append(out, name[i])
		}
	}
	return string(out)
}
