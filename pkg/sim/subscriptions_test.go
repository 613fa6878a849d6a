package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flightdeck/pkg/simvar"
)

func TestSubscriptions_RefCounting(t *testing.T) {
	hdg := simvar.New("AUTOPILOT HEADING LOCK DIR", "degrees")
	alt := simvar.New("AUTOPILOT ALTITUDE LOCK VAR", "feet")
	s := NewSubscriptions()

	assert.Equal(t, []simvar.Registration{hdg, alt}, s.Add(hdg, alt))
	assert.Empty(t, s.Add(hdg))
	assert.Equal(t, 2, s.Count(hdg))

	assert.Empty(t, s.Remove(hdg))
	assert.Equal(t, []simvar.Registration{hdg, alt}, s.All())

	assert.Equal(t, []simvar.Registration{hdg}, s.Remove(hdg))
	assert.Equal(t, []simvar.Registration{alt}, s.All())

	// Unbalanced removal does not go negative.
	assert.Empty(t, s.Remove(hdg))
	assert.Equal(t, 0, s.Count(hdg))
}

func TestValues_Clone(t *testing.T) {
	r := simvar.New("AUTOPILOT MASTER", "bool")
	v := Values{r: 1}
	c := v.Clone()
	c[r] = 0
	assert.Equal(t, 1.0, v[r])
}
