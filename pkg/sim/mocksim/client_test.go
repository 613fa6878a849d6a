package mocksim

import (
	"math"
	"sync"
	"testing"
	"time"

	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu           sync.Mutex
	connected    int
	disconnected int
	invalid      []uint32
	values       sim.Values
}

func (r *recorder) Connected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected++
}

func (r *recorder) Disconnected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnected++
}

func (r *recorder) InvalidEventRegistered(sendID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalid = append(r.invalid, sendID)
}

func (r *recorder) GenericValuesUpdated(v sim.Values) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values == nil {
		r.values = make(sim.Values)
	}
	for k, val := range v {
		r.values[k] = val
	}
}

func (r *recorder) value(reg simvar.Registration) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[reg]
	return v, ok
}

func (r *recorder) invalidIDs() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint32(nil), r.invalid...)
}

func reg(t *testing.T, name, unit string) simvar.Registration {
	t.Helper()
	r, ok := simvar.Resolve(name, unit)
	require.True(t, ok)
	return r
}

func startClient(t *testing.T) (*MockClient, *recorder) {
	t.Helper()
	rec := &recorder{}
	c := NewClient(Config{TickRate: 10 * time.Millisecond, StartHeading: 350, StartAltitude: 3000})
	c.SetListener(rec)
	c.Start()
	t.Cleanup(func() { _ = c.Close() })
	return c, rec
}

func TestMockClient_Lifecycle(t *testing.T) {
	c, rec := startClient(t)
	assert.Equal(t, sim.StateConnected, c.GetState())
	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return rec.connected == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, sim.StateDisconnected, c.GetState())
	assert.Equal(t, 1, rec.disconnected)
}

func TestMockClient_RegisterBeforeStart(t *testing.T) {
	c := NewClient(Config{})
	_, ok := c.RegisterToggleEvent(1, "AP_MASTER")
	assert.False(t, ok)
	assert.ErrorIs(t, c.Trigger(1, 0), sim.ErrNotConnected)
}

func TestMockClient_UnknownEventRejectedAsynchronously(t *testing.T) {
	c, rec := startClient(t)

	good, ok := c.RegisterToggleEvent(1, "AP_MASTER")
	require.True(t, ok)
	bad, ok := c.RegisterToggleEvent(2, "NOT_AN_EVENT")
	require.True(t, ok, "rejection arrives later")
	assert.NotEqual(t, good, bad)

	assert.Eventually(t, func() bool {
		return len(rec.invalidIDs()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []uint32{bad}, rec.invalidIDs())

	assert.NoError(t, c.Trigger(1, 0))
	assert.ErrorIs(t, c.Trigger(2, 0), ErrUnknownEvent)
}

func TestMockClient_EventsMutateModel(t *testing.T) {
	tests := []struct {
		name  string
		event string
		value uint32
		reg   simvar.Registration
		want  float64
	}{
		{"nav standby bcd", "NAV1_STBY_SET", 0x1345, reg(t, "NAV STANDBY FREQUENCY:1", ""), 113.45},
		{"com standby hz", "COM_STBY_RADIO_SET_HZ", 118275000, reg(t, "COM STANDBY FREQUENCY:1", ""), 118.275},
		{"com standby in hz unit", "COM_STBY_RADIO_SET_HZ", 118275000, reg(t, "COM STANDBY FREQUENCY:1", "hz"), 118275000},
		{"adf standby", "ADF_STBY_SET", 0x03500000, reg(t, "ADF STANDBY FREQUENCY:1", ""), 350},
		{"transponder", "XPNDR_SET", 0x7000, reg(t, "TRANSPONDER CODE:1", ""), 7000},
		{"altitude negative", "AP_ALT_VAR_SET_ENGLISH", 0xFFFFFF38, reg(t, "AUTOPILOT ALTITUDE LOCK VAR", ""), -200},
		{"heading bug", "HEADING_BUG_SET", 353, reg(t, "AUTOPILOT HEADING LOCK DIR", ""), 353},
		{"obs", "VOR2_SET", 90, reg(t, "NAV OBS:2", ""), 90},
		{"kohlsman", "KOHLSMAN_SET", 16216, reg(t, "KOHLSMAN SETTING MB:1", "pascals"), 101350},
		{"battery toggle", "TOGGLE_MASTER_BATTERY", 0, reg(t, "ELECTRICAL MASTER BATTERY", ""), 0},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := startClient(t)
			id := sim.EventID(i + 1)
			_, ok := c.RegisterToggleEvent(id, tt.event)
			require.True(t, ok)
			require.NoError(t, c.Trigger(id, tt.value))

			got, ok := c.Value(tt.reg)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestMockClient_Swap(t *testing.T) {
	c, _ := startClient(t)
	active := reg(t, "NAV ACTIVE FREQUENCY:1", "")
	standby := reg(t, "NAV STANDBY FREQUENCY:1", "")

	a0, _ := c.Value(active)
	s0, _ := c.Value(standby)

	_, ok := c.RegisterToggleEvent(1, "NAV1_RADIO_SWAP")
	require.True(t, ok)
	require.NoError(t, c.Trigger(1, 0))

	a1, _ := c.Value(active)
	s1, _ := c.Value(standby)
	assert.Equal(t, s0, a1)
	assert.Equal(t, a0, s1)
}

func TestMockClient_PublishesSubscribedValues(t *testing.T) {
	c, rec := startClient(t)
	hdg := reg(t, "PLANE HEADING DEGREES MAGNETIC", "")
	bug := reg(t, "AUTOPILOT HEADING LOCK DIR", "")
	custom := reg(t, "MobiFlight.SomeVar", "")

	c.RegisterSimValues(hdg, bug, custom)

	assert.Eventually(t, func() bool {
		v, ok := rec.value(bug)
		return ok && v == 350
	}, time.Second, 5*time.Millisecond)
	_, ok := rec.value(custom)
	assert.False(t, ok)

	// Engage heading mode and turn toward a new bug.
	for i, ev := range []string{"AP_MASTER", "AP_HDG_HOLD", "HEADING_BUG_SET"} {
		_, ok := c.RegisterToggleEvent(sim.EventID(i+1), ev)
		require.True(t, ok)
	}
	require.NoError(t, c.Trigger(1, 0))
	require.NoError(t, c.Trigger(2, 0))
	require.NoError(t, c.Trigger(3, 10))

	assert.Eventually(t, func() bool {
		v, ok := rec.value(hdg)
		return ok && (v > 350 || v < 10)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMockClient_DeRegisterStopsPublishing(t *testing.T) {
	c, rec := startClient(t)
	alt := reg(t, "INDICATED ALTITUDE", "")

	c.RegisterSimValues(alt)
	c.RegisterSimValues(alt)
	c.DeRegisterSimValues(alt)
	assert.Eventually(t, func() bool {
		_, ok := rec.value(alt)
		return ok
	}, time.Second, 5*time.Millisecond)

	c.DeRegisterSimValues(alt)
	assert.Empty(t, c.subs.All())
}

func TestConvert(t *testing.T) {
	assert.InDelta(t, 101325.0, convert(1013.25, "millibars", "pascals"), 1e-6)
	assert.InDelta(t, 118275.0, convert(118.275, "mhz", "khz"), 1e-6)
	assert.InDelta(t, 1000.0, convert(1000, "feet", "bool"), 1e-9)
	assert.InDelta(t, math.Pi, convert(180, "degrees", "radians"), 1e-9)
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("XPNDR_SET"))
	assert.False(t, Known("xpndr_set"))
}
