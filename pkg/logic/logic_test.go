package logic

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

type trigger struct {
	name  string
	value uint32
}

type recordingEvents struct {
	mu     sync.Mutex
	fired  []trigger
	reject bool
}

func (r *recordingEvents) Trigger(name string, value uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reject {
		return false
	}
	r.fired = append(r.fired, trigger{name, value})
	return true
}

func (r *recordingEvents) last() trigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fired) == 0 {
		return trigger{}
	}
	return r.fired[len(r.fired)-1]
}

func v(t *testing.T, name, unit string) simvar.Registration {
	t.Helper()
	r, ok := simvar.Resolve(name, unit)
	require.True(t, ok)
	return r
}

func newValueLogic(t *testing.T, name string, events Events, opts ...Option) ValueLogic {
	t.Helper()
	l, err := New(name, events, opts...)
	require.NoError(t, err)
	vl, ok := l.(ValueLogic)
	require.True(t, ok, "%s should be a value logic", name)
	t.Cleanup(vl.Stop)
	return vl
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		l, err := New(name, &recordingEvents{})
		require.NoError(t, err, name)
		assert.Equal(t, name, l.Name())
		assert.NotEmpty(t, l.Variables())
		for _, r := range l.Variables() {
			assert.True(t, r.Forwardable(), "%s uses unknown variable %v", name, r)
		}
	}

	l, err := New(" hdg ", &recordingEvents{})
	require.NoError(t, err)
	assert.Equal(t, "HDG", l.Name())

	_, err = New("WARP_DRIVE", &recordingEvents{})
	assert.True(t, errors.Is(err, ErrUnknownLogic))
}

func TestValueLogicKinds(t *testing.T) {
	values := map[string]bool{
		"AP": false, "FD": false, "NAV": false, "APR": false, "AVIONICS": false,
		"HDG": true, "ALT": true, "VS": true, "FLC": true,
		"VOR1": true, "VOR2": true, "ADF": true, "QNH": true,
	}
	for name, want := range values {
		l, err := New(name, &recordingEvents{})
		require.NoError(t, err)
		_, isValue := l.(ValueLogic)
		assert.Equal(t, want, isValue, name)
	}
}

func TestCalculateSphericalIncrement(t *testing.T) {
	tests := []struct {
		current   float64
		sign      int
		increment int
		want      float64
	}{
		{359, 1, 1, 0},
		{0, -1, 1, 359},
		{350, 1, 15, 5},
		{10, -1, 30, 340},
		{180, 1, 0, 180},
		{5, -1, 400, 325},
	}
	for _, tt := range tests {
		got := CalculateSphericalIncrement(tt.current, tt.sign, tt.increment)
		if got != tt.want {
			t.Errorf("CalculateSphericalIncrement(%v, %d, %d) = %v, want %v", tt.current, tt.sign, tt.increment, got, tt.want)
		}
	}
}

func TestToggle(t *testing.T) {
	ev := &recordingEvents{}
	l, err := New("AP", ev)
	require.NoError(t, err)
	master := v(t, "AUTOPILOT MASTER", "")

	assert.True(t, l.Active(sim.Values{master: 1}))
	assert.False(t, l.Active(sim.Values{master: 0}))
	assert.False(t, l.Active(sim.Values{}))

	assert.True(t, l.Toggle())
	assert.Equal(t, trigger{"AP_MASTER", 0}, ev.last())
	assert.Equal(t, []string{"AP_MASTER"}, l.Events())

	ev.reject = true
	assert.False(t, l.Toggle())
}

func TestToggle_NoToggleEvent(t *testing.T) {
	ev := &recordingEvents{}
	l, err := New("VOR1", ev)
	require.NoError(t, err)
	assert.False(t, l.Toggle())
	assert.Equal(t, []string{"VOR1_SET"}, l.Events())
}

func TestIsChanged(t *testing.T) {
	ev := &recordingEvents{}
	nav, _ := New("NAV", ev)
	lock := v(t, "AUTOPILOT NAV1 LOCK", "")

	assert.True(t, nav.IsChanged(nil, sim.Values{lock: 0}))
	assert.False(t, nav.IsChanged(sim.Values{lock: 0}, sim.Values{lock: 0}))
	assert.True(t, nav.IsChanged(sim.Values{lock: 0}, sim.Values{lock: 1}))

	hdg := newValueLogic(t, "HDG", ev)
	dir := v(t, "AUTOPILOT HEADING LOCK DIR", "")
	assert.True(t, hdg.IsChanged(sim.Values{dir: 90}, sim.Values{dir: 91}))
	assert.False(t, hdg.IsChanged(sim.Values{dir: 90}, sim.Values{dir: 90}))
}

func TestChangeValue_HeadingCoalesces(t *testing.T) {
	ev := &recordingEvents{}
	hdg := newValueLogic(t, "HDG", ev)
	dir := v(t, "AUTOPILOT HEADING LOCK DIR", "")
	status := sim.Values{dir: 350}

	// The live status lags behind; every tick must build on the cached target.
	for i := 0; i < 3; i++ {
		require.True(t, hdg.ChangeValue(status, 1, 1))
	}
	assert.Equal(t, trigger{"HEADING_BUG_SET", 353}, ev.last())
	assert.Equal(t, 353.0, hdg.Value(status))
	assert.Equal(t, "353", hdg.Format(hdg.Value(status)))
}

func TestChangeValue_Arithmetic(t *testing.T) {
	tests := []struct {
		logic     string
		variable  string
		unit      string
		start     float64
		sign      int
		increment int
		event     string
		want      uint32
	}{
		{"HDG", "AUTOPILOT HEADING LOCK DIR", "", 359, 1, 1, "HEADING_BUG_SET", 0},
		{"HDG", "AUTOPILOT HEADING LOCK DIR", "", 0, -1, 1, "HEADING_BUG_SET", 359},
		{"ALT", "AUTOPILOT ALTITUDE LOCK VAR", "", 5000, 1, 5, "AP_ALT_VAR_SET_ENGLISH", 5500},
		{"ALT", "AUTOPILOT ALTITUDE LOCK VAR", "", 100, -1, 3, "AP_ALT_VAR_SET_ENGLISH", uint32(0xFFFFFF38)}, // -200
		{"VS", "AUTOPILOT VERTICAL HOLD VAR", "", 500, 1, 10, "AP_VS_VAR_SET_ENGLISH", 600},
		{"VS", "AUTOPILOT VERTICAL HOLD VAR", "", 0, -1, 4, "AP_VS_VAR_SET_ENGLISH", uint32(0xFFFFFF9C)}, // -100
		{"FLC", "AUTOPILOT AIRSPEED HOLD VAR", "", 2, -1, 5, "AP_SPD_VAR_SET", 0},
		{"FLC", "AUTOPILOT AIRSPEED HOLD VAR", "", 120, 1, 5, "AP_SPD_VAR_SET", 125},
		{"VOR1", "NAV OBS:1", "", 355, 1, 10, "VOR1_SET", 5},
		{"VOR2", "NAV OBS:2", "", 90, -1, 1, "VOR2_SET", 89},
		{"ADF", "ADF CARD", "", 0, -1, 2, "ADF_CARD_SET", 358},
		{"QNH", "KOHLSMAN SETTING MB:1", "pascals", 101300, 1, 1, "KOHLSMAN_SET", 16216}, // 1013.5 hPa * 16
	}

	for _, tt := range tests {
		t.Run(tt.logic, func(t *testing.T) {
			ev := &recordingEvents{}
			l := newValueLogic(t, tt.logic, ev)
			status := sim.Values{v(t, tt.variable, tt.unit): tt.start}
			require.True(t, l.ChangeValue(status, tt.sign, tt.increment))
			assert.Equal(t, trigger{tt.event, tt.want}, ev.last())
		})
	}
}

func TestChangeValue_NoLiveValue(t *testing.T) {
	ev := &recordingEvents{}
	hdg := newValueLogic(t, "HDG", ev)
	assert.False(t, hdg.ChangeValue(sim.Values{}, 1, 1))
	assert.False(t, hdg.ChangeValue(sim.Values{v(t, "AUTOPILOT HEADING LOCK DIR", ""): 10}, 0, 1))
	assert.Empty(t, ev.fired)
}

func TestChangeValue_CacheExpires(t *testing.T) {
	ev := &recordingEvents{}
	hdg := newValueLogic(t, "HDG", ev, WithCacheExpiry(20*time.Millisecond))
	dir := v(t, "AUTOPILOT HEADING LOCK DIR", "")

	hdg.ChangeValue(sim.Values{dir: 100}, 1, 1)
	assert.Equal(t, trigger{"HEADING_BUG_SET", 101}, ev.last())

	assert.Eventually(t, func() bool {
		_, ok := hdg.(*valued).cache.get()
		return !ok
	}, time.Second, 5*time.Millisecond)

	// A fresh burst seeds from the live value again.
	hdg.ChangeValue(sim.Values{dir: 200}, 1, 1)
	assert.Equal(t, trigger{"HEADING_BUG_SET", 201}, ev.last())
}

func TestChangeValue_ExpiredCacheNeedsLiveValue(t *testing.T) {
	ev := &recordingEvents{}
	hdg := newValueLogic(t, "HDG", ev, WithCacheExpiry(20*time.Millisecond))
	dir := v(t, "AUTOPILOT HEADING LOCK DIR", "")

	require.True(t, hdg.ChangeValue(sim.Values{dir: 100}, 1, 1))
	// Still cached: the burst continues without a live value.
	require.True(t, hdg.ChangeValue(sim.Values{}, 1, 1))
	assert.Equal(t, trigger{"HEADING_BUG_SET", 102}, ev.last())

	assert.Eventually(t, func() bool {
		_, ok := hdg.(*valued).cache.get()
		return !ok
	}, time.Second, 5*time.Millisecond)

	assert.False(t, hdg.ChangeValue(sim.Values{}, 1, 1))
	assert.Len(t, ev.fired, 2, "no write seeded from a missing value")
}

func TestValueCache_SeedWithoutValue(t *testing.T) {
	c := newValueCache(time.Minute)
	defer c.stop()

	writes := 0
	write := func(float64) bool { writes++; return true }
	none := func() (float64, bool) { return 0, false }
	inc := func(cur float64) float64 { return cur + 1 }

	assert.False(t, c.update(none, inc, write))
	_, ok := c.get()
	assert.False(t, ok)
	assert.Zero(t, writes)

	assert.True(t, c.update(func() (float64, bool) { return 7, true }, inc, write))
	// A set cache ignores the seed.
	assert.True(t, c.update(none, inc, write))
	got, ok := c.get()
	assert.True(t, ok)
	assert.Equal(t, 9.0, got)
	assert.Equal(t, 2, writes)
}

func TestChangeValue_RestartCancelsStaleExpiry(t *testing.T) {
	ev := &recordingEvents{}
	hdg := newValueLogic(t, "HDG", ev, WithCacheExpiry(200*time.Millisecond))
	dir := v(t, "AUTOPILOT HEADING LOCK DIR", "")
	status := sim.Values{dir: 10}

	hdg.ChangeValue(status, 1, 1)
	time.Sleep(150 * time.Millisecond)
	hdg.ChangeValue(status, 1, 1)
	// Past the first deadline, inside the second.
	time.Sleep(100 * time.Millisecond)

	cached, ok := hdg.(*valued).cache.get()
	assert.True(t, ok)
	assert.Equal(t, 12.0, cached)
}

func TestSync(t *testing.T) {
	tests := []struct {
		logic    string
		variable string
		unit     string
		live     float64
		event    string
		want     uint32
	}{
		{"HDG", "PLANE HEADING DEGREES MAGNETIC", "", 123.6, "HEADING_BUG_SET", 124},
		{"ALT", "INDICATED ALTITUDE", "", 4460, "AP_ALT_VAR_SET_ENGLISH", 4500},
		{"VS", "VERTICAL SPEED", "", -740, "AP_VS_VAR_SET_ENGLISH", uint32(0xFFFFFD44)}, // -700
		{"FLC", "AIRSPEED INDICATED", "", 97.4, "AP_SPD_VAR_SET", 97},
		{"VOR1", "NAV RADIAL:1", "", 270, "VOR1_SET", 90},
		{"ADF", "PLANE HEADING DEGREES MAGNETIC", "", 359.7, "ADF_CARD_SET", 0},
		{"QNH", "SEA LEVEL PRESSURE", "pascals", 101325, "KOHLSMAN_SET", 16216},
	}

	for _, tt := range tests {
		t.Run(tt.logic, func(t *testing.T) {
			ev := &recordingEvents{}
			l := newValueLogic(t, tt.logic, ev)
			require.True(t, l.Sync(sim.Values{v(t, tt.variable, tt.unit): tt.live}))
			assert.Equal(t, trigger{tt.event, tt.want}, ev.last())
		})
	}
}

func TestSync_ThenAdjust(t *testing.T) {
	ev := &recordingEvents{}
	hdg := newValueLogic(t, "HDG", ev)
	status := sim.Values{
		v(t, "AUTOPILOT HEADING LOCK DIR", ""):     10,
		v(t, "PLANE HEADING DEGREES MAGNETIC", ""): 200,
	}

	require.True(t, hdg.Sync(status))
	require.True(t, hdg.ChangeValue(status, 1, 1))
	assert.Equal(t, trigger{"HEADING_BUG_SET", 201}, ev.last())

	assert.False(t, hdg.Sync(sim.Values{}))
}

func TestQNHFormat(t *testing.T) {
	qnh := newValueLogic(t, "QNH", &recordingEvents{})
	assert.Equal(t, "1013.2", qnh.Format(101325))
}
