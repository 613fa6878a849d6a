package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flightdeck/pkg/action"
	"flightdeck/pkg/config"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "flightdeck.yaml")
	data := `
sim:
  provider: mock
  update_interval: 20ms
  mock:
    start_heading: 350
log:
  path: "` + filepath.ToSlash(filepath.Join(dir, "logs", "flightdeck.log")) + `"
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func startHost(t *testing.T) (port int, conns chan *websocket.Conn) {
	t.Helper()
	conns = make(chan *websocket.Conn, 1)
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- ws
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err = strconv.Atoi(u.Port())
	require.NoError(t, err)
	return port, conns
}

func TestRun(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	port, conns := startHost(t)
	opts := options{
		Port:          port,
		PluginUUID:    "PLUGIN-1",
		RegisterEvent: "registerPlugin",
		Info:          `{"application":{"platform":"linux","version":"6.4"}}`,
		ConfigPath:    writeTestConfig(t),
	}

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), opts) }()

	var ws *websocket.Conn
	select {
	case ws = <-conns:
	case <-time.After(5 * time.Second):
		t.Fatal("plugin did not connect")
	}
	defer ws.Close()

	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reg map[string]any
	require.NoError(t, ws.ReadJSON(&reg))
	assert.Equal(t, "registerPlugin", reg["event"])
	assert.Equal(t, "PLUGIN-1", reg["uuid"])

	appear, _ := json.Marshal(map[string]any{
		"action":  action.UUIDToggle,
		"event":   "willAppear",
		"context": "hdg",
		"device":  "D1",
		"payload": map[string]any{"settings": map[string]string{"type": "HDG"}},
	})
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, appear))

	// The heading bug of the mock aircraft reaches the key title.
	for {
		var msg struct {
			Event   string         `json:"event"`
			Context string         `json:"context"`
			Payload map[string]any `json:"payload"`
		}
		require.NoError(t, ws.ReadJSON(&msg))
		if msg.Event == "setTitle" && msg.Context == "hdg" && msg.Payload["title"] == "350" {
			break
		}
	}

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the host closed")
	}
}

func TestRun_Cancelled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	port, conns := startHost(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, options{Port: port, PluginUUID: "P", RegisterEvent: "registerPlugin", ConfigPath: writeTestConfig(t)})
	}()

	select {
	case ws := <-conns:
		defer ws.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("plugin did not connect")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop on cancel")
	}
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flightdeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  provider: xplane\n"), 0o644))
	err := run(context.Background(), options{Port: 1, PluginUUID: "P", ConfigPath: path})
	assert.ErrorContains(t, err, "failed to load config")
}

func TestActionConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Deck.HoldDuration = config.Duration(750 * time.Millisecond)
	ac := actionConfig(cfg)
	assert.Equal(t, 750*time.Millisecond, ac.HoldDuration)
	assert.Equal(t, action.DefaultConfig().SwapDelay, ac.SwapDelay)
	assert.Equal(t, "Numpad", ac.NumpadProfile)
}
