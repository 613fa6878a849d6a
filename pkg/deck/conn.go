// Package deck speaks the Stream Deck plugin websocket protocol: it registers
// the plugin with the host, dispatches action events and sends display updates.
package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Handler receives action events. Calls are made from the read loop, one at a time.
type Handler interface {
	WillAppear(ev Event)
	WillDisappear(ev Event)
	KeyDown(ev Event)
	KeyUp(ev Event)
	DialRotate(ev Event)
	DidReceiveSettings(ev Event)
}

// Sender pushes display updates for an action context.
type Sender interface {
	SetTitle(actionCtx, title string)
	SetState(actionCtx string, state int)
	ShowAlert(actionCtx string)
	ShowOk(actionCtx string)
	SetFeedback(actionCtx string, payload map[string]any)
	SwitchToProfile(device, profile string)
}

const writeTimeout = 2 * time.Second

// Conn is an open link to the host application.
type Conn struct {
	ws         *websocket.Conn
	pluginUUID string
	logger     *slog.Logger

	writeMu sync.Mutex
}

// Connect dials the host on localhost and registers the plugin.
func Connect(ctx context.Context, port int, pluginUUID, registerEvent string) (*Conn, error) {
	url := "ws://127.0.0.1:" + strconv.Itoa(port)
	return Dial(ctx, url, pluginUUID, registerEvent)
}

// Dial connects to url and registers the plugin.
func Dial(ctx context.Context, url, pluginUUID, registerEvent string) (*Conn, error) {
	var ws *websocket.Conn
	var dialErr error
	for i := 0; i < 3; i++ {
		var resp *http.Response
		ws, resp, dialErr = websocket.DefaultDialer.DialContext(ctx, url, nil)
		if dialErr == nil {
			break
		}
		if resp != nil {
			slog.Warn("Deck: handshake failure", "status", resp.Status)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	if dialErr != nil {
		return nil, fmt.Errorf("websocket dial failed after retries: %w", dialErr)
	}

	c := &Conn{
		ws:         ws,
		pluginUUID: pluginUUID,
		logger:     slog.Default().With("component", "deck"),
	}
	if err := c.write(registration{Event: registerEvent, UUID: pluginUUID}); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("failed to register plugin: %w", err)
	}
	return c, nil
}

// Run reads events until the link closes or ctx is cancelled.
func (c *Conn) Run(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = c.ws.Close() })
	defer stop()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("deck read: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Warn("Discarding malformed message", "error", err)
			continue
		}
		c.dispatch(h, ev)
	}
}

func (c *Conn) dispatch(h Handler, ev Event) {
	switch ev.Event {
	case EventWillAppear:
		h.WillAppear(ev)
	case EventWillDisappear:
		h.WillDisappear(ev)
	case EventKeyDown, EventDialDown:
		h.KeyDown(ev)
	case EventKeyUp, EventDialUp:
		h.KeyUp(ev)
	case EventDialRotate:
		h.DialRotate(ev)
	case EventDidReceiveSettings:
		h.DidReceiveSettings(ev)
	default:
		c.logger.Debug("Ignoring event", "event", ev.Event)
	}
}

// Close closes the link.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
	return c.ws.Close()
}

func (c *Conn) write(msg any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(msg)
}

// send writes a display update. A failed write is logged and dropped so a
// dead link never takes an action down with it.
func (c *Conn) send(msg outbound) {
	if err := c.write(msg); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return
		}
		c.logger.Debug("Dropped update", "event", msg.Event, "context", msg.Context, "error", err)
	}
}

// SetTitle sets the title shown on the key.
func (c *Conn) SetTitle(actionCtx, title string) {
	c.send(outbound{Event: "setTitle", Context: actionCtx, Payload: map[string]any{"title": title, "target": 0}})
}

// SetState selects the key's state image.
func (c *Conn) SetState(actionCtx string, state int) {
	c.send(outbound{Event: "setState", Context: actionCtx, Payload: map[string]any{"state": state}})
}

// ShowAlert flashes the warning overlay.
func (c *Conn) ShowAlert(actionCtx string) {
	c.send(outbound{Event: "showAlert", Context: actionCtx})
}

// ShowOk flashes the check mark overlay.
func (c *Conn) ShowOk(actionCtx string) {
	c.send(outbound{Event: "showOk", Context: actionCtx})
}

// SetFeedback updates an encoder's touch strip layout values.
func (c *Conn) SetFeedback(actionCtx string, payload map[string]any) {
	c.send(outbound{Event: "setFeedback", Context: actionCtx, Payload: payload})
}

// SwitchToProfile asks the host to show a bundled profile on device. An empty
// profile returns to the previous one.
func (c *Conn) SwitchToProfile(device, profile string) {
	c.send(outbound{Event: "switchToProfile", Context: c.pluginUUID, Device: device, Payload: map[string]any{"profile": profile}})
}
