//go:build windows

package simconnect

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"flightdeck/pkg/logging"
	"flightdeck/pkg/sim"
	"flightdeck/pkg/simvar"
)

// cStringToGo converts a null-terminated C string byte array to a Go string.
func cStringToGo(b []byte) string {
	if idx := bytes.IndexByte(b, 0); idx >= 0 {
		return string(b[:idx])
	}
	return string(b)
}

const (
	// EvtIDSimStop is the client-side ID for the SimStop system event. Client
	// events are numbered from 1 by the registry, so it sits at the top of the range.
	EvtIDSimStop = 0xFFFFFFF0
	// firstDefineID leaves room below for fixed definitions.
	firstDefineID = 16

	watchdogTimeout = 30 * time.Second
)

// Config tunes the client.
type Config struct {
	AppName           string
	DLLPath           string
	SDKPath           string
	ReconnectInterval time.Duration
	UpdateInterval    time.Duration
}

// Client implements sim.Transport for Microsoft Flight Simulator via SimConnect.
type Client struct {
	mu        sync.Mutex
	handle    uintptr
	connected bool
	simState  sim.State
	listener  sim.Listener

	logger       *slog.Logger
	appName      string
	reconnectInt time.Duration
	updateInt    time.Duration

	subs       *sim.Subscriptions
	defines    map[simvar.Registration]uint32
	byDefine   map[uint32]simvar.Registration
	nextDefine uint32
	pending    sim.Values

	stopChan  chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once

	lastMessageTime time.Time
}

// NewClient loads SimConnect.dll. If cfg.DLLPath is empty, it will attempt to
// auto-discover it. Connection attempts begin with Start.
func NewClient(cfg Config) (*Client, error) {
	dllPath := cfg.DLLPath
	if dllPath == "" {
		var err error
		dllPath, err = FindDLL(cfg.SDKPath)
		if err != nil {
			return nil, fmt.Errorf("failed to find SimConnect.dll: %w", err)
		}
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = 5 * time.Second
	}
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = 100 * time.Millisecond
	}
	if cfg.AppName == "" {
		cfg.AppName = "flightdeck"
	}

	if err := LoadDLL(dllPath); err != nil {
		return nil, err
	}

	return &Client{
		simState:     sim.StateDisconnected,
		logger:       slog.Default().With("component", "simconnect"),
		appName:      cfg.AppName,
		reconnectInt: cfg.ReconnectInterval,
		updateInt:    cfg.UpdateInterval,
		subs:         sim.NewSubscriptions(),
		defines:      make(map[simvar.Registration]uint32),
		byDefine:     make(map[uint32]simvar.Registration),
		nextDefine:   firstDefineID,
		pending:      make(sim.Values),
		stopChan:     make(chan struct{}),
	}, nil
}

// Start runs the reconnect and value publishing loops.
func (c *Client) Start() {
	c.startOnce.Do(func() {
		c.wg.Add(2)
		go c.connectionLoop()
		go c.publishLoop()
	})
}

// SetListener installs the receiver of asynchronous notifications.
func (c *Client) SetListener(l sim.Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// GetState returns the current simulator connection state.
func (c *Client) GetState() sim.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.simState
}

// RegisterToggleEvent maps id to the named event and returns the send ID of
// the mapping request, so a later exception can be traced back to it.
func (c *Client) RegisterToggleEvent(id sim.EventID, name string) (uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return 0, false
	}
	if err := MapClientEventToSimEvent(c.handle, uint32(id), name); err != nil {
		c.logger.Warn("Failed to map event", "event", name, "error", err)
		return 0, false
	}
	sendID, err := GetLastSentPacketID(c.handle)
	if err != nil {
		c.logger.Warn("Failed to read send ID", "event", name, "error", err)
		return 0, false
	}
	return sendID, true
}

// Trigger transmits a mapped event to the user aircraft.
func (c *Client) Trigger(id sim.EventID, value uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return sim.ErrNotConnected
	}
	return TransmitClientEvent(c.handle, OBJECT_ID_USER, uint32(id), value,
		GROUP_PRIORITY_HIGHEST, EVENT_FLAG_GROUPID_IS_PRIORITY)
}

// RegisterSimValues subscribes variables. Newly subscribed ones get their own
// data definition, requested every visual frame when changed.
func (c *Client) RegisterSimValues(regs ...simvar.Registration) {
	added := c.subs.Add(regs...)
	if len(added) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range added {
		id := c.nextDefine
		c.nextDefine++
		c.defines[r] = id
		c.byDefine[id] = r
		if c.connected {
			c.requestLocked(r, id)
		}
	}
}

// DeRegisterSimValues releases subscriptions and stops data that is no longer held.
func (c *Client) DeRegisterSimValues(regs ...simvar.Registration) {
	removed := c.subs.Remove(regs...)
	if len(removed) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range removed {
		id, ok := c.defines[r]
		if !ok {
			continue
		}
		delete(c.defines, r)
		delete(c.byDefine, id)
		delete(c.pending, r)
		if !c.connected {
			continue
		}
		if err := RequestDataOnSimObject(c.handle, id, id, OBJECT_ID_USER, PERIOD_NEVER, 0, 0, 0, 0); err != nil {
			c.logger.Debug("Failed to stop data request", "var", r, "error", err)
		}
		if err := ClearDataDefinition(c.handle, id); err != nil {
			c.logger.Debug("Failed to clear data definition", "var", r, "error", err)
		}
	}
}

// requestLocked defines and requests a single variable. Define and request share an ID.
func (c *Client) requestLocked(r simvar.Registration, id uint32) {
	if err := AddToDataDefinition(c.handle, id, r.Name, r.Unit, DATATYPE_FLOAT64); err != nil {
		c.logger.Warn("Failed to add data definition", "var", r, "error", err)
		return
	}
	if err := RequestDataOnSimObject(c.handle, id, id, OBJECT_ID_USER, PERIOD_VISUAL_FRAME, DATA_REQUEST_FLAG_CHANGED, 0, 0, 0); err != nil {
		c.logger.Warn("Failed to request data", "var", r, "error", err)
	}
}

// Close disconnects and cleans up.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()

		c.mu.Lock()
		if c.handle != 0 {
			err = Close(c.handle)
			c.handle = 0
		}
		c.connected = false
		c.simState = sim.StateDisconnected
		c.mu.Unlock()
	})
	return err
}

func (c *Client) connectionLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.reconnectInt)
	defer ticker.Stop()

	c.connect()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.mu.Lock()
			connected := c.connected
			c.mu.Unlock()
			if !connected {
				c.connect()
			}
		}
	}
}

func (c *Client) connect() {
	c.logger.Debug("Attempting SimConnect connection...")

	handle, err := Open(c.appName)
	if err != nil {
		c.logger.Debug("Connection failed", "error", err)
		return
	}

	c.mu.Lock()
	c.handle = handle
	c.connected = true
	c.simState = sim.StateConnected
	c.lastMessageTime = time.Now()
	for r, id := range c.defines {
		c.requestLocked(r, id)
	}
	if err := SubscribeToSystemEvent(c.handle, EvtIDSimStop, "SimStop"); err != nil {
		c.logger.Error("Failed to subscribe to SimStop", "error", err)
	}
	l := c.listener
	c.mu.Unlock()

	c.logger.Info("SimConnect Connected")

	c.wg.Add(1)
	go c.dispatchLoop(handle)

	if l != nil {
		l.Connected()
	}
}

// disconnect closes handle if it is still current.
func (c *Client) disconnect(handle uintptr) {
	c.mu.Lock()
	if c.handle != handle || !c.connected {
		c.mu.Unlock()
		return
	}
	_ = Close(c.handle)
	c.handle = 0
	c.connected = false
	c.simState = sim.StateDisconnected
	c.pending = make(sim.Values)
	l := c.listener
	c.mu.Unlock()

	c.logger.Info("SimConnect Disconnected")
	if l != nil {
		l.Disconnected()
	}
}

func (c *Client) dispatchLoop(handle uintptr) {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		c.mu.Lock()
		if c.handle != handle {
			c.mu.Unlock()
			return
		}
		ppData, _, err := GetNextDispatch(handle)
		c.mu.Unlock()

		if err != nil {
			c.logger.Error("GetNextDispatch error", "error", err)
			c.disconnect(handle)
			return
		}

		if ppData == nil {
			if time.Since(c.lastSeen()) > watchdogTimeout {
				c.logger.Warn("Watchdog timeout, resetting connection", "timeout", watchdogTimeout)
				c.disconnect(handle)
				return
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		c.mu.Lock()
		c.lastMessageTime = time.Now()
		c.mu.Unlock()
		if quit := c.handleMessage(ppData); quit {
			c.disconnect(handle)
			return
		}
	}
}

func (c *Client) lastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMessageTime
}

// handleMessage processes one received message and reports whether the simulator quit.
func (c *Client) handleMessage(ppData unsafe.Pointer) bool {
	recv := (*Recv)(ppData)

	switch recv.ID {
	case RECV_ID_OPEN:
		recvOpen := (*RecvOpen)(ppData)
		c.logger.Info("SimConnect Session Opened", "app", cStringToGo(recvOpen.ApplicationName[:]))

	case RECV_ID_QUIT:
		c.logger.Info("Simulator Quit detected", "source", "Msg")
		return true

	case RECV_ID_EVENT:
		evt := (*RecvEvent)(ppData)
		if evt.UEventID == EvtIDSimStop {
			c.logger.Debug("SimStop received")
		}

	case RECV_ID_EXCEPTION:
		recvEx := (*RecvException)(ppData)
		c.logger.Warn("SimConnect Exception", "exception", recvEx.Exception, "sendID", recvEx.SendID)
		c.mu.Lock()
		l := c.listener
		c.mu.Unlock()
		if l != nil {
			l.InvalidEventRegistered(recvEx.SendID)
		}

	case RECV_ID_SIMOBJECT_DATA:
		c.handleSimObjectData(ppData)
	}
	return false
}

func (c *Client) handleSimObjectData(ppData unsafe.Pointer) {
	recvData := (*RecvSimobjectData)(ppData)
	// Data follows immediately after the header
	dataPtr := unsafe.Pointer(uintptr(ppData) + unsafe.Sizeof(RecvSimobjectData{}))
	value := *(*float64)(dataPtr)

	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.byDefine[recvData.RequestID]; ok {
		logging.Trace(c.logger, "SimObject data", "var", r, "value", value)
		c.pending[r] = value
	}
}

// publishLoop hands accumulated values to the listener once per update interval.
func (c *Client) publishLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.updateInt)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.mu.Lock()
			if len(c.pending) == 0 || c.listener == nil {
				c.mu.Unlock()
				continue
			}
			batch := c.pending
			c.pending = make(sim.Values)
			l := c.listener
			c.mu.Unlock()
			l.GenericValuesUpdated(batch)
		}
	}
}
