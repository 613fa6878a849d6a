package deck

import (
	"encoding/json"
	"fmt"
)

// Inbound event names.
const (
	EventWillAppear         = "willAppear"
	EventWillDisappear      = "willDisappear"
	EventKeyDown            = "keyDown"
	EventKeyUp              = "keyUp"
	EventDialRotate         = "dialRotate"
	EventDialDown           = "dialDown"
	EventDialUp             = "dialUp"
	EventDidReceiveSettings = "didReceiveSettings"
	EventDeviceDidConnect   = "deviceDidConnect"
)

// Controller kinds reported in payloads.
const (
	ControllerKeypad  = "Keypad"
	ControllerEncoder = "Encoder"
)

// Coordinates locate a key on the device grid.
type Coordinates struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Payload is the union of the payload fields used by action events.
type Payload struct {
	Settings        json.RawMessage `json:"settings,omitempty"`
	Coordinates     Coordinates     `json:"coordinates"`
	Controller      string          `json:"controller,omitempty"`
	State           int             `json:"state"`
	IsInMultiAction bool            `json:"isInMultiAction"`
	Ticks           int             `json:"ticks,omitempty"`
	Pressed         bool            `json:"pressed,omitempty"`
}

// Event is a message received from the host application.
type Event struct {
	Action  string  `json:"action"`
	Event   string  `json:"event"`
	Context string  `json:"context"`
	Device  string  `json:"device"`
	Payload Payload `json:"payload"`
}

// DecodeSettings unmarshals the event's settings into v. Empty settings leave v untouched.
func (e Event) DecodeSettings(v any) error {
	if len(e.Payload.Settings) == 0 || string(e.Payload.Settings) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload.Settings, v); err != nil {
		return fmt.Errorf("decode settings for %s: %w", e.Action, err)
	}
	return nil
}

type outbound struct {
	Event   string `json:"event"`
	Context string `json:"context,omitempty"`
	Device  string `json:"device,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

type registration struct {
	Event string `json:"event"`
	UUID  string `json:"uuid"`
}

// State slots of a two-state action.
const (
	StateInactive = "inactive"
	StateActive   = "active"
)

var stateSlots = map[string]int{
	StateInactive: 0,
	StateActive:   1,
}

// MustStateIndex returns the state index for a slot key. An unknown key is a
// programming error and panics.
func MustStateIndex(key string) int {
	idx, ok := stateSlots[key]
	if !ok {
		panic(fmt.Sprintf("deck: unknown state slot %q", key))
	}
	return idx
}

// Info is the -info argument passed to the plugin at launch.
type Info struct {
	Application struct {
		Language string `json:"language"`
		Platform string `json:"platform"`
		Version  string `json:"version"`
	} `json:"application"`
	Plugin struct {
		UUID    string `json:"uuid"`
		Version string `json:"version"`
	} `json:"plugin"`
	Devices []Device `json:"devices"`
}

// Device describes one connected device.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type int    `json:"type"`
	Size struct {
		Columns int `json:"columns"`
		Rows    int `json:"rows"`
	} `json:"size"`
}

// ParseInfo decodes the launch info. An empty string yields a zero Info.
func ParseInfo(s string) (Info, error) {
	var info Info
	if s == "" {
		return info, nil
	}
	if err := json.Unmarshal([]byte(s), &info); err != nil {
		return info, fmt.Errorf("decode info: %w", err)
	}
	return info, nil
}
