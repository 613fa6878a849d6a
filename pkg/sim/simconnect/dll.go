//go:build windows

package simconnect

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows/registry"
)

// DLL and procedure handles
var (
	dll                          *syscall.LazyDLL
	procOpen                     *syscall.LazyProc
	procClose                    *syscall.LazyProc
	procAddToDataDefinition      *syscall.LazyProc
	procClearDataDefinition      *syscall.LazyProc
	procRequestDataOnSimObject   *syscall.LazyProc
	procGetNextDispatch          *syscall.LazyProc
	procMapClientEventToSimEvent *syscall.LazyProc
	procTransmitClientEvent      *syscall.LazyProc
	procGetLastSentPacketID      *syscall.LazyProc
	procSubscribeToSystemEvent   *syscall.LazyProc
)

// Error codes
const (
	SOK   = 0
	EFAIL = 0x80004005
)

// Data types
const (
	DATATYPE_INT32   uint32 = 1
	DATATYPE_FLOAT64 uint32 = 4
)

// Periods
const (
	PERIOD_NEVER        uint32 = 0
	PERIOD_ONCE         uint32 = 1
	PERIOD_VISUAL_FRAME uint32 = 2
	PERIOD_SIM_FRAME    uint32 = 3
	PERIOD_SECOND       uint32 = 4
)

// Data request flags
const (
	DATA_REQUEST_FLAG_DEFAULT uint32 = 0
	DATA_REQUEST_FLAG_CHANGED uint32 = 1
)

// Event transmission
const (
	GROUP_PRIORITY_HIGHEST         uint32 = 1
	EVENT_FLAG_GROUPID_IS_PRIORITY uint32 = 0x10
)

// Recv IDs
const (
	RECV_ID_NULL           uint32 = 0
	RECV_ID_EXCEPTION      uint32 = 1
	RECV_ID_OPEN           uint32 = 2
	RECV_ID_QUIT           uint32 = 3
	RECV_ID_EVENT          uint32 = 4
	RECV_ID_SIMOBJECT_DATA uint32 = 8
)

// Special Object IDs
const (
	OBJECT_ID_USER uint32 = 0
)

const msfsSteamApp = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Steam App 1250410`

// FindDLL returns the path to SimConnect.dll. sdkPath, when set, takes
// precedence over the MSFS_SDK environment variable, the Steam install and
// the usual SDK locations.
func FindDLL(sdkPath string) (string, error) {
	var paths []string

	if sdkPath == "" {
		sdkPath = os.Getenv("MSFS_SDK")
	}
	if sdkPath != "" {
		paths = append(paths, filepath.Join(sdkPath, "SimConnect SDK", "lib", "SimConnect.dll"))
	}

	for _, regPath := range []string{msfsSteamApp, `SOFTWARE\WOW6432Node\` + msfsSteamApp[len(`SOFTWARE\`):]} {
		if loc, ok := installLocation(regPath); ok {
			paths = append(paths, filepath.Join(loc, "SimConnect.dll"))
		}
	}

	paths = append(paths,
		`C:\MSFS 2024 SDK\SimConnect SDK\lib\SimConnect.dll`,
		`C:\MSFS SDK\SimConnect SDK\lib\SimConnect.dll`,
		`C:\Program Files (x86)\Microsoft Flight Simulator SDK\SimConnect SDK\lib\SimConnect.dll`,
	)

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("SimConnect.dll not found; set MSFS_SDK or install the MSFS SDK")
}

func installLocation(regPath string) (string, bool) {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, regPath, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer key.Close()
	val, _, err := key.GetStringValue("InstallLocation")
	if err != nil || val == "" {
		return "", false
	}
	return val, true
}

// LoadDLL loads the SimConnect.dll from the specified path.
func LoadDLL(path string) error {
	dll = syscall.NewLazyDLL(path)
	if err := dll.Load(); err != nil {
		return fmt.Errorf("failed to load SimConnect.dll: %w", err)
	}

	procOpen = dll.NewProc("SimConnect_Open")
	procClose = dll.NewProc("SimConnect_Close")
	procAddToDataDefinition = dll.NewProc("SimConnect_AddToDataDefinition")
	procClearDataDefinition = dll.NewProc("SimConnect_ClearDataDefinition")
	procRequestDataOnSimObject = dll.NewProc("SimConnect_RequestDataOnSimObject")
	procGetNextDispatch = dll.NewProc("SimConnect_GetNextDispatch")
	procMapClientEventToSimEvent = dll.NewProc("SimConnect_MapClientEventToSimEvent")
	procTransmitClientEvent = dll.NewProc("SimConnect_TransmitClientEvent")
	procGetLastSentPacketID = dll.NewProc("SimConnect_GetLastSentPacketID")
	procSubscribeToSystemEvent = dll.NewProc("SimConnect_SubscribeToSystemEvent")
	return nil
}

// IsLoaded returns true if the SimConnect DLL and procedures are loaded.
func IsLoaded() bool {
	return dll != nil && procOpen != nil
}

func cString(s string) []byte {
	return append([]byte(s), 0)
}

// Open establishes a connection to SimConnect.
// Returns the handle on success.
func Open(name string) (uintptr, error) {
	if !IsLoaded() {
		return 0, fmt.Errorf("SimConnect DLL not loaded")
	}
	var handle uintptr
	namePtr, _ := syscall.UTF16PtrFromString(name)

	r1, _, err := procOpen.Call(
		uintptr(unsafe.Pointer(&handle)),
		uintptr(unsafe.Pointer(namePtr)),
		0, // hWnd
		0, // UserEventWin32
		0, // EventHandle
		0, // ConfigIndex
	)

	if int32(r1) < 0 {
		return 0, fmt.Errorf("SimConnect_Open failed: %v (0x%x)", err, r1)
	}

	return handle, nil
}

// Close terminates the SimConnect connection.
func Close(handle uintptr) error {
	if !IsLoaded() {
		return nil
	}
	r1, _, err := procClose.Call(handle)
	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_Close failed: %v (0x%x)", err, r1)
	}
	return nil
}

// AddToDataDefinition adds a SimVar to a data definition.
func AddToDataDefinition(handle uintptr, defineID uint32, datumName, unitsName string, datumType uint32) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	namePtr := cString(datumName)
	var unitsArg uintptr
	if unitsName != "" {
		unitsPtr := cString(unitsName)
		unitsArg = uintptr(unsafe.Pointer(&unitsPtr[0]))
	}

	r1, _, err := procAddToDataDefinition.Call(
		handle,
		uintptr(defineID),
		uintptr(unsafe.Pointer(&namePtr[0])),
		unitsArg,
		uintptr(datumType),
		uintptr(0),          // fEpsilon (float32)
		uintptr(0xFFFFFFFF), // DatumID
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_AddToDataDefinition failed for %s: %v (0x%x)", datumName, err, r1)
	}

	return nil
}

// ClearDataDefinition removes all variables from a data definition.
func ClearDataDefinition(handle uintptr, defineID uint32) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	r1, _, err := procClearDataDefinition.Call(handle, uintptr(defineID))
	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_ClearDataDefinition failed: %v (0x%x)", err, r1)
	}
	return nil
}

// RequestDataOnSimObject requests data updates for a sim object.
func RequestDataOnSimObject(handle uintptr, requestID, defineID, objectID, period, flags, origin, interval, limit uint32) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	r1, _, err := procRequestDataOnSimObject.Call(
		handle,
		uintptr(requestID),
		uintptr(defineID),
		uintptr(objectID),
		uintptr(period),
		uintptr(flags),
		uintptr(origin),
		uintptr(interval),
		uintptr(limit),
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_RequestDataOnSimObject failed: %v (0x%x)", err, r1)
	}

	return nil
}

// GetNextDispatch retrieves the next message from SimConnect.
// Returns nil, 0, nil if no message is available.
func GetNextDispatch(handle uintptr) (ppData unsafe.Pointer, cbData uint32, err error) {
	if !IsLoaded() {
		return nil, 0, fmt.Errorf("DLL not loaded")
	}
	r1, _, _ := procGetNextDispatch.Call(
		handle,
		uintptr(unsafe.Pointer(&ppData)),
		uintptr(unsafe.Pointer(&cbData)),
	)

	if uint32(r1) == EFAIL {
		return nil, 0, nil
	}

	if int32(r1) < 0 {
		return nil, 0, fmt.Errorf("SimConnect_GetNextDispatch failed: 0x%x", r1)
	}

	return ppData, cbData, nil
}

// MapClientEventToSimEvent binds a client event ID to a named simulator event.
// An unknown name is only reported later through an exception.
func MapClientEventToSimEvent(handle uintptr, eventID uint32, eventName string) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	namePtr := cString(eventName)
	r1, _, err := procMapClientEventToSimEvent.Call(
		handle,
		uintptr(eventID),
		uintptr(unsafe.Pointer(&namePtr[0])),
	)
	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_MapClientEventToSimEvent failed for %s: %v (0x%x)", eventName, err, r1)
	}
	return nil
}

// TransmitClientEvent fires a mapped client event on objectID.
func TransmitClientEvent(handle uintptr, objectID, eventID, data, groupID, flags uint32) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	r1, _, err := procTransmitClientEvent.Call(
		handle,
		uintptr(objectID),
		uintptr(eventID),
		uintptr(data),
		uintptr(groupID),
		uintptr(flags),
	)
	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_TransmitClientEvent failed: %v (0x%x)", err, r1)
	}
	return nil
}

// GetLastSentPacketID returns the send ID of the last request on handle.
func GetLastSentPacketID(handle uintptr) (uint32, error) {
	if !IsLoaded() {
		return 0, fmt.Errorf("DLL not loaded")
	}
	var sendID uint32
	r1, _, err := procGetLastSentPacketID.Call(handle, uintptr(unsafe.Pointer(&sendID)))
	if int32(r1) < 0 {
		return 0, fmt.Errorf("SimConnect_GetLastSentPacketID failed: %v (0x%x)", err, r1)
	}
	return sendID, nil
}

// SubscribeToSystemEvent subscribes to a system event like "SimStart" or "SimStop".
func SubscribeToSystemEvent(handle uintptr, clientEventID uint32, eventName string) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	namePtr := cString(eventName)

	r1, _, err := procSubscribeToSystemEvent.Call(
		handle,
		uintptr(clientEventID),
		uintptr(unsafe.Pointer(&namePtr[0])),
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_SubscribeToSystemEvent failed for %s: %v (0x%x)", eventName, err, r1)
	}

	return nil
}
