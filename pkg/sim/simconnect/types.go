//go:build windows

package simconnect

// Recv is the base struct for all received messages.
type Recv struct {
	Size    uint32
	Version uint32
	ID      uint32
}

// RecvOpen is received when connection is established.
type RecvOpen struct {
	Recv
	ApplicationName         [256]byte
	ApplicationVersionMajor uint32
	ApplicationVersionMinor uint32
	ApplicationBuildMajor   uint32
	ApplicationBuildMinor   uint32
	SimConnectVersionMajor  uint32
	SimConnectVersionMinor  uint32
	SimConnectBuildMajor    uint32
	SimConnectBuildMinor    uint32
	Reserved1               uint32
	Reserved2               uint32
}

// RecvException is received when a request fails. SendID matches the value
// returned by GetLastSentPacketID for the offending request.
type RecvException struct {
	Recv
	Exception uint32
	SendID    uint32
	Index     uint32
}

// RecvEvent is received when a subscribed system event occurs.
type RecvEvent struct {
	Recv
	GroupID  uint32
	UEventID uint32
	Data     uint32
}

// RecvSimobjectData is received with requested sim object data.
type RecvSimobjectData struct {
	Recv
	RequestID   uint32
	ObjectID    uint32
	DefineID    uint32
	Flags       uint32
	EntryNumber uint32
	OutOf       uint32
	DefineCount uint32
	// Data bytes follow immediately after this struct
}

// Exception codes worth naming in logs.
const (
	EXCEPTION_UNRECOGNIZED_ID    uint32 = 3
	EXCEPTION_NAME_UNRECOGNIZED  uint32 = 7
	EXCEPTION_EVENT_ID_DUPLICATE uint32 = 10
)
