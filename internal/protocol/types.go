package protocol

// Wire constants from the frame contract.
const (
	Magic      uint32 = 0x43534231 // "CSB1"
	HeaderSize        = 12

	// MaxPayloadLen caps the declared payload length a validating
	// decoder accepts before allocating a buffer.
	MaxPayloadLen uint32 = 32 * 1024 * 1024
)

// MessageType identifies one frame kind on the wire.
type MessageType uint16

// Message type IDs from the wire contract.
const (
	MsgReqPing     MessageType = 1
	MsgRespPing    MessageType = 2
	MsgReqSysinfo  MessageType = 10
	MsgRespSysinfo MessageType = 11
	MsgReqEcho     MessageType = 20
	MsgRespEcho    MessageType = 21
	MsgRespError   MessageType = 255
)

// Known reports whether t is a member of the closed message type set.
func (t MessageType) Known() bool {
	switch t {
	case MsgReqPing, MsgRespPing, MsgReqSysinfo, MsgRespSysinfo,
		MsgReqEcho, MsgRespEcho, MsgRespError:
		return true
	}
	return false
}

// IsRequest reports whether t names a request kind.
func (t MessageType) IsRequest() bool {
	switch t {
	case MsgReqPing, MsgReqSysinfo, MsgReqEcho:
		return true
	}
	return false
}

func (t MessageType) String() string {
	switch t {
	case MsgReqPing:
		return "req_ping"
	case MsgRespPing:
		return "resp_ping"
	case MsgReqSysinfo:
		return "req_sysinfo"
	case MsgRespSysinfo:
		return "resp_sysinfo"
	case MsgReqEcho:
		return "req_echo"
	case MsgRespEcho:
		return "resp_echo"
	case MsgRespError:
		return "resp_error"
	}
	return "unknown"
}

// Header is the fixed 12-byte wire header.
type Header struct {
	Magic  uint32
	Type   MessageType
	Flags  uint16
	Length uint32
}

// Frame is one complete decoded wire message. Frames are transient:
// built immediately before send, discarded after dispatch.
type Frame struct {
	Type    MessageType
	Payload []byte
}
