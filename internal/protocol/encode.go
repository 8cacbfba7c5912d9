package protocol

import (
	"encoding/binary"
	"math"
)

// EncodeHeader serializes h into a fresh 12-byte buffer in network
// byte order.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint32(buf[0:4], h.Magic)
	binary.BigEndian.PutUint16(buf[4:6], uint16(h.Type))
	binary.BigEndian.PutUint16(buf[6:8], h.Flags)
	binary.BigEndian.PutUint32(buf[8:12], h.Length)
	return buf
}

// EncodeFrame produces the full wire bytes for one message: header
// followed by payload. Flags are always zero on send; the field is
// reserved. Fails only when the payload cannot be described by the
// 32-bit length field.
func EncodeFrame(t MessageType, payload []byte) ([]byte, error) {
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrPayloadTooLarge
	}
	h := Header{
		Magic:  Magic,
		Type:   t,
		Length: uint32(len(payload)),
	}
	buf := make([]byte, 0, HeaderSize+len(payload))
	buf = append(buf, EncodeHeader(h)...)
	buf = append(buf, payload...)
	return buf, nil
}
