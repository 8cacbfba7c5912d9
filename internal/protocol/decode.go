package protocol

import "encoding/binary"

// ParseHeader decodes the fixed 12-byte header. Parsing is separate
// from payload reading so callers can bound the two reads
// independently and reject an oversized length before allocating.
func ParseHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, ErrShortHeader
	}
	return Header{
		Magic:  binary.BigEndian.Uint32(b[0:4]),
		Type:   MessageType(binary.BigEndian.Uint16(b[4:6])),
		Flags:  binary.BigEndian.Uint16(b[6:8]),
		Length: binary.BigEndian.Uint32(b[8:12]),
	}, nil
}

// Validate checks h against the wire contract: magic constant, closed
// message type set, payload length cap. Nonzero flags pass; the field
// is a reserved forward-compat slot and is not interpreted.
func (h Header) Validate() error {
	if h.Magic != Magic {
		return ErrInvalidMagic
	}
	if !h.Type.Known() {
		return ErrUnknownType
	}
	if h.Length > MaxPayloadLen {
		return ErrPayloadTooLarge
	}
	return nil
}
