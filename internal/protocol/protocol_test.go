package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestRoundTripEncodeParse(t *testing.T) {
	cases := []struct {
		name    string
		msgType MessageType
		payload []byte
	}{
		{"ping_request", MsgReqPing, []byte("ping")},
		{"empty_payload", MsgReqSysinfo, nil},
		{"echo_bytes", MsgReqEcho, []byte{0x00, 0xff, 0x10, 0x20}},
		{"error_text", MsgRespError, []byte("unknown request")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf, err := EncodeFrame(tc.msgType, tc.payload)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if len(buf) != HeaderSize+len(tc.payload) {
				t.Fatalf("unexpected wire length: %d", len(buf))
			}

			h, err := ParseHeader(buf[:HeaderSize])
			if err != nil {
				t.Fatalf("parse header: %v", err)
			}
			if err := h.Validate(); err != nil {
				t.Fatalf("validate: %v", err)
			}
			if h.Magic != Magic {
				t.Fatalf("unexpected magic: %#x", h.Magic)
			}
			if h.Type != tc.msgType {
				t.Fatalf("unexpected type: %v", h.Type)
			}
			if h.Flags != 0 {
				t.Fatalf("flags must be zero on encode, got %#x", h.Flags)
			}
			if int(h.Length) != len(tc.payload) {
				t.Fatalf("unexpected length: %d", h.Length)
			}
			if !bytes.Equal(buf[HeaderSize:], tc.payload) {
				t.Fatalf("payload mismatch")
			}
		})
	}
}

func TestEncodeHeaderLayout(t *testing.T) {
	buf := EncodeHeader(Header{Magic: Magic, Type: MsgRespEcho, Flags: 0, Length: 7})
	if len(buf) != HeaderSize {
		t.Fatalf("unexpected header length: %d", len(buf))
	}
	if got := binary.BigEndian.Uint32(buf[0:4]); got != Magic {
		t.Fatalf("magic at offset 0: %#x", got)
	}
	if got := binary.BigEndian.Uint16(buf[4:6]); got != uint16(MsgRespEcho) {
		t.Fatalf("type at offset 4: %d", got)
	}
	if got := binary.BigEndian.Uint16(buf[6:8]); got != 0 {
		t.Fatalf("flags at offset 6: %d", got)
	}
	if got := binary.BigEndian.Uint32(buf[8:12]); got != 7 {
		t.Fatalf("length at offset 8: %d", got)
	}
}

func TestParseHeaderShortBuffer(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	if !errors.Is(err, ErrShortHeader) {
		t.Fatalf("expected ErrShortHeader, got %v", err)
	}
}

func TestValidateRejectsBadMagic(t *testing.T) {
	h := Header{Magic: 0xdeadbeef, Type: MsgReqPing, Length: 0}
	if err := h.Validate(); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestValidateRejectsUnknownType(t *testing.T) {
	h := Header{Magic: Magic, Type: 7777, Length: 0}
	if err := h.Validate(); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestValidateRejectsOversizeLength(t *testing.T) {
	h := Header{Magic: Magic, Type: MsgReqEcho, Length: MaxPayloadLen + 1}
	if err := h.Validate(); !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestValidateAcceptsCapBoundary(t *testing.T) {
	h := Header{Magic: Magic, Type: MsgReqEcho, Length: MaxPayloadLen}
	if err := h.Validate(); err != nil {
		t.Fatalf("cap boundary should validate: %v", err)
	}
}

func TestValidateToleratesReservedFlags(t *testing.T) {
	h := Header{Magic: Magic, Type: MsgReqPing, Flags: 0xffff, Length: 0}
	if err := h.Validate(); err != nil {
		t.Fatalf("reserved flags must not reject: %v", err)
	}
}

func TestIsViolation(t *testing.T) {
	for _, err := range []error{ErrInvalidMagic, ErrUnknownType, ErrPayloadTooLarge} {
		if !IsViolation(err) {
			t.Fatalf("expected violation class for %v", err)
		}
	}
	if IsViolation(ErrShortHeader) {
		t.Fatalf("short header is an i/o condition, not a violation")
	}
	if IsViolation(errors.New("other")) {
		t.Fatalf("unrelated error misclassified")
	}
}

func TestMessageTypeRegistry(t *testing.T) {
	known := []MessageType{
		MsgReqPing, MsgRespPing, MsgReqSysinfo, MsgRespSysinfo,
		MsgReqEcho, MsgRespEcho, MsgRespError,
	}
	for _, mt := range known {
		if !mt.Known() {
			t.Fatalf("type %d should be known", mt)
		}
		if mt.String() == "unknown" {
			t.Fatalf("type %d missing name", mt)
		}
	}
	if MessageType(3).Known() {
		t.Fatalf("type 3 is outside the closed set")
	}
	if !MsgReqEcho.IsRequest() || MsgRespEcho.IsRequest() {
		t.Fatalf("request classification wrong")
	}
}
