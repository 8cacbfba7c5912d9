// Package handler owns the request dispatch boundary: one response
// per request, built from the local host.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/csbwire/csbwire/internal/protocol"
	"github.com/csbwire/csbwire/internal/sysinfo"
)

// PingAck is the liveness acknowledgment payload.
const PingAck = "pong"

// ErrSysinfo classifies host report failures.
var ErrSysinfo = errors.New("sysinfo failed")

// Host answers the three request kinds. The zero value is not usable;
// construct with NewHost.
type Host struct {
	summary func() (string, error)
}

func NewHost() *Host {
	return &Host{summary: sysinfo.Summary}
}

// NewHostWithSummary injects the host report builder. Tests use it to
// exercise the internal-failure path.
func NewHostWithSummary(summary func() (string, error)) *Host {
	return &Host{summary: summary}
}

// Handle produces one response for one request. A returned error is
// an internal failure the caller converts into an error frame; the
// unknown-request answer is a normal response, not a failure.
func (h *Host) Handle(ctx context.Context, t protocol.MessageType, payload []byte) (protocol.MessageType, []byte, error) {
	switch t {
	case protocol.MsgReqPing:
		return protocol.MsgRespPing, []byte(PingAck), nil
	case protocol.MsgReqEcho:
		return protocol.MsgRespEcho, payload, nil
	case protocol.MsgReqSysinfo:
		line, err := h.summary()
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %v", ErrSysinfo, err)
		}
		return protocol.MsgRespSysinfo, []byte(line), nil
	default:
		return protocol.MsgRespError, []byte("unknown request"), nil
	}
}
