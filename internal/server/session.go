package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/csbwire/csbwire/internal/netio"
	"github.com/csbwire/csbwire/internal/observability"
	"github.com/csbwire/csbwire/internal/protocol"
	"github.com/csbwire/csbwire/internal/protocol/frame"
)

// Close reasons reported on session teardown.
const (
	closePeerClosed = "peer_closed"
	closeTimeout    = "timeout"
	closeViolation  = "protocol_violation"
	closeTransport  = "transport_error"
	closeLimit      = "limit_reached"
	closeGuard      = "guard_expired"
	closeShutdown   = "shutdown"
)

// Dispatch outcomes recorded per served request.
const (
	outcomeOK             = "ok"
	outcomeUnknownRequest = "unknown_request"
	outcomeHandlerFailure = "handler_failure"
)

const (
	unknownRequestDiag = "unknown request"

	// Handler failure diagnostics are bounded before they go on the wire.
	maxDiagLen = 256
)

// handleConn owns one session from accept to teardown. The connection is
// closed exactly once, whichever of the session loop, the guard timer, or
// shutdown gets there first.
func (s *Service) handleConn(ctx context.Context, conn net.Conn) {
	defer s.untrackConn(conn)

	logger := s.logger.With().
		Str("session_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	var once sync.Once
	closeConn := func() { once.Do(func() { _ = conn.Close() }) }
	defer closeConn()

	active := s.sessionCount.Add(1)
	observability.RecordSessionStart()
	logger.Info().
		Int64("active_sessions", active).
		Str("profile", string(s.cfg.Robust.Profile())).
		Msg("client connected")

	var guardFired atomic.Bool
	if d := s.cfg.Robust.SessionGuard; d > 0 {
		guard := time.AfterFunc(d, func() {
			guardFired.Store(true)
			closeConn()
		})
		defer guard.Stop()
	}

	reason := s.serveSession(ctx, conn, logger)
	switch {
	case guardFired.Load():
		reason = closeGuard
	case ctx.Err() != nil && (reason == closeTransport || reason == closePeerClosed || reason == closeTimeout):
		reason = closeShutdown
	}

	remaining := s.sessionCount.Add(-1)
	observability.RecordSessionEnd(reason)
	logger.Info().
		Int64("active_sessions", remaining).
		Str("reason", reason).
		Msg("client disconnected")
}

// serveSession drains request frames until the session ends and returns the
// close reason.
func (s *Service) serveSession(ctx context.Context, conn net.Conn, logger zerolog.Logger) string {
	opts := frame.Options{
		Timeout:  s.cfg.Robust.FrameTimeout(),
		Validate: s.cfg.Robust.ValidateHeaders,
	}

	for served := 0; ; served++ {
		if max := s.cfg.Robust.MaxRequests; max > 0 && served >= max {
			logger.Info().Int("served", served).Msg("request ceiling reached")
			return closeLimit
		}

		req, err := frame.Recv(conn, opts)
		if err != nil {
			return s.finishOnRecvError(conn, err, opts, logger)
		}

		start := time.Now()
		respType, respPayload, herr := s.handler.Handle(ctx, req.Type, req.Payload)
		outcome := outcomeOK
		switch {
		case herr != nil:
			outcome = outcomeHandlerFailure
			respType = protocol.MsgRespError
			respPayload = diagPayload(herr.Error())
			logger.Error().Err(herr).Str("type", typeLabel(req.Type)).Msg("handler failed")
		case respType == protocol.MsgRespError:
			outcome = outcomeUnknownRequest
		}

		if err := frame.Send(conn, respType, respPayload, opts); err != nil {
			s.logWriteFailure(logger, err)
			return classifyIOErr(err)
		}
		observability.RecordRequest(typeLabel(req.Type), outcome, time.Since(start))
		logger.Debug().
			Str("type", typeLabel(req.Type)).
			Str("outcome", outcome).
			Int("request_bytes", len(req.Payload)).
			Int("response_bytes", len(respPayload)).
			Dur("duration", time.Since(start)).
			Msg("request served")
	}
}

// finishOnRecvError maps a receive failure to a close reason. Frames
// rejected for an out-of-set type are answered best effort before
// teardown; a peer that fails magic or length validation is not speaking
// this protocol and gets no reply.
func (s *Service) finishOnRecvError(conn net.Conn, err error, opts frame.Options, logger zerolog.Logger) string {
	switch {
	case errors.Is(err, netio.ErrPeerClosed):
		return closePeerClosed
	case errors.Is(err, net.ErrClosed):
		// Closed on our side by the guard timer or shutdown.
		return closeShutdown
	case errors.Is(err, netio.ErrTimeout):
		logger.Warn().Err(err).Msg("session i/o timeout")
		return closeTimeout
	case protocol.IsViolation(err):
		logger.Warn().Err(err).Msg("protocol violation")
		if errors.Is(err, protocol.ErrUnknownType) {
			if werr := frame.Send(conn, protocol.MsgRespError, []byte(unknownRequestDiag), opts); werr != nil {
				s.logWriteFailure(logger, werr)
			}
		}
		return closeViolation
	default:
		logger.Error().Err(err).Msg("session transport failure")
		return closeTransport
	}
}

func classifyIOErr(err error) string {
	switch {
	case errors.Is(err, netio.ErrPeerClosed):
		return closePeerClosed
	case errors.Is(err, net.ErrClosed):
		return closeShutdown
	case errors.Is(err, netio.ErrTimeout):
		return closeTimeout
	default:
		return closeTransport
	}
}

// logWriteFailure demotes broken-pipe noise when the profile asks for
// quiet writes. Writes that fail because we closed the connection
// ourselves are always quiet.
func (s *Service) logWriteFailure(logger zerolog.Logger, err error) {
	quiet := errors.Is(err, net.ErrClosed) ||
		(s.cfg.Robust.QuietBrokenPipe && errors.Is(err, netio.ErrPeerClosed))
	if quiet {
		logger.Debug().Err(err).Msg("reply write failed")
		return
	}
	logger.Warn().Err(err).Msg("reply write failed")
}

// typeLabel bounds metrics label cardinality for types outside the enum.
func typeLabel(t protocol.MessageType) string {
	if !t.Known() {
		return "unknown"
	}
	return t.String()
}

func diagPayload(msg string) []byte {
	if len(msg) > maxDiagLen {
		msg = msg[:maxDiagLen]
	}
	return []byte(msg)
}
