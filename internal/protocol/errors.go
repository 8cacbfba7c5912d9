package protocol

import "errors"

var (
	ErrInvalidMagic    = errors.New("protocol: invalid magic")
	ErrUnknownType     = errors.New("protocol: unknown message type")
	ErrPayloadTooLarge = errors.New("protocol: payload too large")
	ErrShortHeader     = errors.New("protocol: short header")
)

// IsViolation reports whether err is a header validation failure.
// A violating header means the stream is desynchronized and the
// session must not attempt further frames on it.
func IsViolation(err error) bool {
	return errors.Is(err, ErrInvalidMagic) ||
		errors.Is(err, ErrUnknownType) ||
		errors.Is(err, ErrPayloadTooLarge)
}
