// Package server owns the TCP session endpoint.
//
// Ownership boundary:
// - listener lifecycle and signal-driven shutdown
// - per-session robustness policy (timeouts, validation, ceilings, guard)
// - request dispatch to a Handler and reply framing
// - the optional HTTP admin surface
//
// The server never interprets request payloads; that belongs to the
// Handler implementation.
package server
