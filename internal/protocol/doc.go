// Package protocol owns the wire contract and parsing primitives.
//
// Ownership boundary:
// - fixed header encode/decode
// - message type registry
// - header validation entry points
package protocol
