// Package main provides a command-line host for a socket PDU bridge.
//
// Each line read from stdin is delivered to the bridge as one PDU and written
// to the socket. Every PDU the bridge publishes is written to stdout, either
// as one hex-encoded line or as a CBOR record.
//
// Settings are taken from, in increasing precedence, built-in defaults, an
// optional YAML file (--config), SOCKETPDU_* environment variables and
// command-line flags.
package main
