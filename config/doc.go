// Package config defines the construction parameters of a socket PDU bridge
// and the ways a host process can produce them.
//
// A Config is built from Default and then adjusted by, in order, a YAML file
// (LoadFile), SOCKETPDU_* environment variables (ApplyEnvironmentOverrides)
// and finally explicit values set by the host. Validate checks the result
// before a bridge is constructed; the bridge treats the Config as immutable
// afterwards.
//
// Example file:
//
//	mode: udp_server
//	address: 0.0.0.0
//	port: "9999"
//	mtu: 1500
//	no_delay: false
//
// Environment variables:
//
//	SOCKETPDU_MODE      tcp_server | tcp_client | udp_server | udp_client
//	SOCKETPDU_ADDRESS   host name or IPv4 address
//	SOCKETPDU_PORT      numeric port or service name
//	SOCKETPDU_MTU       transfer unit in bytes
//	SOCKETPDU_NO_DELAY  boolean, TCP only
//
// Malformed environment values are logged and ignored.
package config
