//go:build !unix

package transport

import "net"

// listenConfig returns the default ListenConfig. SO_REUSEADDR has different
// semantics outside unix and is left unset.
func listenConfig() *net.ListenConfig {
	return &net.ListenConfig{}
}
