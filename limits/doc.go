// Package limits provides the transfer-unit constants and validation functions
// shared by the socket PDU bridge and its configuration layer.
//
// # Transfer Units
//
// The maximum transfer unit (MTU) bounds two things at once: the number of
// bytes requested by a single socket read, and the size of each chunk written
// when an outbound payload is larger than one unit.
//
//   - DefaultTransferUnit (10000 bytes): used when no MTU is configured.
//
//   - MaxDatagramPayload (65507 bytes): the largest payload a single IPv4 UDP
//     datagram can carry. UDP bridges are validated against it with
//     ValidateDatagramUnit.
//
//   - MaxTransferUnit (1MB): the absolute maximum for any bridge. This keeps
//     per-connection receive buffers bounded.
//
// # Validation Functions
//
//	err := limits.ValidateTransferUnit(mtu) // or ValidateDatagramUnit for UDP
//	if err != nil {
//	    // ErrTransferUnitTooSmall or ErrTransferUnitTooLarge
//	}
//
// ChunkCount reports how many writes a payload of a given length needs.
package limits
