package limits

import (
	"errors"
	"fmt"
)

const (
	// DefaultTransferUnit is the receive buffer size and write chunk size used
	// when a bridge is configured without an explicit MTU.
	DefaultTransferUnit = 10000

	// MinTransferUnit is the smallest usable transfer unit.
	MinTransferUnit = 1

	// MaxDatagramPayload is the maximum UDP payload over IPv4
	// (65535 - 8 byte UDP header - 20 byte IP header).
	MaxDatagramPayload = 65507

	// MaxTransferUnit is the absolute maximum for any bridge (1MB).
	MaxTransferUnit = 1024 * 1024
)

var (
	// ErrTransferUnitTooSmall indicates an MTU below MinTransferUnit
	ErrTransferUnitTooSmall = errors.New("transfer unit too small")

	// ErrTransferUnitTooLarge indicates an MTU above MaxTransferUnit
	ErrTransferUnitTooLarge = errors.New("transfer unit too large")
)

// ValidateTransferUnit checks that mtu lies within [MinTransferUnit, MaxTransferUnit].
// Returns an error with context including the actual value and the violated bound.
func ValidateTransferUnit(mtu int) error {
	if mtu < MinTransferUnit {
		return fmt.Errorf("%w: %d is below minimum %d", ErrTransferUnitTooSmall, mtu, MinTransferUnit)
	}
	if mtu > MaxTransferUnit {
		return fmt.Errorf("%w: %d exceeds limit %d", ErrTransferUnitTooLarge, mtu, MaxTransferUnit)
	}
	return nil
}

// ValidateDatagramUnit checks that mtu fits in a single IPv4 UDP datagram in
// addition to the ValidateTransferUnit bounds.
func ValidateDatagramUnit(mtu int) error {
	if err := ValidateTransferUnit(mtu); err != nil {
		return err
	}
	if mtu > MaxDatagramPayload {
		return fmt.Errorf("%w: %d exceeds datagram payload limit %d", ErrTransferUnitTooLarge, mtu, MaxDatagramPayload)
	}
	return nil
}

// ChunkCount returns the number of writes needed to transmit length bytes in
// chunks of at most mtu bytes, i.e. ceil(length/mtu). A zero length needs no
// writes. mtu must be positive.
func ChunkCount(length, mtu int) int {
	if length <= 0 {
		return 0
	}
	return (length + mtu - 1) / mtu
}
