package transport

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of the
// first four so callers can classify failures with errors.Is.
var (
	// ErrInvalidConfiguration indicates a bad mode, address or port combination
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrResolutionFailure indicates the address or service lookup failed
	ErrResolutionFailure = errors.New("resolution failure")

	// ErrConnectionFailure indicates a socket could not be connected or bound
	ErrConnectionFailure = errors.New("connection failure")

	// ErrTransportFault indicates a read or write failed at runtime
	ErrTransportFault = errors.New("transport fault")

	// ErrNoPeer indicates a UDP send with no destination known yet
	ErrNoPeer = errors.New("no peer endpoint known")

	// ErrReactorStopped indicates an operation was issued after Stop
	ErrReactorStopped = errors.New("reactor stopped")
)

// SocketError represents a classified error with operation context.
type SocketError struct {
	Kind error  // one of the Err* kinds above
	Op   string // operation that caused the error
	Addr string // address if relevant
	Err  error  // underlying error
}

func (e *SocketError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("socketpdu %s %s: %v: %v", e.Op, e.Addr, e.Kind, e.Err)
	}
	return fmt.Sprintf("socketpdu %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *SocketError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// newSocketError creates a new SocketError
func newSocketError(kind error, op, addr string, err error) *SocketError {
	return &SocketError{
		Kind: kind,
		Op:   op,
		Addr: addr,
		Err:  err,
	}
}
