package cube

import (
	"fmt"

	"github.com/apache/arrow-adbc/go/adbc"
)

// ErrorKind classifies every failure the driver core can produce.
type ErrorKind int

const (
	// ErrInvalidArgument means bad configuration: missing host or token,
	// invalid port, empty SQL. A missing port falls back to the default.
	ErrInvalidArgument ErrorKind = iota
	// ErrInvalidState means an operation was called in the wrong client
	// state, e.g. ExecuteQuery before Authenticate.
	ErrInvalidState
	// ErrIo is a transport failure: socket read/write error, EOF mid-frame,
	// DNS failure.
	ErrIo
	// ErrProtocol is a framing or message-level violation on either the
	// native envelope or the Arrow IPC stream.
	ErrProtocol
	// ErrUnauthenticated means the server rejected the auth token.
	ErrUnauthenticated
	// ErrUnsupported means the result schema uses an Arrow type this driver
	// does not implement.
	ErrUnsupported
	// ErrServer carries an in-band server error message.
	ErrServer
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrInvalidState:
		return "invalid state"
	case ErrIo:
		return "io"
	case ErrProtocol:
		return "protocol"
	case ErrUnauthenticated:
		return "unauthenticated"
	case ErrUnsupported:
		return "unsupported"
	case ErrServer:
		return "server error"
	}
	return "unknown"
}

// Error is the driver's error type. ServerCode is only set for ErrServer.
type Error struct {
	Kind       ErrorKind
	Msg        string
	ServerCode string
	cause      error
}

func (e *Error) Error() string {
	if e.Kind == ErrServer && e.ServerCode != "" {
		return fmt.Sprintf("cube: %s [%s]: %s", e.Kind, e.ServerCode, e.Msg)
	}
	return fmt.Sprintf("cube: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: cause}
}

// toADBC converts a driver error into the ADBC error struct, preserving the
// message and mapping the kind onto the closest ADBC status code.
func toADBC(err error) error {
	if err == nil {
		return nil
	}
	e, ok := err.(*Error)
	if !ok {
		return adbc.Error{Code: adbc.StatusUnknown, Msg: err.Error()}
	}
	var code adbc.Status
	switch e.Kind {
	case ErrInvalidArgument:
		code = adbc.StatusInvalidArgument
	case ErrInvalidState:
		code = adbc.StatusInvalidState
	case ErrIo:
		code = adbc.StatusIO
	case ErrProtocol:
		code = adbc.StatusInternal
	case ErrUnauthenticated:
		code = adbc.StatusUnauthenticated
	case ErrUnsupported:
		code = adbc.StatusNotImplemented
	case ErrServer:
		code = adbc.StatusUnknown
	default:
		code = adbc.StatusUnknown
	}
	return adbc.Error{Code: code, Msg: e.Error()}
}
