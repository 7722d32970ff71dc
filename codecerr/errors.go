// Package codecerr defines the error kinds shared by the uwacomm codec,
// framing and transport packages. Errors are classified by Kind so that
// callers can react to a failure class without matching message strings.
package codecerr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of codec failure.
type Kind uint8

// The supported error kinds.
const (
	// KindUnknown is reported for errors that did not originate in uwacomm.
	KindUnknown Kind = iota

	// OutOfRange indicates a value that does not satisfy a field's declared
	// bounds, or a varid/length overflow.
	OutOfRange

	// Truncated indicates that the decoder ran out of bits or bytes.
	Truncated

	// CorruptValue indicates well-formed length but invalid content: bad
	// UTF-8, an enum index outside the declared set, a failed checksum or a
	// malformed varid.
	CorruptValue

	// UnknownMessageID indicates a decoded message id that is not present
	// in the registry.
	UnknownMessageID

	// OversizeMessage indicates an encoded body that exceeds the declared
	// max_bytes limit or a transport MTU.
	OversizeMessage

	// InvalidSchema indicates a descriptor that was rejected at
	// construction time.
	InvalidSchema
)

// String implements fmt.Stringer for Kind.
func (k Kind) String() string {
	switch k {
	case OutOfRange:
		return "out of range"
	case Truncated:
		return "truncated"
	case CorruptValue:
		return "corrupt value"
	case UnknownMessageID:
		return "unknown message id"
	case OversizeMessage:
		return "oversize message"
	case InvalidSchema:
		return "invalid schema"
	}
	return "unknown error"
}

// ErrBadChecksum is the cause attached to CorruptValue errors raised by a
// failed CRC comparison. Use errors.Is to test for it.
var ErrBadChecksum = errors.New("bad checksum")

// Error is the concrete error type returned by the uwacomm packages.
type Error struct {
	kind  Kind
	field string
	msg   string
	cause error
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind whose cause is err. The cause
// remains reachable via errors.Is / errors.As.
func Wrap(err error, kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: err}
}

// InField returns a copy of the error annotated with the name of the field
// that triggered it.
func (e *Error) InField(name string) *Error {
	clone := *e
	clone.field = name
	return &clone
}

// Kind returns the error class.
func (e *Error) Kind() Kind {
	return e.kind
}

// Field returns the name of the offending field, if one was recorded.
func (e *Error) Field() string {
	return e.field
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.msg
	if e.cause != nil {
		msg = msg + ": " + e.cause.Error()
	}
	if e.field != "" {
		return fmt.Sprintf("%s: field %q: %s", e.kind, e.field, msg)
	}
	return fmt.Sprintf("%s: %s", e.kind, msg)
}

// Unwrap exposes the wrapped cause to the errors package.
func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf classifies err. It returns KindUnknown for nil errors and for
// errors that were not produced by uwacomm.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.kind
	}
	return KindUnknown
}
