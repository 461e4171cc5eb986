package protocol

import (
	"errors"
	"fmt"
)

// Class sentinels. Every error produced by the codec matches exactly one
// of ErrIO, ErrProtocol or ErrValidation under errors.Is.
var (
	ErrIO         = errors.New("wbxml: i/o error")
	ErrProtocol   = errors.New("wbxml: protocol error")
	ErrValidation = errors.New("wbxml: validation error")
)

var ErrUnexpectedEndOfStream = errors.New("wbxml: unexpected end of stream")

// Protocol error reasons. They carry no prefix because they only surface
// through ProtocolError, which adds it.
var (
	ErrUnsupportedVersion    = errors.New("unsupported version")
	ErrUnsupportedCharset    = errors.New("unsupported charset")
	ErrUnknownCodepage       = errors.New("unknown codepage")
	ErrUnknownTag            = errors.New("unknown tag")
	ErrAttributesUnsupported = errors.New("tag attributes unsupported")
	ErrUnbalancedEnd         = errors.New("end token without open element")
	ErrDataOutsideElement    = errors.New("data outside element")
	ErrIntegerOverflow       = errors.New("multi-byte integer overflows 64 bits")
	ErrMisplacedTag          = errors.New("misplaced tag")
	ErrInvalidValue          = errors.New("invalid value")
)

// IOError reports a failing or prematurely exhausted byte source or sink.
type IOError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("wbxml: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("wbxml: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// ProtocolError reports well-delivered bytes that break the format rules.
type ProtocolError struct {
	Offset int64
	Reason error
	Detail string
}

func (e *ProtocolError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("wbxml: offset %d: %v", e.Offset, e.Reason)
	}
	return fmt.Sprintf("wbxml: offset %d: %v: %s", e.Offset, e.Reason, e.Detail)
}

func (e *ProtocolError) Unwrap() error { return e.Reason }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// ValidationError rejects arguments to data-model constructors.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wbxml: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Protocolf builds a ProtocolError for reason with a formatted detail.
func Protocolf(offset int64, reason error, format string, args ...any) error {
	return &ProtocolError{Offset: offset, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Truncated builds the IOError raised when op ran out of input.
func Truncated(op string, offset int64) error {
	return &IOError{Op: op, Offset: offset, Err: ErrUnexpectedEndOfStream}
}
