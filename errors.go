package siwe

import (
	"fmt"
	"strings"
)

// ErrorKind classifies the failure modes of message construction and
// verification.
type ErrorKind string

const (
	// ErrorKindInvalidInputKeys means a construction or verification
	// record contained keys outside the recognized set.
	ErrorKindInvalidInputKeys ErrorKind = "invalid_input_keys"

	// ErrorKindMalformedMessage means the message (raw or assembled
	// from fields) does not conform to the EIP-4361 grammar.
	ErrorKindMalformedMessage ErrorKind = "malformed_message"

	ErrorKindSchemeMismatch ErrorKind = "scheme_mismatch"
	ErrorKindDomainMismatch ErrorKind = "domain_mismatch"
	ErrorKindNonceMismatch  ErrorKind = "nonce_mismatch"

	ErrorKindExpiredMessage     ErrorKind = "expired_message"
	ErrorKindNotYetValidMessage ErrorKind = "not_yet_valid_message"

	ErrorKindInvalidSignature ErrorKind = "invalid_signature"
)

var errorKindMessages = map[ErrorKind]string{
	ErrorKindInvalidInputKeys:   "unrecognized input keys",
	ErrorKindMalformedMessage:   "message is not a valid EIP-4361 message",
	ErrorKindSchemeMismatch:     "scheme does not match provided scheme for verification",
	ErrorKindDomainMismatch:     "domain does not match provided domain for verification",
	ErrorKindNonceMismatch:      "nonce does not match provided nonce for verification",
	ErrorKindExpiredMessage:     "message is expired",
	ErrorKindNotYetValidMessage: "message is not valid yet",
	ErrorKindInvalidSignature:   "signature does not match address of the message",
}

// Error is the failure value produced by construction and verification.
// Binding and temporal mismatches carry both the expected and received
// value for diagnostics.
type Error struct {
	Kind     ErrorKind
	Expected string
	Received string

	// InternalError holds the underlying cause, when one exists (a
	// parser diagnostic, an adapter failure).
	InternalError error
}

func newError(kind ErrorKind, expected, received string) *Error {
	return &Error{Kind: kind, Expected: expected, Received: received}
}

// WithInternalError attaches the underlying cause to the error.
func (e *Error) WithInternalError(err error) *Error {
	e.InternalError = err
	return e
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("siwe: ")

	if msg, ok := errorKindMessages[e.Kind]; ok {
		sb.WriteString(msg)
	} else {
		sb.WriteString(string(e.Kind))
	}

	if e.Expected != "" || e.Received != "" {
		fmt.Fprintf(&sb, ": expected %q, got %q", e.Expected, e.Received)
	}
	if e.InternalError != nil {
		fmt.Fprintf(&sb, ": %s", e.InternalError)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.InternalError
}

// IsErrorKind reports whether err is a *Error of the given kind.
func IsErrorKind(err error, kind ErrorKind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}
