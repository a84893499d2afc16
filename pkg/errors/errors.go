// Copyright 2025 MRJCrunch
//
// Package errors defines the error taxonomy of the anoncreds protocol core.
// Errors carry a Code so that callers can branch on the kind of failure
// without matching message strings. A failed verification is not an error:
// Verify returns false.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a protocol error.
type Code string

const (
	// CodeInput covers malformed records, bit-length violations, unknown
	// schema identifiers and mismatched uuid sets between request and proof.
	CodeInput Code = "INPUT"

	// CodeNotFound covers wallet misses and claims that satisfy no
	// requested attribute or predicate.
	CodeNotFound Code = "NOT_FOUND"

	// CodeRevoked means the holder's witness index has been removed from
	// the accumulator; no valid proof can be produced.
	CodeRevoked Code = "REVOKED"

	// CodeCrypto covers arithmetic failures: a negative predicate delta,
	// a non-residue where a quadratic residue is required, an inverse of a
	// non-invertible element.
	CodeCrypto Code = "CRYPTO"
)

// Error is the concrete error type returned by the core.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error with the given code.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Input creates a CodeInput error.
func Input(format string, args ...interface{}) *Error {
	return New(CodeInput, format, args...)
}

// NotFound creates a CodeNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return New(CodeNotFound, format, args...)
}

// Revoked creates a CodeRevoked error.
func Revoked(format string, args ...interface{}) *Error {
	return New(CodeRevoked, format, args...)
}

// Crypto creates a CodeCrypto error.
func Crypto(format string, args ...interface{}) *Error {
	return New(CodeCrypto, format, args...)
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsNotFound reports whether err is a wallet or claim lookup miss.
func IsNotFound(err error) bool { return HasCode(err, CodeNotFound) }

// IsRevoked reports whether err signals a revoked witness.
func IsRevoked(err error) bool { return HasCode(err, CodeRevoked) }

// IsCrypto reports whether err signals an arithmetic failure.
func IsCrypto(err error) bool { return HasCode(err, CodeCrypto) }

// IsInput reports whether err signals malformed input.
func IsInput(err error) bool { return HasCode(err, CodeInput) }
