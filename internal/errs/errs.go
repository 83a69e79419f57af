// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package errs defines the tagged-variant error taxonomy shared by every
// layer of BioGuard: parsers, stores, services and controllers all raise or
// propagate an *errs.Error carrying one of the Kind values below, and the
// controller layer is the single place that turns a Kind into a status
// line.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure a controller must map to a
// status-coded response. It replaces the class hierarchy of exceptions a
// Java port of this service would use with one flat enum.
type Kind int

const (
	// Unexpected is the catch-all kind for anything that doesn't fit one
	// of the named categories below.
	Unexpected Kind = iota

	// InvalidFormat covers framing problems and body-parser failures.
	InvalidFormat

	// Validation covers field-range and regex rule violations.
	Validation

	// NotFound covers missing patients, diseases, or diagnosis matches.
	NotFound

	// Conflict covers duplicate documents and duplicate samples.
	Conflict

	// CorruptedData covers integrity-hash mismatches and unparseable rows.
	CorruptedData

	// Persistence covers filesystem/I-O failures.
	Persistence

	// RouteNotFound covers an unrecognized METHOD:ACTION pair.
	RouteNotFound

	// MalformedRequest covers a frame that cannot be split into three parts.
	MalformedRequest
)

// String returns the taxonomy name used in the wire-protocol status line,
// e.g. "[TCP][404][NotFound]".
func (k Kind) String() string {
	switch k {
	case InvalidFormat:
		return "InvalidFormat"
	case Validation:
		return "ValidationError"
	case NotFound:
		return "NotFound"
	case Conflict:
		return "Conflict"
	case CorruptedData:
		return "InternalError"
	case Persistence:
		return "InternalError"
	case RouteNotFound:
		return "RouteNotFound"
	case MalformedRequest:
		return "MalformedRequest"
	default:
		return "InternalError"
	}
}

// Status returns the numeric status code associated with the kind, per the
// error-class table in the protocol specification.
func (k Kind) Status() int {
	switch k {
	case InvalidFormat, Validation, MalformedRequest:
		return 400
	case NotFound, RouteNotFound:
		return 404
	case Conflict:
		return 409
	case CorruptedData, Persistence, Unexpected:
		return 500
	default:
		return 500
	}
}

// Error is the single concrete error type used across BioGuard. It pairs a
// Kind with a message and an optional wrapped cause.
//
// # Thread Safety
//
// Error values are immutable after construction and safe to share across
// goroutines.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Fields lists the offending field names for a Validation error. Empty
	// for every other kind.
	Fields []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, enabling errors.Is/errors.As through
// the chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error of the given kind with a plain message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind wrapping cause. If cause is
// already an *Error, its Kind is preserved and only the message/cause are
// updated: BioGuard never double-classifies an error that already carries
// a kind.
func Wrap(kind Kind, message string, cause error) *Error {
	var existing *Error
	if errors.As(cause, &existing) {
		return &Error{Kind: existing.Kind, Message: message, Cause: cause, Fields: existing.Fields}
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Validationf builds a Validation error listing the offending fields.
func Validationf(fields []string, format string, args ...any) *Error {
	return &Error{Kind: Validation, Message: fmt.Sprintf(format, args...), Fields: fields}
}

// InvalidFormatf builds an InvalidFormat error with a formatted message.
func InvalidFormatf(format string, args ...any) *Error {
	return &Error{Kind: InvalidFormat, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a Conflict error with a formatted message.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// CorruptedDataf builds a CorruptedData error with a formatted message.
func CorruptedDataf(format string, args ...any) *Error {
	return &Error{Kind: CorruptedData, Message: fmt.Sprintf(format, args...)}
}

// Persistencef builds a Persistence error with a formatted message.
func Persistencef(format string, args ...any) *Error {
	return &Error{Kind: Persistence, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind carried by err if it is (or wraps) an *Error,
// and Unexpected otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}
