// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels for use with errors.Is. Every typed error in this package matches
// exactly one of them.
var (
	ErrTypeMismatch    = errors.New("frpc: type mismatch")
	ErrKeyNotFound     = errors.New("frpc: key not found")
	ErrIndexOutOfRange = errors.New("frpc: index out of range")
	ErrFormat          = errors.New("frpc: format error")
	ErrLimitExceeded   = errors.New("frpc: limit exceeded")
	ErrTimeout         = errors.New("frpc: timeout")
	ErrConnection      = errors.New("frpc: connection error")
	ErrStream          = errors.New("frpc: stream error")
	ErrFault           = errors.New("frpc: fault")

	// ErrEarlyResponse is returned by SendData when the peer starts answering
	// (or closes) while the request body is still being written.
	ErrEarlyResponse = errors.New("frpc: response received while sending")
)

// TypeError reports a downcast to the wrong variant.
type TypeError struct {
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("Type is %s but not %s", e.Actual, e.Expected)
}

func (e *TypeError) Is(target error) bool { return target == ErrTypeMismatch }

// KeyError reports a Struct lookup miss.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("Key %q not found", e.Key)
}

func (e *KeyError) Is(target error) bool { return target == ErrKeyNotFound }

// IndexError reports an Array access outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("Index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// FormatError reports malformed textual input, e.g. an ISO-8601 date-time.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bad format %q: %s", e.Input, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// LimitError reports a header line or body larger than the configured limit.
type LimitError struct {
	What  string // "line" or "body"
	Limit int64
	Size  int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s size %d exceeds limit %d", e.What, e.Size, e.Limit)
}

func (e *LimitError) Is(target error) bool { return target == ErrLimitExceeded }

// TimeoutError reports an expired read or write deadline.
type TimeoutError struct {
	Op    string // "read" or "write"
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timeout after %v", e.Op, e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Timeout makes TimeoutError look like a net.Error timeout.
func (e *TimeoutError) Timeout() bool { return true }

// ConnectionError reports a closed peer or a socket fault.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connection error during %s", e.Op)
	}
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

func (e *ConnectionError) Unwrap() error { return e.Err }

// StreamError reports a protocol framing violation.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string { return e.Message }

func (e *StreamError) Is(target error) bool { return target == ErrStream }

// streamErrorf builds a StreamError from a format string.
func streamErrorf(format string, args ...any) *StreamError {
	return &StreamError{Message: fmt.Sprintf(format, args...)}
}

// FaultError carries a remote Fault value as a Go error.
type FaultError struct {
	Code    int64
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("fault %d: %s", e.Code, e.Message)
}

func (e *FaultError) Is(target error) bool { return target == ErrFault }

// IsFatal reports whether err leaves the connection in an unusable state.
// Callers should close the connection on fatal errors and merely report a
// fault for the rest.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrConnection),
		errors.Is(err, ErrLimitExceeded),
		errors.Is(err, ErrStream),
		errors.Is(err, ErrTimeout),
		errors.Is(err, ErrEarlyResponse):
		return true
	}
	return false
}

// ErrorKind returns a short stable label for err, used as a metric attribute.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrLimitExceeded):
		return "limit"
	case errors.Is(err, ErrStream):
		return "stream"
	case errors.Is(err, ErrEarlyResponse):
		return "early_response"
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrTypeMismatch):
		return "type"
	case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrIndexOutOfRange):
		return "lookup"
	}
	return "other"
}
