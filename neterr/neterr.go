// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package neterr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// A Code is a network error code. All codes are negative.
type Code int

const (
	// Failed is the generic failure code, used for every error that
	// no more specific code describes.
	Failed Code = -2
	// Aborted indicates the operation was aborted, typically because
	// its context was cancelled.
	Aborted Code = -3
	// TimedOut indicates a client-side timeout. Categorize returns
	// TimedOut if the error or any of its wrapped causes has a
	// Timeout() method that reports true.
	TimedOut Code = -7
	// ConnectionReset corresponds to the POSIX error ECONNRESET.
	ConnectionReset Code = -101
	// ConnectionRefused corresponds to the POSIX error ECONNREFUSED.
	ConnectionRefused Code = -102
	// NameNotResolved indicates the host name could not be resolved.
	NameNotResolved Code = -105
	// InvalidURL indicates the URL could not be used for a request.
	InvalidURL Code = -300
	// TooManyRedirects indicates a redirect could not be followed,
	// either because redirects are disabled or because the redirect
	// limit was reached.
	TooManyRedirects Code = -310
)

var codeNames = map[Code]string{
	Failed:            "ERR_FAILED",
	Aborted:           "ERR_ABORTED",
	TimedOut:          "ERR_TIMED_OUT",
	ConnectionReset:   "ERR_CONNECTION_RESET",
	ConnectionRefused: "ERR_CONNECTION_REFUSED",
	NameNotResolved:   "ERR_NAME_NOT_RESOLVED",
	InvalidURL:        "ERR_INVALID_URL",
	TooManyRedirects:  "ERR_TOO_MANY_REDIRECTS",
}

// Name returns the symbolic name of the code, for example "ERR_FAILED".
func (c Code) Name() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERR_%d", -int(c))
}

// String returns the name of the code.
func (c Code) String() string {
	return c.Name()
}

// Categorize returns the network error code for err. A nil error has
// no code and produces 0.
//
// In assessing err, Categorize looks at wrapped cause errors contained
// within err, not just err itself.
func Categorize(err error) Code {
	if err == nil {
		return 0
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	if errors.Is(err, context.Canceled) {
		return Aborted
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return TimedOut
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimedOut
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnectionReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnectionRefused
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NameNotResolved
	}

	return Failed
}

type hasTimeout interface {
	Timeout() bool
}

// An Error is a request failure carrying a network error code.
type Error struct {
	// Code is the network error code.
	Code Code
	// Message optionally replaces the default system error text.
	Message string
	// Err is the underlying cause. It may be nil.
	Err error
}

// Wrap converts err into an *Error, categorizing it with Categorize.
// If err already is or wraps an *Error, that *Error is returned. Wrap
// returns nil if err is nil.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{Code: Categorize(err), Err: err}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("System error: net::%s(%d)", e.Code.Name(), int(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code and
// message, so that sentinel *Error values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}
