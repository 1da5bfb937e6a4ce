// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"errors"

	"github.com/gogama/urlrequest/neterr"
)

var (
	// ErrInvalidState is returned by Request.Start when the request
	// was already started or cancelled.
	ErrInvalidState = errors.New("urlrequest: request already started or canceled")

	// ErrAdapterDestroyed is returned by adapter-backed accessors, such
	// as Request.Header, once the request's adapter has been released.
	ErrAdapterDestroyed = errors.New("urlrequest: adapter has been destroyed")

	// ErrContextClosed is returned when a closed Context is asked to
	// create a request or forward an operation.
	ErrContextClosed = errors.New("urlrequest: context closed")

	// ErrCanceled is returned by Context.Do when the request was
	// cancelled for a reason other than its plan's context, for example
	// by a timeout policy.
	ErrCanceled = errors.New("urlrequest: request canceled")

	// ErrContractViolation is the panic value used when the engine or a
	// sink detects a broken internal contract, such as a write after
	// the sink was closed. It always indicates a bug, never a runtime
	// condition to recover from.
	ErrContractViolation = errors.New("urlrequest: contract violation")

	// ErrRedirect is the terminal error of a request that received a
	// redirect it could not follow, because redirects are disabled, the
	// listener declined it, or the redirect limit was reached. Use
	// errors.Is to detect it.
	ErrRedirect error = &neterr.Error{
		Code:    neterr.TooManyRedirects,
		Message: "Request failed because there were too many redirects or redirects have been disabled",
	}
)
