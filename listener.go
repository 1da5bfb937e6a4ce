// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import "net/http"

// A Listener receives the lifecycle notifications of one request.
//
// All methods are called on the network loop, one at a time and in
// order: OnStart, then zero or more OnRedirect, then exactly one
// OnComplete. A request cancelled before it began executing receives
// only OnComplete. Methods must not block for long, since every request
// of the Context shares the loop.
type Listener interface {
	// OnStart is called when the network loop begins executing the
	// request.
	OnStart(r *Request)
	// OnRedirect is called when a redirect to url is received and
	// redirect following is enabled. header holds the headers of the
	// redirect response. Returning false stops the request, which then
	// fails with ErrRedirect.
	OnRedirect(r *Request, url string, header http.Header) bool
	// OnComplete is called exactly once, after the request reached its
	// terminal state and released its adapter. The arguments are the
	// same values Request.StatusCode, Request.StatusText and
	// Request.Err return from then on.
	OnComplete(r *Request, statusCode int, statusText string, err error)
}

// ResponseStartedListener is the interface implemented by listeners
// that also want to know when the final response headers arrive.
//
// OnResponseStarted is called after OnStart and any OnRedirect calls,
// and before the body is written to the sink. While it runs, the
// adapter-backed accessors Request.Header, Request.HeaderValue and
// Request.NegotiatedProtocol return the final response's values. When
// redirects are disabled, the redirect response itself is the final
// response.
type ResponseStartedListener interface {
	Listener
	OnResponseStarted(r *Request)
}

// ListenerFuncs is a Listener built from optional functions. A nil
// function is skipped; a nil Redirect follows every redirect.
type ListenerFuncs struct {
	Start           func(r *Request)
	Redirect        func(r *Request, url string, header http.Header) bool
	ResponseStarted func(r *Request)
	Complete        func(r *Request, statusCode int, statusText string, err error)
}

// OnStart calls l.Start if it is set.
func (l *ListenerFuncs) OnStart(r *Request) {
	if l.Start != nil {
		l.Start(r)
	}
}

// OnRedirect calls l.Redirect if it is set, and returns true otherwise.
func (l *ListenerFuncs) OnRedirect(r *Request, url string, header http.Header) bool {
	if l.Redirect != nil {
		return l.Redirect(r, url, header)
	}
	return true
}

// OnResponseStarted calls l.ResponseStarted if it is set.
func (l *ListenerFuncs) OnResponseStarted(r *Request) {
	if l.ResponseStarted != nil {
		l.ResponseStarted(r)
	}
}

// OnComplete calls l.Complete if it is set.
func (l *ListenerFuncs) OnComplete(r *Request, statusCode int, statusText string, err error) {
	if l.Complete != nil {
		l.Complete(r, statusCode, statusText, err)
	}
}
