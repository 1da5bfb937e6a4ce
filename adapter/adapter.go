// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package adapter

import (
	"context"
	"net/http"

	"github.com/gogama/urlrequest/request"
)

// A Response is an immutable view of the headers of one HTTP response
// received by an Adapter.
type Response struct {
	// StatusCode is the HTTP status code, for example 200.
	StatusCode int
	// StatusText is the reason phrase, for example "OK". It may be
	// empty.
	StatusText string
	// Header holds the response headers. It must not be modified.
	Header http.Header
	// Protocol is the negotiated protocol, for example "h2" or
	// "http/1.1".
	Protocol string
	// Location is the absolute redirect target if the response is a
	// redirect, and empty otherwise.
	Location string
}

// IsRedirect indicates whether the response asks the client to follow
// a redirect.
func (r *Response) IsRedirect() bool {
	return r.Location != ""
}

// An Adapter executes the network side of a single request.
//
// Start, FollowRedirect and Read block, and are never called
// concurrently with each other or after Release. Abort may be called at
// any time from any goroutine, any number of times, and must make a
// blocked call return an error promptly. Release is called exactly
// once.
type Adapter interface {
	// Start sends the request and returns the first response. If the
	// response is a redirect it is returned as-is, not followed.
	Start() (*Response, error)
	// FollowRedirect follows the redirect in the most recent response
	// and returns the next response, which may itself be a redirect.
	FollowRedirect() (*Response, error)
	// Read reads the body of the most recent response. It returns
	// io.EOF at the end of the body.
	Read(p []byte) (int, error)
	// Abort cancels in-flight I/O.
	Abort()
	// Release frees all resources held by the adapter.
	Release()
}

// A Factory is the shared execution engine of a urlrequest.Context. It
// creates one Adapter per request.
//
// Implementations of Factory must be safe for concurrent use by
// multiple goroutines.
type Factory interface {
	// Init performs one-time initialization. It is called once, before
	// any adapter is started.
	Init(ctx context.Context) error
	// NewAdapter creates an adapter for the given plan. The adapter
	// does no I/O until Start is called.
	NewAdapter(p *request.Plan) (Adapter, error)
	// Close releases resources shared by all adapters, such as idle
	// connections.
	Close() error
}
