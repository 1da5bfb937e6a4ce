// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import "time"

// Status code sentinels stored in a Result.
const (
	// StatusNone means no HTTP status was ever delivered for the
	// request. Cancelled requests always report StatusNone.
	StatusNone = -1
	// StatusNoResponse is reported by requests that failed before any
	// HTTP response was received, for example when the connection
	// could not be established.
	StatusNoResponse = 0
)

// A Result holds the values a request caches when it reaches its
// terminal state.
//
// A Result is written exactly once, immediately before the request's
// execution adapter is released, and never changes afterwards. Reading
// it therefore never requires the adapter.
type Result struct {
	// StatusCode is the HTTP status code of the final response, or one
	// of the sentinels StatusNone and StatusNoResponse.
	StatusCode int

	// StatusText is the reason phrase of the final response, for
	// example "OK". It is empty when there was no response, when the
	// server sent no phrase, or when the request was cancelled.
	StatusText string

	// Err is the terminal error. It is nil when the request completed
	// successfully and nil when it was cancelled.
	Err error

	// Start is the time the network loop began executing the request.
	// It is zero if the request was cancelled before it began.
	Start time.Time

	// End is the time the request reached its terminal state. It is
	// zero until then.
	End time.Time

	// Redirects is the number of redirects that were followed.
	Redirects int

	// BytesWritten is the number of response body bytes written to the
	// request's sink.
	BytesWritten int64
}

// Started indicates whether execution of the request began.
func (r *Result) Started() bool {
	return r.Start != (time.Time{})
}

// Ended indicates whether the request reached its terminal state.
func (r *Result) Ended() bool {
	return r.End != (time.Time{})
}

// Duration returns the time from Start to End. It is zero unless the
// request both started and ended.
func (r *Result) Duration() time.Duration {
	if !r.Started() || !r.Ended() {
		return time.Duration(0)
	}

	return r.End.Sub(r.Start)
}

// Received indicates whether an HTTP status was cached, as opposed to
// one of the sentinels.
func (r *Result) Received() bool {
	return r.StatusCode > StatusNoResponse
}
