// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"net/http"
	"net/url"

	"github.com/gogama/urlrequest/request"
)

// A Response is the buffered outcome of a request executed with a
// Doer.
type Response struct {
	request.Result

	// ID is the identifier of the request that produced the response.
	ID string
	// Header holds the headers of the final response, or nil if no
	// final response arrived.
	Header http.Header
	// Protocol is the negotiated protocol of the final response.
	Protocol string
	// Body is everything the request wrote to its sink.
	Body []byte
}

// Doer is the interface that wraps the basic Do method.
//
// Do executes an HTTP request plan to its terminal state and returns
// the buffered response (and error, if any). Context implements the
// Doer interface, and any other Doer implementation must behave
// substantially the same as Context.Do.
type Doer interface {
	Do(p *request.Plan) (*Response, error)
}

// Do creates a request for p with a BufferSink, starts it and blocks
// until it reaches a terminal state.
//
// The returned Response is nil only if the request could not be
// created. Otherwise it carries the cached result and whatever body was
// received, and the returned error is the request's terminal error; the
// plan context's error if the plan context cancelled it; or ErrCanceled
// if it was cancelled some other way. A non-2XX status code does not
// result in an error.
func (c *Context) Do(p *request.Plan) (*Response, error) {
	sink := &BufferSink{}
	resp := &Response{}
	l := &ListenerFuncs{
		ResponseStarted: func(r *Request) {
			// The adapter is only released after the last notification,
			// so neither accessor can fail here.
			resp.Header, _ = r.Header()
			resp.Protocol, _ = r.NegotiatedProtocol()
		},
	}

	r, err := c.NewRequest(p, sink, l)
	if err != nil {
		return nil, err
	}
	// A request cancelled before Start still runs to Canceled.
	if err = r.Start(); err != nil && !r.IsCanceled() {
		return nil, err
	}
	<-r.Done()

	resp.ID = r.ID()
	resp.Result = r.Result()
	resp.Body = sink.Bytes()
	switch {
	case resp.Err != nil:
		return resp, resp.Err
	case r.Outcome() == Canceled:
		if err = p.Context().Err(); err != nil {
			return resp, err
		}
		return resp, ErrCanceled
	default:
		return resp, nil
	}
}

// Get uses the specified Doer to issue a GET to the specified URL,
// using the same policies as d.Do.
//
// To make a request plan with custom headers, use request.NewPlan and
// d.Do.
func Get(d Doer, url string) (*Response, error) {
	p, err := request.NewPlan("GET", url, nil)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

// Head uses the specified Doer to issue a HEAD to the specified URL,
// using the same policies as d.Do.
func Head(d Doer, url string) (*Response, error) {
	p, err := request.NewPlan("HEAD", url, nil)
	if err != nil {
		return nil, err
	}
	return d.Do(p)
}

// Post uses the specified Doer to issue a POST to the specified URL,
// using the same policies as d.Do.
//
// The body parameter is buffered by request.NewPlan, which documents
// the accepted types.
func Post(d Doer, url, contentType string, body interface{}) (*Response, error) {
	p, err := request.NewPlan("POST", url, body)
	if err != nil {
		return nil, err
	}
	p.Header.Set("Content-Type", contentType)
	return d.Do(p)
}

// PostForm uses the specified Doer to issue a POST to the specified URL,
// with data's keys and values URL-encoded as the request body.
//
// The Content-Type header is set to application/x-www-form-urlencoded.
// To set other headers, use request.NewPlan and d.Do.
func PostForm(d Doer, url string, data url.Values) (*Response, error) {
	return Post(d, url, "application/x-www-form-urlencoded", data.Encode())
}
