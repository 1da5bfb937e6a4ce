// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the core value types Plan (describes an HTTP
request) and Result (the values a request caches when it ends).

A Plan describes how to make a logical HTTP request. For those familiar
with the Go standard HTTP library, net/http, a Plan looks like a
stripped-down http.Request structure with all server-side fields
removed and the body replaced with a simple pre-buffered []byte. Two
fields are specific to this package: Priority orders queued starts, and
FollowRedirects controls redirect handling.

Create a plan and hand it to a urlrequest.Context:

	p, err := request.NewPlan("GET", "https://example.com", nil)
	...
	p.Priority = request.High
	p.DisableRedirects()
	r := ctx.NewRequest(p, sink, listener)

A plan may be assigned a context. When that context is done, the request
built from the plan is cancelled:

	p, err := request.NewPlanWithContext(ctx, "POST", "https://example.com/upload", body)
	...

A Result is produced exactly once per request, at its terminal
transition. Its StatusCode uses two sentinels: StatusNone (-1) when no
status was delivered, which includes every cancelled request, and
StatusNoResponse (0) when the request failed before any response
arrived.
*/
package request
