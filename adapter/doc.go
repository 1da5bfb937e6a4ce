// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package adapter defines the execution adapter contract used by the
urlrequest engine, and provides an implementation backed by net/http.

An Adapter performs the network side of exactly one request: sending it,
following redirects when told to, and streaming the response body. The
engine owns each Adapter exclusively, calls its blocking methods one at a
time from short-lived goroutines, and calls Release exactly once when the
request ends. Abort is the only method that may be called concurrently
with another one; it must cause any blocked call to return promptly.

HTTPFactory builds adapters over a shared http.Client whose transport is
configured for HTTP/2 using golang.org/x/net/http2:

	f := &adapter.HTTPFactory{UserAgent: "example/1.0", EnableHTTP2: true}
	if err := f.Init(ctx); err != nil {
		...
	}
	a, err := f.NewAdapter(plan)
*/
package adapter
