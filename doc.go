// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package urlrequest provides an asynchronous HTTP request engine: each
Request is a small state machine, driven by a per-Context network loop,
that streams its response body into a Sink and reports its lifecycle to
a Listener.

Create a Context once and reuse it.

	cfg, err := urlrequest.LoadConfig("urlrequest.yaml")
	...
	c, err := urlrequest.NewContext(cfg)
	...
	defer c.Close(context.Background())

For simple blocking use, the Get, Head, Post and PostForm helpers, and
Context.Do, buffer the whole response:

	resp, err := urlrequest.Get(c, "https://www.example.com")
	...
	fmt.Println(resp.StatusCode, string(resp.Body))

For streaming, create a request with a Sink and a Listener, then start
it. Start returns immediately; the listener is called on the network
loop as the request progresses.

	p, err := request.NewPlan("GET", "https://www.example.com/big", nil)
	...
	p.Priority = request.High
	r, err := c.NewRequest(p, sink, &urlrequest.ListenerFuncs{
		Complete: func(r *urlrequest.Request, code int, text string, err error) {
			log.Printf("%s: %d %s %v", r.ID(), code, text, err)
		},
	})
	...
	err = r.Start()

Cancel may be called from any goroutine, including from inside Sink.Write
or a listener method. A cancelled request reports status code -1, an
empty status text and a nil error. A request that failed before any
response arrived reports status code 0.

Every request reaches exactly one terminal state, exactly once. At that
moment its sink is closed, its result is cached and its adapter is
released, so adapter-backed accessors such as Request.Header return
ErrAdapterDestroyed from then on.

To hook into the details of request execution, install a handler into
the appropriate handler chain:

	handlers := &urlrequest.HandlerGroup{}
	handlers.PushBack(urlrequest.BeforeStart, urlrequest.HandlerFunc(
		func(_ urlrequest.Event, r *urlrequest.Request) {
			log.Printf("Starting %s", r.Plan().URL)
		}),
	)
	c, err := urlrequest.NewContext(cfg, urlrequest.WithHandlers(handlers))

Package adapter defines the boundary to the network stack, package
request defines plans and results, package timeout bounds request
running time and package neterr classifies network errors.
*/
package urlrequest
