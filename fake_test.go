// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogama/urlrequest/adapter"
	"github.com/gogama/urlrequest/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFactory hands out scripted adapters.
type fakeFactory struct {
	initErr  error
	initGate chan struct{}
	script   func(a *fakeAdapter)

	mu       sync.Mutex
	adapters []*fakeAdapter
	inits    int32
	closes   int32
}

func (f *fakeFactory) Init(_ context.Context) error {
	if f.initGate != nil {
		<-f.initGate
	}
	atomic.AddInt32(&f.inits, 1)
	return f.initErr
}

func (f *fakeFactory) NewAdapter(p *request.Plan) (adapter.Adapter, error) {
	a := &fakeAdapter{
		plan:      p,
		responses: []*adapter.Response{ok()},
		aborted:   make(chan struct{}),
	}
	if f.script != nil {
		f.script(a)
	}
	f.mu.Lock()
	f.adapters = append(f.adapters, a)
	f.mu.Unlock()
	return a, nil
}

func (f *fakeFactory) Close() error {
	atomic.AddInt32(&f.closes, 1)
	return nil
}

func (f *fakeFactory) nth(i int) *fakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adapters[i]
}

// fakeAdapter returns responses in order, then the body chunks, then
// readErr or io.EOF. If stall is set it blocks after the chunks until
// aborted.
type fakeAdapter struct {
	plan      *request.Plan
	responses []*adapter.Response
	startErr  error
	chunks    []string
	readErr   error
	stall     bool

	next      int
	chunk     int
	aborted   chan struct{}
	abortOnce sync.Once
	releases  int32
}

func (a *fakeAdapter) Start() (*adapter.Response, error) {
	if a.startErr != nil {
		return nil, a.startErr
	}
	return a.respond()
}

func (a *fakeAdapter) FollowRedirect() (*adapter.Response, error) {
	return a.respond()
}

func (a *fakeAdapter) respond() (*adapter.Response, error) {
	if a.next >= len(a.responses) {
		return nil, io.ErrUnexpectedEOF
	}
	resp := a.responses[a.next]
	a.next++
	return resp, nil
}

func (a *fakeAdapter) Read(p []byte) (int, error) {
	if a.chunk < len(a.chunks) {
		n := copy(p, a.chunks[a.chunk])
		a.chunk++
		return n, nil
	}
	if a.stall {
		<-a.aborted
		return 0, context.Canceled
	}
	if a.readErr != nil {
		return 0, a.readErr
	}
	return 0, io.EOF
}

func (a *fakeAdapter) Abort() {
	a.abortOnce.Do(func() { close(a.aborted) })
}

func (a *fakeAdapter) Release() {
	atomic.AddInt32(&a.releases, 1)
	a.Abort()
}

func (a *fakeAdapter) released() int32 {
	return atomic.LoadInt32(&a.releases)
}

func ok() *adapter.Response {
	return &adapter.Response{
		StatusCode: 200,
		StatusText: "OK",
		Header:     http.Header{"Content-Type": {"text/plain"}},
		Protocol:   "http/1.1",
	}
}

func found(location string) *adapter.Response {
	return &adapter.Response{
		StatusCode: 302,
		StatusText: "Found",
		Header: http.Header{
			"Redirect-Header": {"header-value"},
			"Location":        {location},
		},
		Protocol: "http/1.1",
		Location: location,
	}
}

// recorder is a ResponseStartedListener that records what it is told.
type recorder struct {
	redirect func(url string) bool

	mu        sync.Mutex
	events    []string
	header    http.Header
	headerErr error
	protocol  string
	status    int
	text      string
	err       error
	completes int
}

func (l *recorder) add(evt string) {
	l.mu.Lock()
	l.events = append(l.events, evt)
	l.mu.Unlock()
}

func (l *recorder) OnStart(_ *Request) {
	l.add("start")
}

func (l *recorder) OnRedirect(_ *Request, url string, _ http.Header) bool {
	l.add("redirect " + url)
	if l.redirect != nil {
		return l.redirect(url)
	}
	return true
}

func (l *recorder) OnResponseStarted(r *Request) {
	l.add("response")
	h, err := r.Header()
	p, _ := r.NegotiatedProtocol()
	l.mu.Lock()
	l.header, l.headerErr, l.protocol = h, err, p
	l.mu.Unlock()
}

func (l *recorder) OnComplete(_ *Request, statusCode int, statusText string, err error) {
	l.mu.Lock()
	l.events = append(l.events, "complete")
	l.status, l.text, l.err = statusCode, statusText, err
	l.completes++
	l.mu.Unlock()
}

func (l *recorder) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func newTestContext(t *testing.T, f adapter.Factory, opts ...Option) *Context {
	opts = append([]Option{WithFactory(f), WithLogOutput(io.Discard)}, opts...)
	c, err := NewContext(Config{MaxRedirects: 3}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, c.Close(ctx))
	})
	return c
}

func newTestPlan(t *testing.T, path string) *request.Plan {
	p, err := request.NewPlan("GET", "http://fake.test"+path, nil)
	require.NoError(t, err)
	return p
}

func wait(t *testing.T, r *Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx), "request did not finish")
}
