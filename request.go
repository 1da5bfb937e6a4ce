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
	"time"

	"github.com/gogama/urlrequest/adapter"
	"github.com/gogama/urlrequest/neterr"
	"github.com/gogama/urlrequest/request"
	"github.com/rs/zerolog"
)

// A Request is the state machine of one HTTP exchange.
//
// Create requests with Context.NewRequest. Start, Cancel and every
// accessor are safe for concurrent use by multiple goroutines; the
// state machine itself only ever runs on the Context's network loop.
//
// A request reaches exactly one of the terminal states Completed, Failed
// or Canceled, exactly once. At that moment it closes its sink, caches
// its Result and releases its adapter. From then on StatusCode,
// StatusText, Err and Result keep returning the cached values, while
// the adapter-backed accessors Header, HeaderValue and
// NegotiatedProtocol return ErrAdapterDestroyed.
type Request struct {
	id       string
	plan     *request.Plan
	context  *Context
	sink     Sink
	listener Listener
	log      zerolog.Logger

	canceled atomic.Bool
	done     chan struct{}

	// mu orders adapter-backed reads, adapter release and cancellation
	// teardown. handle is nil once released.
	mu      sync.Mutex
	state   State
	outcome State
	handle  *handle
	result  request.Result

	// Confined to the network loop.
	finished  bool
	buf       []byte
	redirects int
	written   int64
	start     time.Time
	stopTimer func() bool
}

type handle struct {
	adapter adapter.Adapter
	resp    *adapter.Response
	url     string
}

// ID returns the unique identifier of the request.
func (r *Request) ID() string {
	return r.id
}

// Plan returns the plan the request was created from.
func (r *Request) Plan() *request.Plan {
	return r.plan
}

// Start queues the request for execution on the network loop and
// returns immediately. It returns ErrContextClosed once the Context is
// closing, and ErrInvalidState if the request was already started or
// cancelled.
func (r *Request) Start() error {
	if r.context.isClosing() {
		return ErrContextClosed
	}
	r.mu.Lock()
	if r.state != Created || r.canceled.Load() {
		r.mu.Unlock()
		return ErrInvalidState
	}
	r.state = Started
	r.mu.Unlock()

	r.log.Trace().Stringer("priority", r.plan.Priority).Msg("queued")
	if !r.context.loop.submitStart(r.plan.Priority, r.begin) {
		r.setState(Created)
		return ErrContextClosed
	}
	return nil
}

// Cancel cancels the request. It may be called at any time, from any
// goroutine, any number of times; only the first call has an effect.
//
// Cancel never blocks on I/O and never calls the listener itself. Once
// it returns, the request either is terminal or will become terminal
// without further action: the network loop observes the cancellation
// before its next write to the sink and before delivering OnComplete.
// A request cancelled before it was started still reaches Canceled,
// and can no longer be started.
func (r *Request) Cancel() {
	if !r.canceled.CompareAndSwap(false, true) {
		return
	}

	r.mu.Lock()
	state := r.state
	if r.handle != nil {
		r.handle.adapter.Abort()
	}
	r.mu.Unlock()

	r.log.Debug().Stringer("state", state).Msg("cancel")
	if state == Created {
		r.post(r.teardown)
	}
}

// IsCanceled reports whether Cancel has been called.
func (r *Request) IsCanceled() bool {
	return r.canceled.Load()
}

// State returns the current lifecycle state.
func (r *Request) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Outcome returns the terminal state the request reached: Completed,
// Failed or Canceled. Before that it returns the current state.
func (r *Request) Outcome() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Destroyed {
		return r.outcome
	}
	return r.state
}

// Done returns a channel that is closed after the request's OnComplete
// notification has returned.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the request is done or ctx is done, and returns
// ctx's error in the latter case.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StatusCode returns the cached HTTP status code. It is
// request.StatusNone (-1) until the request ends, and for every
// cancelled request; request.StatusNoResponse (0) if the request failed
// before receiving a response.
func (r *Request) StatusCode() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result.StatusCode
}

// StatusText returns the cached HTTP reason phrase, or "" when there is
// none.
func (r *Request) StatusText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result.StatusText
}

// Err returns the cached terminal error. It is nil until the request
// ends, and nil for completed and cancelled requests.
func (r *Request) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result.Err
}

// Result returns a copy of the cached result.
func (r *Request) Result() request.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Header returns a copy of the most recent response headers. It returns
// an empty header if no response has arrived yet, and
// ErrAdapterDestroyed once the request has ended.
func (r *Request) Header() (http.Header, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle == nil {
		return nil, ErrAdapterDestroyed
	}
	if r.handle.resp == nil {
		return make(http.Header), nil
	}
	return r.handle.resp.Header.Clone(), nil
}

// HeaderValue returns the first value of the named header of the most
// recent response, or ErrAdapterDestroyed once the request has ended.
func (r *Request) HeaderValue(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle == nil {
		return "", ErrAdapterDestroyed
	}
	if r.handle.resp == nil {
		return "", nil
	}
	return r.handle.resp.Header.Get(name), nil
}

// URL returns the URL the request is currently fetching, which changes
// as redirects are followed, or ErrAdapterDestroyed once the request has
// ended.
func (r *Request) URL() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle == nil {
		return "", ErrAdapterDestroyed
	}
	return r.handle.url, nil
}

// NegotiatedProtocol returns the protocol of the most recent response,
// such as "h2" or "http/1.1", or ErrAdapterDestroyed once the request
// has ended.
func (r *Request) NegotiatedProtocol() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handle == nil {
		return "", ErrAdapterDestroyed
	}
	if r.handle.resp == nil {
		return "", nil
	}
	return r.handle.resp.Protocol, nil
}

func (r *Request) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Request) post(t task) {
	if !r.context.loop.submit(t) {
		r.log.Error().Msg("network loop stopped, step dropped")
	}
}

// The methods below run on the network loop.

func (r *Request) teardown() {
	if r.finished {
		return
	}
	r.finish(Canceled, nil)
}

func (r *Request) begin() {
	if r.finished {
		return
	}
	if r.plan.Context().Err() != nil {
		r.Cancel()
	}
	if r.canceled.Load() {
		r.finish(Canceled, nil)
		return
	}
	if err := r.context.initErr; err != nil {
		r.finish(Failed, neterr.Wrap(err))
		return
	}

	r.start = time.Now()
	r.log.Debug().Msg("start")
	r.listener.OnStart(r)
	r.context.fire(BeforeStart, r)
	if r.canceled.Load() {
		r.finish(Canceled, nil)
		return
	}

	r.stopTimer = r.context.enforceTimeout(r)
	r.exchange(r.handle.adapter.Start)
}

// exchange runs a blocking adapter call off the loop and posts its
// outcome back to it.
func (r *Request) exchange(op func() (*adapter.Response, error)) {
	go func() {
		resp, err := op()
		r.post(func() { r.onResponse(resp, err) })
	}()
}

func (r *Request) onResponse(resp *adapter.Response, err error) {
	if r.finished {
		return
	}
	if r.canceled.Load() {
		r.finish(Canceled, nil)
		return
	}
	if err != nil {
		r.finish(Failed, neterr.Wrap(err))
		return
	}

	r.mu.Lock()
	r.handle.resp = resp
	r.mu.Unlock()
	r.log.Trace().Int("status", resp.StatusCode).Str("location", resp.Location).Msg("response")

	if resp.IsRedirect() {
		r.redirect(resp)
		return
	}
	r.responseStarted()
	if r.canceled.Load() {
		r.finish(Canceled, nil)
		return
	}
	r.read()
}

func (r *Request) redirect(resp *adapter.Response) {
	if !r.plan.FollowRedirects {
		r.responseStarted()
		r.finish(Failed, ErrRedirect)
		return
	}
	if r.redirects >= r.context.config.MaxRedirects {
		r.finish(Failed, ErrRedirect)
		return
	}

	r.setState(Redirecting)
	r.context.fire(BeforeRedirect, r)
	follow := r.listener.OnRedirect(r, resp.Location, resp.Header.Clone())
	if r.canceled.Load() {
		r.finish(Canceled, nil)
		return
	}
	if !follow {
		r.finish(Failed, ErrRedirect)
		return
	}

	r.redirects++
	r.mu.Lock()
	r.state = Started
	r.handle.url = resp.Location
	r.mu.Unlock()
	r.log.Debug().Str("location", resp.Location).Int("redirects", r.redirects).Msg("follow redirect")
	r.exchange(r.handle.adapter.FollowRedirect)
}

func (r *Request) responseStarted() {
	r.context.fire(AfterResponseStarted, r)
	if l, ok := r.listener.(ResponseStartedListener); ok {
		l.OnResponseStarted(r)
	}
}

func (r *Request) read() {
	a, buf := r.handle.adapter, r.buf
	go func() {
		n, err := a.Read(buf)
		r.post(func() { r.onRead(buf[:n], err) })
	}()
}

func (r *Request) onRead(p []byte, err error) {
	if r.finished {
		return
	}
	if len(p) > 0 {
		r.context.fire(BeforeWrite, r)
		if r.canceled.Load() {
			r.finish(Canceled, nil)
			return
		}
		if werr := r.write(p); werr != nil {
			r.finish(Failed, neterr.Wrap(werr))
			return
		}
	}

	switch {
	case r.canceled.Load():
		r.finish(Canceled, nil)
	case err == io.EOF:
		r.finish(Completed, nil)
	case err != nil:
		r.finish(Failed, neterr.Wrap(err))
	default:
		r.read()
	}
}

func (r *Request) write(p []byte) error {
	if r.finished {
		panic(ErrContractViolation)
	}
	n, err := r.sink.Write(p)
	r.written += int64(n)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}

// finish performs the terminal transition: close the sink, cache the
// result, release the adapter, then notify.
func (r *Request) finish(outcome State, err error) {
	if r.finished {
		panic(ErrContractViolation)
	}
	r.finished = true
	if outcome == Completed && r.canceled.Load() {
		outcome = Canceled
	}
	if r.stopTimer != nil {
		r.stopTimer()
	}
	if cerr := r.sink.Close(); cerr != nil {
		r.log.Warn().Err(cerr).Msg("sink close")
	}

	r.mu.Lock()
	res := request.Result{
		StatusCode:   request.StatusNone,
		Err:          err,
		Start:        r.start,
		End:          time.Now(),
		Redirects:    r.redirects,
		BytesWritten: r.written,
	}
	if outcome != Canceled {
		res.StatusCode = request.StatusNoResponse
		if r.handle != nil && r.handle.resp != nil {
			res.StatusCode = r.handle.resp.StatusCode
			res.StatusText = r.handle.resp.StatusText
		}
	}
	r.result = res
	r.outcome = outcome
	r.state = outcome
	if r.handle != nil {
		r.handle.adapter.Release()
		r.handle = nil
	}
	r.state = Destroyed
	r.mu.Unlock()

	ev := r.log.Debug().Stringer("outcome", outcome).Int("status", res.StatusCode).Int64("bytes", res.BytesWritten)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("complete")

	r.context.fire(AfterComplete, r)
	r.listener.OnComplete(r, res.StatusCode, res.StatusText, res.Err)
	r.context.forget(r)
	close(r.done)
}
