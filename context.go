// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gogama/urlrequest/adapter"
	"github.com/gogama/urlrequest/request"
	"github.com/gogama/urlrequest/timeout"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Version is the version of the request engine.
const Version = "1.0.0"

// An Option customizes a Context created by NewContext.
type Option func(*options)

type options struct {
	factory   adapter.Factory
	handlers  *HandlerGroup
	logger    *zerolog.Logger
	logOutput io.Writer
	timeouts  timeout.Policy
}

// WithFactory replaces the default adapter factory, an
// adapter.HTTPFactory configured from the Config.
func WithFactory(f adapter.Factory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithHandlers installs a handler group whose handlers are invoked on
// the network loop when designated events occur during request
// execution.
func WithHandlers(h *HandlerGroup) Option {
	return func(o *options) {
		o.handlers = h
	}
}

// WithLogger replaces the logger built from the Config.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

// WithLogOutput directs the logger built from the Config to w instead
// of os.Stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithTimeoutPolicy bounds every request's running time using p. By
// default requests never time out.
func WithTimeoutPolicy(p timeout.Policy) Option {
	return func(o *options) {
		o.timeouts = p
	}
}

// A Context owns the network loop, the adapter factory and the shared
// services of a family of requests. Its zero value is not usable: create
// contexts with NewContext and release them with Close.
//
// Context is safe for concurrent use by multiple goroutines.
type Context struct {
	config   Config
	factory  adapter.Factory
	loop     *loop
	handlers *HandlerGroup
	internal HandlerGroup
	timeouts timeout.Policy
	log      zerolog.Logger

	ready   chan struct{}
	initErr error

	mu      sync.Mutex
	closing bool
	live    map[*Request]struct{}

	closeOnce sync.Once
	closeErr  error

	stats  atomic.Pointer[statistics]
	netLog atomic.Pointer[netLog]
}

// NewContext creates a Context from cfg and starts its network loop.
//
// The adapter factory is initialized asynchronously, as the first task
// on the network loop. Requests may be created and started immediately:
// their starts queue behind initialization. Use Ready to wait for
// initialization explicitly.
func NewContext(cfg Config, opts ...Option) (*Context, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		config:   cfg,
		factory:  o.factory,
		loop:     newLoop(),
		handlers: o.handlers,
		timeouts: o.timeouts,
		ready:    make(chan struct{}),
		live:     make(map[*Request]struct{}),
	}
	if c.factory == nil {
		c.factory = &adapter.HTTPFactory{
			UserAgent:   cfg.UserAgent,
			EnableHTTP2: cfg.EnableHTTP2,
		}
	}
	switch {
	case o.logger != nil:
		c.log = *o.logger
	case o.logOutput != nil:
		c.log = cfg.newLogger(o.logOutput)
	default:
		c.log = cfg.newLogger(os.Stderr)
	}

	c.internal.PushBack(AfterComplete, HandlerFunc(c.recordStatistics))
	for _, evt := range Events() {
		c.internal.PushBack(evt, HandlerFunc(c.recordNetLog))
	}

	go c.loop.run(c.init)
	return c, nil
}

func (c *Context) init() {
	defer close(c.ready)
	c.log.Debug().Str("version", Version).Msg("initializing")
	if err := c.factory.Init(context.Background()); err != nil {
		c.initErr = err
		c.log.Error().Err(err).Msg("initialization failed")
		return
	}
	c.log.Debug().Msg("initialized")
}

// Ready returns a channel that is closed once initialization has run.
func (c *Context) Ready() <-chan struct{} {
	return c.ready
}

// Err returns the initialization error, if initialization has run and
// failed. When it is non-nil every started request fails with it.
func (c *Context) Err() error {
	select {
	case <-c.ready:
		return c.initErr
	default:
		return nil
	}
}

// Config returns the configuration of the context, with defaults
// applied.
func (c *Context) Config() Config {
	return c.config
}

// NewRequest creates a request executing p, streaming its response body
// into sink and reporting its lifecycle to l. The request is not
// started.
//
// NewRequest panics if p, sink or l is nil. It returns ErrContextClosed
// once Close has been called. If p's context is already done the
// request is returned cancelled.
func (c *Context) NewRequest(p *request.Plan, sink Sink, l Listener) (*Request, error) {
	if p == nil {
		panic("urlrequest: nil plan")
	}
	if sink == nil {
		panic("urlrequest: nil sink")
	}
	if l == nil {
		panic("urlrequest: nil listener")
	}

	a, err := c.factory.NewAdapter(p)
	if err != nil {
		return nil, err
	}
	r := &Request{
		id:       uuid.NewString(),
		plan:     p,
		context:  c,
		sink:     sink,
		listener: l,
		done:     make(chan struct{}),
		state:    Created,
		handle:   &handle{adapter: a, url: p.URL.String()},
		result:   request.Result{StatusCode: request.StatusNone},
		buf:      make([]byte, c.config.ReadBufferSize),
	}
	r.log = c.log.With().
		Str("request_id", r.id).
		Str("url", p.URL.String()).
		Logger()

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		a.Release()
		return nil, ErrContextClosed
	}
	c.live[r] = struct{}{}
	c.mu.Unlock()

	if p.Context().Err() != nil {
		r.Cancel()
	} else if done := p.Context().Done(); done != nil {
		go func() {
			select {
			case <-done:
				r.Cancel()
			case <-r.done:
			}
		}()
	}

	r.log.Trace().Msg("created")
	return r, nil
}

// Close cancels every live request, waits for them to reach a terminal
// state, stops the network loop and closes the adapter factory. If ctx
// is done first, Close returns ctx's error and the remaining requests
// finish in the background; calling Close again completes the shutdown.
func (c *Context) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closing = true
	live := make([]*Request, 0, len(c.live))
	for r := range c.live {
		live = append(live, r)
	}
	c.mu.Unlock()

	c.log.Debug().Int("live", len(live)).Msg("closing")
	for _, r := range live {
		r.Cancel()
	}
	for _, r := range live {
		if err := r.Wait(ctx); err != nil {
			return err
		}
	}

	c.loop.stop()
	select {
	case <-c.loop.exited:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.closeOnce.Do(func() {
		c.StopNetLog()
		c.closeErr = c.factory.Close()
	})
	return c.closeErr
}

func (c *Context) isClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}

func (c *Context) forget(r *Request) {
	c.mu.Lock()
	delete(c.live, r)
	c.mu.Unlock()
}

func (c *Context) fire(evt Event, r *Request) {
	c.internal.run(evt, r)
	c.handlers.run(evt, r)
}

func (c *Context) enforceTimeout(r *Request) func() bool {
	return timeout.Enforce(c.timeouts, r.plan, r)
}

// Version returns the engine's version string.
func (c *Context) Version() string {
	return "urlrequest/" + Version
}

// InitializeStatistics starts recording statistics about completed
// requests. Calling it again has no further effect.
func (c *Context) InitializeStatistics() error {
	if c.isClosing() {
		return ErrContextClosed
	}
	if c.stats.Load() == nil {
		c.stats.CompareAndSwap(nil, newStatistics())
	}
	return nil
}

// StatisticsJSON returns the recorded statistics as a JSON object keyed
// by metric name, restricted to metrics whose name contains filter. It
// returns "{}" if statistics were never initialized.
func (c *Context) StatisticsJSON(filter string) (string, error) {
	if c.isClosing() {
		return "", ErrContextClosed
	}
	s := c.stats.Load()
	if s == nil {
		return "{}", nil
	}
	return s.json(filter)
}

func (c *Context) recordStatistics(_ Event, r *Request) {
	if s := c.stats.Load(); s != nil {
		s.observe(r)
	}
}

// StartNetLogToFile starts writing a JSON line for every request
// lifecycle event to the named file, which is created or truncated.
// Relative names are resolved in os.TempDir. If a net log is already
// active the call has no effect.
func (c *Context) StartNetLogToFile(name string) error {
	if c.isClosing() {
		return ErrContextClosed
	}
	if c.netLog.Load() != nil {
		return nil
	}
	n, err := openNetLog(name)
	if err != nil {
		return err
	}
	if !c.netLog.CompareAndSwap(nil, n) {
		return n.close()
	}
	c.log.Debug().Str("file", n.f.Name()).Msg("net log started")
	return nil
}

// StopNetLog stops the active net log, if any, and closes its file.
func (c *Context) StopNetLog() {
	if n := c.netLog.Swap(nil); n != nil {
		if err := n.close(); err != nil {
			c.log.Warn().Err(err).Msg("net log close")
		}
	}
}

func (c *Context) recordNetLog(evt Event, r *Request) {
	if n := c.netLog.Load(); n != nil {
		n.record(evt, r)
	}
}
