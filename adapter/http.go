// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package adapter

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gogama/urlrequest/request"
	"golang.org/x/net/http2"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
//
// The HTTPDoer used by HTTPFactory must not follow redirects itself:
// redirect responses must be returned to the caller, as http.Client does
// when its CheckRedirect function returns http.ErrUseLastResponse.
type HTTPDoer interface {
	Do(r *http.Request) (*http.Response, error)
}

var errNotInitialized = errors.New("urlrequest/adapter: factory not initialized")

// HTTPFactory is a Factory whose adapters execute requests with net/http.
// Its zero value is valid and uses a private transport.
type HTTPFactory struct {
	// UserAgent is sent in the User-Agent header of every request that
	// does not set one in its plan.
	UserAgent string

	// EnableHTTP2 configures the private transport for HTTP/2 using
	// golang.org/x/net/http2. It has no effect if Transport or Doer is
	// set.
	EnableHTTP2 bool

	// Transport optionally replaces the private transport.
	Transport http.RoundTripper

	// Doer optionally replaces the client built by Init. It must not
	// follow redirects.
	Doer HTTPDoer

	once    sync.Once
	initErr error
	doer    HTTPDoer
	idle    interface{ CloseIdleConnections() }
}

// Init builds the shared client. Calling Init more than once has no
// further effect.
func (f *HTTPFactory) Init(_ context.Context) error {
	f.once.Do(func() {
		f.initErr = f.init()
	})
	return f.initErr
}

func (f *HTTPFactory) init() error {
	if f.Doer != nil {
		f.doer = f.Doer
		if ic, ok := f.Doer.(interface{ CloseIdleConnections() }); ok {
			f.idle = ic
		}
		return nil
	}

	rt := f.Transport
	if rt == nil {
		t := newTransport()
		if f.EnableHTTP2 {
			if err := http2.ConfigureTransport(t); err != nil {
				return err
			}
		}
		rt = t
	}

	cl := &http.Client{
		Transport: rt,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	f.doer = cl
	f.idle = cl
	return nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// NewAdapter creates an adapter for p. The adapter may be created
// before Init completes, but must not be started until it has.
func (f *HTTPFactory) NewAdapter(p *request.Plan) (Adapter, error) {
	if p == nil || p.URL == nil {
		return nil, errors.New("urlrequest/adapter: nil plan or URL")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &httpAdapter{
		factory: f,
		plan:    p,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Close closes idle connections held by the shared client, if it
// supports doing so.
func (f *HTTPFactory) Close() error {
	if f.idle != nil {
		f.idle.CloseIdleConnections()
	}
	return nil
}

type httpAdapter struct {
	factory *HTTPFactory
	plan    *request.Plan
	ctx     context.Context
	cancel  context.CancelFunc
	req     *http.Request
	resp    *http.Response
}

func (a *httpAdapter) Start() (*Response, error) {
	return a.send(a.plan.ToRequest(a.ctx))
}

func (a *httpAdapter) FollowRedirect() (*Response, error) {
	if a.resp == nil {
		return nil, errors.New("urlrequest/adapter: no response to redirect from")
	}
	loc, err := a.resp.Location()
	if err != nil {
		return nil, err
	}
	prev := a.req
	code := a.resp.StatusCode
	a.closeBody()

	next := a.plan.ToRequest(a.ctx)
	next.URL = loc
	next.Host = ""
	if code != http.StatusTemporaryRedirect && code != http.StatusPermanentRedirect {
		if prev.Method != http.MethodGet && prev.Method != http.MethodHead {
			next.Method = http.MethodGet
		}
		next.Body = nil
		next.GetBody = nil
		next.ContentLength = 0
		next.Header.Del("Content-Type")
	}
	if loc.Host != prev.URL.Host {
		next.Header.Del("Authorization")
		next.Header.Del("Cookie")
	}
	return a.send(next)
}

func (a *httpAdapter) send(req *http.Request) (*Response, error) {
	doer := a.factory.doer
	if doer == nil {
		return nil, errNotInitialized
	}
	if req.Header.Get("User-Agent") == "" && a.factory.UserAgent != "" {
		req.Header.Set("User-Agent", a.factory.UserAgent)
	}
	resp, err := doer.Do(req)
	if err != nil {
		return nil, err
	}
	a.req = req
	a.resp = resp
	return view(resp), nil
}

func (a *httpAdapter) Read(p []byte) (int, error) {
	if a.resp == nil || a.resp.Body == nil {
		return 0, io.EOF
	}
	return a.resp.Body.Read(p)
}

func (a *httpAdapter) Abort() {
	a.cancel()
}

func (a *httpAdapter) Release() {
	a.cancel()
	a.closeBody()
}

func (a *httpAdapter) closeBody() {
	if a.resp != nil && a.resp.Body != nil {
		_ = a.resp.Body.Close()
		a.resp.Body = nil
	}
}

func view(resp *http.Response) *Response {
	v := &Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header.Clone(),
		Protocol:   protocol(resp),
	}
	if isRedirect(resp.StatusCode) {
		if loc, err := resp.Location(); err == nil {
			v.Location = loc.String()
		}
	}
	if v.Header == nil {
		v.Header = make(http.Header)
	}
	return v
}

// statusText extracts the reason phrase from a status line such as
// "200 OK".
func statusText(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

func protocol(resp *http.Response) string {
	if resp.TLS != nil && resp.TLS.NegotiatedProtocol != "" {
		return resp.TLS.NegotiatedProtocol
	}
	if resp.ProtoMajor == 2 {
		return "h2"
	}
	return strings.ToLower(resp.Proto)
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
