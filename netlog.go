// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var errNetLogName = errors.New("urlrequest: net log file name is empty")

// netLog writes one JSON line per request lifecycle event.
type netLog struct {
	mu     sync.Mutex
	f      *os.File
	log    zerolog.Logger
	closed bool
}

// openNetLog creates the net log file. Relative names are resolved in
// the temporary directory.
func openNetLog(name string) (*netLog, error) {
	if name == "" {
		return nil, errNetLogName
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(os.TempDir(), name)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &netLog{
		f:   f,
		log: zerolog.New(f).With().Timestamp().Logger(),
	}, nil
}

func (n *netLog) record(evt Event, r *Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	e := n.log.Log().
		Str("event", evt.Name()).
		Str("request_id", r.ID()).
		Str("method", r.plan.Method).
		Str("url", r.plan.URL.String()).
		Stringer("priority", r.plan.Priority)
	if evt == AfterComplete {
		res := r.Result()
		e = e.Stringer("outcome", r.Outcome()).
			Int("status", res.StatusCode).
			Int64("bytes", res.BytesWritten).
			Int("redirects", res.Redirects)
		if res.Err != nil {
			e = e.Err(res.Err)
		}
	}
	e.Send()
}

func (n *netLog) close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.f.Close()
}
