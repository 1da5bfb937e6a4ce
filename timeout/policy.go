// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/urlrequest/request"
)

// A Policy defines a timeout policy which may be plugged into a
// urlrequest.Context to direct how long each request may run, from the
// moment the network loop begins executing it until it reaches a
// terminal state.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on a request executing plan p.
	// A non-positive return value means the request never times out.
	Timeout(p *request.Plan) time.Duration
}

// DefaultPolicy is the default timeout policy. It sets a fixed timeout
// of 5 seconds on each request.
var DefaultPolicy Policy = Fixed(5 * time.Second)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that uses the same value d for
// every request.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (f fixed) Timeout(_ *request.Plan) time.Duration {
	return time.Duration(f)
}

// ByPriority constructs a timeout policy that varies the timeout with
// the request priority.
//
// Parameter usual is the timeout for any priority missing from
// byPriority. Consider the following timeout policy:
//
// 	p := ByPriority(time.Second, map[request.Priority]time.Duration{
// 		request.Lowest: time.Minute,
// 	})
//
// The policy p allows background requests at the Lowest priority a
// full minute, while every other request times out after one second.
func ByPriority(usual time.Duration, byPriority map[request.Priority]time.Duration) Policy {
	m := make(map[request.Priority]time.Duration, len(byPriority))
	for k, v := range byPriority {
		m[k] = v
	}
	return &priorityPolicy{usual: usual, m: m}
}

type priorityPolicy struct {
	usual time.Duration
	m     map[request.Priority]time.Duration
}

func (p *priorityPolicy) Timeout(plan *request.Plan) time.Duration {
	if d, ok := p.m[plan.Priority]; ok {
		return d
	}
	return p.usual
}

// PolicyFunc adapts an ordinary function into a Policy.
type PolicyFunc func(p *request.Plan) time.Duration

// Timeout returns f(p).
func (f PolicyFunc) Timeout(p *request.Plan) time.Duration {
	return f(p)
}
