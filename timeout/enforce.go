// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/urlrequest/request"
)

// A Canceler is anything that can be cancelled, such as a
// urlrequest.Request.
type Canceler interface {
	Cancel()
}

// Enforce arms policy p for plan: when the timeout chosen by p elapses,
// c is cancelled. The returned stop function disarms the timer and
// reports whether it did so before the timeout fired.
//
// If p is nil, or returns a non-positive or effectively infinite
// timeout, nothing is armed and the returned stop function always
// returns false.
func Enforce(p Policy, plan *request.Plan, c Canceler) (stop func() bool) {
	if p == nil {
		return never
	}
	d := p.Timeout(plan)
	if d <= 0 || d == Infinite.Timeout(plan) {
		return never
	}
	t := time.AfterFunc(d, c.Cancel)
	return t.Stop
}

func never() bool {
	return false
}
