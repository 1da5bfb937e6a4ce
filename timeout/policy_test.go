// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogama/urlrequest/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plan(t *testing.T, pr request.Priority) *request.Plan {
	p, err := request.NewPlan("GET", "http://example.com/", nil)
	require.NoError(t, err)
	p.Priority = pr
	return p
}

func TestDefault(t *testing.T) {
	assert.Equal(t, 5*time.Second, DefaultPolicy.Timeout(plan(t, request.Medium)))
	assert.Equal(t, 5*time.Second, DefaultPolicy.Timeout(plan(t, request.Highest)))
}

func TestInfinite(t *testing.T) {
	assert.Equal(t, time.Duration(math.MaxInt64), Infinite.Timeout(plan(t, request.Medium)))
	assert.Equal(t, time.Duration(math.MaxInt64), Infinite.Timeout(plan(t, request.Lowest)))
}

func TestFixed(t *testing.T) {
	p := Fixed(33 * time.Hour)
	assert.Equal(t, 33*time.Hour, p.Timeout(plan(t, request.Low)))
	assert.Equal(t, 33*time.Hour, p.Timeout(plan(t, request.High)))
}

func TestByPriority(t *testing.T) {
	byPriority := map[request.Priority]time.Duration{
		request.Lowest:  time.Minute,
		request.Highest: 10 * time.Millisecond,
	}
	p := ByPriority(time.Second, byPriority)
	byPriority[request.Medium] = time.Hour
	assert.Equal(t, time.Minute, p.Timeout(plan(t, request.Lowest)))
	assert.Equal(t, 10*time.Millisecond, p.Timeout(plan(t, request.Highest)))
	assert.Equal(t, time.Second, p.Timeout(plan(t, request.Medium)), "policy must not alias the caller's map")
	assert.Equal(t, time.Second, p.Timeout(plan(t, request.Low)))
}

func TestPolicyFunc(t *testing.T) {
	p := PolicyFunc(func(p *request.Plan) time.Duration {
		return time.Duration(p.Priority) * time.Second
	})
	assert.Equal(t, 3*time.Second, p.Timeout(plan(t, request.High)))
}

type counter struct {
	n int32
}

func (c *counter) Cancel() {
	atomic.AddInt32(&c.n, 1)
}

func (c *counter) count() int32 {
	return atomic.LoadInt32(&c.n)
}

func TestEnforce(t *testing.T) {
	t.Run("fires", func(t *testing.T) {
		c := &counter{}
		stop := Enforce(Fixed(time.Millisecond), plan(t, request.Medium), c)
		assert.Eventually(t, func() bool { return c.count() == 1 }, time.Second, time.Millisecond)
		assert.False(t, stop())
	})
	t.Run("stopped", func(t *testing.T) {
		c := &counter{}
		stop := Enforce(Fixed(time.Hour), plan(t, request.Medium), c)
		assert.True(t, stop())
		assert.Equal(t, int32(0), c.count())
	})
	t.Run("nil policy", func(t *testing.T) {
		c := &counter{}
		stop := Enforce(nil, plan(t, request.Medium), c)
		assert.False(t, stop())
	})
	t.Run("infinite", func(t *testing.T) {
		c := &counter{}
		stop := Enforce(Infinite, plan(t, request.Medium), c)
		assert.False(t, stop())
	})
	t.Run("non-positive", func(t *testing.T) {
		c := &counter{}
		stop := Enforce(Fixed(0), plan(t, request.Medium), c)
		assert.False(t, stop())
		stop = Enforce(Fixed(-time.Second), plan(t, request.Medium), c)
		assert.False(t, stop())
		assert.Equal(t, int32(0), c.count())
	})
}
