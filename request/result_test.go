// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResult_TimeMethods(t *testing.T) {
	t.Run("not started", func(t *testing.T) {
		r := &Result{}
		assert.False(t, r.Started())
		assert.False(t, r.Ended())
		assert.Equal(t, time.Duration(0), r.Duration())
	})
	t.Run("cancelled before start", func(t *testing.T) {
		r := &Result{End: time.Now()}
		assert.False(t, r.Started())
		assert.True(t, r.Ended())
		assert.Equal(t, time.Duration(0), r.Duration())
	})
	t.Run("ended", func(t *testing.T) {
		start := time.Now()
		r := &Result{Start: start, End: start.Add(3 * time.Millisecond)}
		assert.True(t, r.Started())
		assert.True(t, r.Ended())
		assert.Equal(t, 3*time.Millisecond, r.Duration())
	})
}

func TestResult_Received(t *testing.T) {
	assert.False(t, (&Result{StatusCode: StatusNone}).Received())
	assert.False(t, (&Result{StatusCode: StatusNoResponse}).Received())
	assert.True(t, (&Result{StatusCode: 200}).Received())
	assert.True(t, (&Result{StatusCode: 302}).Received())
}

func TestPriority(t *testing.T) {
	ps := Priorities()
	assert.Len(t, ps, len(priorityNames))
	for i, p := range ps {
		assert.Equal(t, Priority(i), p)
		assert.True(t, p.Valid())
		assert.Equal(t, priorityNames[i], p.String())
	}
	assert.True(t, Lowest < Highest)
	assert.False(t, Priority(-1).Valid())
	assert.False(t, Priority(5).Valid())
	assert.Equal(t, "Priority(?)", Priority(5).String())
}
