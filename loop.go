// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"container/heap"
	"sync"

	"github.com/gogama/urlrequest/request"
)

type task func()

// loop is the network loop of a Context: a single goroutine that runs
// every state machine step of every request.
//
// Continuation tasks run in submission order and always before queued
// starts. Queued starts run highest priority first, in submission order
// within a priority. Running tasks are never preempted.
type loop struct {
	mu      sync.Mutex
	wake    *sync.Cond
	tasks   []task
	starts  startQueue
	seq     uint64
	stopped bool
	exited  chan struct{}
}

func newLoop() *loop {
	l := &loop{exited: make(chan struct{})}
	l.wake = sync.NewCond(&l.mu)
	return l
}

// run executes first, then serves tasks until stop is called and the
// queues are drained.
func (l *loop) run(first task) {
	defer close(l.exited)
	first()
	for {
		t := l.next()
		if t == nil {
			return
		}
		t()
	}
}

func (l *loop) next() task {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.tasks) == 0 && l.starts.Len() == 0 {
		if l.stopped {
			return nil
		}
		l.wake.Wait()
	}
	if len(l.tasks) > 0 {
		t := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		return t
	}
	return heap.Pop(&l.starts).(*queuedStart).t
}

// submit queues a continuation task. It reports false if the loop was
// stopped.
func (l *loop) submit(t task) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return false
	}
	l.tasks = append(l.tasks, t)
	l.wake.Signal()
	return true
}

// submitStart queues a request start at priority p. It reports false if
// the loop was stopped.
func (l *loop) submitStart(p request.Priority, t task) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return false
	}
	l.seq++
	heap.Push(&l.starts, &queuedStart{priority: p, seq: l.seq, t: t})
	l.wake.Signal()
	return true
}

// stop makes the loop exit once its queues are empty, and rejects new
// submissions.
func (l *loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.wake.Broadcast()
	l.mu.Unlock()
}

type queuedStart struct {
	priority request.Priority
	seq      uint64
	t        task
}

type startQueue []*queuedStart

func (q startQueue) Len() int { return len(q) }

func (q startQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q startQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *startQueue) Push(x interface{}) {
	*q = append(*q, x.(*queuedStart))
}

func (q *startQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return x
}
