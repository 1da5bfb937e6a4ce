// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

import (
	"bytes"
	"io"
	"sync"
)

// A Sink is the ordered destination of a response body.
//
// The engine calls Write zero or more times, in body order, from the
// network loop, and then calls Close exactly once when the request ends,
// whatever its outcome. It never calls Write after Close. A Sink is
// owned by exactly one request.
//
// An error returned by Write fails the request. Write may call
// Request.Cancel synchronously; the cancellation is applied before any
// further write.
type Sink interface {
	io.WriteCloser
}

// A BufferSink is a Sink that accumulates the response body in memory.
// It is safe for concurrent use: the body may be inspected from any
// goroutine while the network loop writes to it.
//
// BufferSink enforces the Sink contract by panicking with
// ErrContractViolation if it is written to after it was closed, or
// closed twice.
type BufferSink struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	chunks int
	closed bool
}

// Write appends p to the buffered body.
func (s *BufferSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		panic(ErrContractViolation)
	}
	s.chunks++
	return s.buf.Write(p)
}

// Close marks the sink closed.
func (s *BufferSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		panic(ErrContractViolation)
	}
	s.closed = true
	return nil
}

// IsOpen reports whether Close has not been called yet.
func (s *BufferSink) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Bytes returns a copy of the body written so far.
func (s *BufferSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

// String returns the body written so far as a string.
func (s *BufferSink) String() string {
	return string(s.Bytes())
}

// Len returns the number of bytes written so far.
func (s *BufferSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

// Chunks returns the number of Write calls received.
func (s *BufferSink) Chunks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chunks
}
