// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

// A State is a position in the request lifecycle.
//
// States only ever move forward:
//
//	Created → Started → (Redirecting ⇄ Started)* → {Completed | Failed | Canceled} → Destroyed
type State int

const (
	// Created is the state of a request that has not been started.
	Created State = iota
	// Started is the state of a request the network loop is
	// executing, or has queued for execution.
	Started
	// Redirecting is the state of a request whose most recent response
	// is a redirect that is being offered to the listener.
	Redirecting
	// Completed is the terminal state of a request whose response body
	// was fully delivered to its sink.
	Completed
	// Failed is the terminal state of a request that ended in error.
	Failed
	// Canceled is the terminal state of a request that was cancelled.
	Canceled
	// Destroyed is the state of a request whose adapter has been
	// released. Its cached result remains readable.
	Destroyed

	stateSentinel
)

var stateNames = []string{
	"Created",
	"Started",
	"Redirecting",
	"Completed",
	"Failed",
	"Canceled",
	"Destroyed",
}

// Terminal indicates whether s is one of the terminal outcomes
// Completed, Failed or Canceled.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == Canceled
}

// String returns the name of the state.
func (s State) String() string {
	if s < Created || s >= stateSentinel {
		return "State(?)"
	}
	return stateNames[int(s)]
}
