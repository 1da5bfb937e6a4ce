// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package urlrequest

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Context to observe every request
// it executes, for example to record statistics.
//
// All events fire on the network loop.
type Event int

const (
	// BeforeStart identifies the event that occurs when the network
	// loop begins executing a request, after the listener's OnStart
	// and before the adapter sends the request.
	BeforeStart Event = iota
	// BeforeRedirect identifies the event that occurs when a redirect
	// response arrives and redirect following is allowed, before the
	// listener's OnRedirect is consulted.
	BeforeRedirect
	// AfterResponseStarted identifies the event that occurs when the
	// final response headers have arrived, before the body is read.
	//
	// Adapter-backed accessors such as Request.Header are valid while
	// AfterResponseStarted handlers run.
	AfterResponseStarted
	// BeforeWrite identifies the event that occurs before each chunk of
	// response body is written to the request's sink.
	BeforeWrite
	// AfterComplete identifies the event that occurs after the request
	// reached its terminal state and released its adapter, before the
	// listener's OnComplete.
	//
	// When AfterComplete fires, Request.Result is final.
	AfterComplete
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeStart",
	"BeforeRedirect",
	"AfterResponseStarted",
	"BeforeWrite",
	"AfterComplete",
}

// Events returns a slice containing all events which can occur during a
// request, in the order in which they would occur.
func Events() []Event {
	return []Event{
		BeforeStart,
		BeforeRedirect,
		AfterResponseStarted,
		BeforeWrite,
		AfterComplete,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
