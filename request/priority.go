// Copyright 2021 The urlrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// A Priority orders queued request starts on the network loop. Higher
// priorities start first; requests of equal priority start in the order
// they were queued.
type Priority int

const (
	// Lowest is the lowest request priority.
	Lowest Priority = iota
	// Low is a below-default priority.
	Low
	// Medium is the default priority assigned by NewPlan.
	Medium
	// High is an above-default priority.
	High
	// Highest is the highest request priority.
	Highest
)

var priorityNames = []string{
	"Lowest",
	"Low",
	"Medium",
	"High",
	"Highest",
}

// Priorities returns all request priorities, lowest first.
func Priorities() []Priority {
	return []Priority{Lowest, Low, Medium, High, Highest}
}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	return p >= Lowest && p <= Highest
}

// String returns the name of the priority.
func (p Priority) String() string {
	if !p.Valid() {
		return "Priority(?)"
	}
	return priorityNames[int(p)]
}
