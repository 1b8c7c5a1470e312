// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bringup

// State is a step of the bring-up sequence.
type State int

const (
	Idle State = iota
	Scanning
	Configuring
	Connecting
	AwaitingLease
	Verifying
	Ready
	Failed
)

var stateNames = [...]string{
	Idle:          "idle",
	Scanning:      "scanning",
	Configuring:   "configuring",
	Connecting:    "connecting",
	AwaitingLease: "awaiting lease",
	Verifying:     "verifying",
	Ready:         "ready",
	Failed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == Ready || s == Failed
}

// Transition is reported to Env.Observe on every state change.
type Transition struct {
	From, To State
	// Err is set when To is Failed.
	Err error
}
