// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bringup

import (
	"errors"
	"fmt"
)

// Kind classifies why a bring-up failed.
type Kind int

const (
	ScanError Kind = iota + 1
	ConfigurationError
	ConnectionError
	LeaseTimeout
	UnreachableGateway
)

var kindNames = map[Kind]string{
	ScanError:          "scan error",
	ConfigurationError: "configuration error",
	ConnectionError:    "connection error",
	LeaseTimeout:       "lease timeout",
	UnreachableGateway: "unreachable gateway",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels, one per Kind, so callers can use errors.Is.
var (
	ErrScan               = errors.New(ScanError.String())
	ErrConfiguration      = errors.New(ConfigurationError.String())
	ErrConnection         = errors.New(ConnectionError.String())
	ErrLeaseTimeout       = errors.New(LeaseTimeout.String())
	ErrUnreachableGateway = errors.New(UnreachableGateway.String())

	ErrAlreadyStarted = errors.New("bring-up already started")
)

var sentinels = map[Kind]error{
	ScanError:          ErrScan,
	ConfigurationError: ErrConfiguration,
	ConnectionError:    ErrConnection,
	LeaseTimeout:       ErrLeaseTimeout,
	UnreachableGateway: ErrUnreachableGateway,
}

// Error is the Failed outcome of a bring-up. State is where it stopped.
type Error struct {
	Kind  Kind
	State State
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v while %v", e.Kind, e.State)
	}
	return fmt.Sprintf("%v while %v: %v", e.Kind, e.State, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of e's Kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the Kind of err, or 0 when err is not a bring-up failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
