// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import "context"

var _ = WiFi(&StubWorker{})

// StubWorker is an in-memory radio. It records every call so tests can
// check what reached the driver and in which order.
type StubWorker struct {
	Iface   string
	Options []AccessPoint

	ScanErr      error
	ConfigureErr error
	ConnectErr   error

	Calls   []string
	Applied []StationConfig
}

func NewStubWorker(iface string, options ...AccessPoint) *StubWorker {
	return &StubWorker{Iface: iface, Options: options}
}

func (w *StubWorker) Interface() string {
	return w.Iface
}

func (w *StubWorker) Scan(ctx context.Context) ([]AccessPoint, error) {
	w.Calls = append(w.Calls, "scan")
	if w.ScanErr != nil {
		return nil, w.ScanErr
	}
	return w.Options, nil
}

func (w *StubWorker) Configure(ctx context.Context, c StationConfig) error {
	w.Calls = append(w.Calls, "configure")
	if w.ConfigureErr != nil {
		return w.ConfigureErr
	}
	if err := c.Validate(); err != nil {
		return err
	}
	w.Applied = append(w.Applied, c)
	return nil
}

func (w *StubWorker) Connect(ctx context.Context) error {
	w.Calls = append(w.Calls, "connect")
	if len(w.Applied) == 0 {
		return ErrNotConfigured
	}
	return w.ConnectErr
}
