// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bringup takes a wireless station from unconfigured to a verified
// routable connection: scan, configure, connect, lease, verify.
//
// Every step blocks until its driver call returns. The first failing step
// ends the run; nothing is retried. Callers that want another attempt
// build a new Orchestrator.
package bringup

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/go-logr/logr"
	"github.com/u-root/wifiup/pkg/dhclient"
	"github.com/u-root/wifiup/pkg/ping"
	"github.com/u-root/wifiup/pkg/wifi"
)

var errNoGateway = errors.New("lease has no gateway")

// Leaser waits for an address on an associated interface.
type Leaser interface {
	Request(ctx context.Context, iface string) (*dhclient.Lease, error)
}

// Prober measures reachability of an address.
type Prober interface {
	Ping(ctx context.Context, ip net.IP) (ping.Summary, error)
}

var (
	_ Leaser = (*dhclient.Client)(nil)
	_ Prober = (*ping.Pinger)(nil)
)

// Env is everything a bring-up touches. The orchestrator owns it for the
// duration of BringUp and hands it to each step.
type Env struct {
	Radio  wifi.WiFi
	Leaser Leaser
	Prober Prober
	// APSSID is the access point advertised next to the station.
	// Empty means wifi.DefaultAPSSID.
	APSSID string
	Log    logr.Logger
	// Observe, if set, sees every state change.
	Observe func(Transition)
}

// Orchestrator runs one bring-up. It is not safe for concurrent use.
type Orchestrator struct {
	env   Env
	state State
}

func New(env Env) *Orchestrator {
	if env.APSSID == "" {
		env.APSSID = wifi.DefaultAPSSID
	}
	return &Orchestrator{env: env}
}

// State returns where the orchestrator currently is.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) enter(s State) {
	t := Transition{From: o.state, To: s}
	o.state = s
	o.env.Log.V(1).Info("state", "from", t.From.String(), "to", t.To.String())
	if o.env.Observe != nil {
		o.env.Observe(t)
	}
}

func (o *Orchestrator) fail(k Kind, err error) error {
	e := &Error{Kind: k, State: o.state, Err: err}
	t := Transition{From: o.state, To: Failed, Err: e}
	o.state = Failed
	if o.env.Observe != nil {
		o.env.Observe(t)
	}
	return e
}

func (o *Orchestrator) checkEnv() error {
	switch {
	case o.env.Radio == nil:
		return errors.New("no radio")
	case o.env.Leaser == nil:
		return errors.New("no leaser")
	case o.env.Prober == nil:
		return errors.New("no prober")
	}
	return nil
}

// BringUp joins target and verifies the gateway answers every probe.
// On success the returned Handle belongs to the caller. On failure the
// error is an *Error. BringUp runs once; later calls return ErrAlreadyStarted.
func (o *Orchestrator) BringUp(ctx context.Context, target wifi.TargetIdentity) (*Handle, error) {
	if o.state != Idle {
		return nil, ErrAlreadyStarted
	}
	if err := o.checkEnv(); err != nil {
		return nil, o.fail(ConfigurationError, err)
	}
	if err := target.Validate(); err != nil {
		return nil, o.fail(ConfigurationError, err)
	}
	radio := o.env.Radio
	iface := radio.Interface()
	log := o.env.Log.WithValues("interface", iface, "ssid", target.SSID)

	o.enter(Scanning)
	log.Info("scanning")
	aps, err := radio.Scan(ctx)
	if err != nil {
		return nil, o.fail(ScanError, err)
	}
	ch, found := wifi.Select(aps, target.SSID)
	if found {
		log.Info("found configured access point", "channel", ch.String())
	} else {
		log.Info("configured access point not found during scanning, will go with unknown channel", "records", len(aps))
	}

	o.enter(Configuring)
	cfg := wifi.NewMixedConfig(target, o.env.APSSID, ch)
	if err := radio.Configure(ctx, cfg); err != nil {
		return nil, o.fail(ConfigurationError, err)
	}

	o.enter(Connecting)
	log.Info("connecting")
	if err := radio.Connect(ctx); err != nil {
		return nil, o.fail(ConnectionError, err)
	}

	o.enter(AwaitingLease)
	log.Info("waiting for DHCP lease")
	lease, err := o.env.Leaser.Request(ctx, iface)
	if err != nil {
		return nil, o.fail(LeaseTimeout, err)
	}
	if lease == nil {
		return nil, o.fail(LeaseTimeout, dhclient.ErrNoAddress)
	}
	log.Info("DHCP lease", "lease", lease.String())

	o.enter(Verifying)
	if lease.Gateway == nil {
		return nil, o.fail(UnreachableGateway, errNoGateway)
	}
	log.Info("pinging gateway", "gateway", lease.Gateway.String())
	sum, err := o.env.Prober.Ping(ctx, lease.Gateway)
	if err == nil {
		// A cancelled run may have sent fewer probes than asked for.
		err = ctx.Err()
	}
	if err != nil {
		return nil, o.fail(UnreachableGateway, err)
	}
	if sum.Transmitted == 0 || sum.Received != sum.Transmitted {
		return nil, o.fail(UnreachableGateway, fmt.Errorf("pinging %v resulted in timeouts: %v", lease.Gateway, sum))
	}

	h := newHandle(iface, ch, lease)
	o.enter(Ready)
	log.Info("ready", "address", h.IP().String(), "gateway", h.Gateway().String())
	return h, nil
}
