// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dhclient acquires an IPv4 lease for one interface and returns a
// snapshot of it.
package dhclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-logr/logr"
	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/jackpal/gateway"
	"github.com/u-root/u-root/pkg/dhclient"
	"github.com/vishvananda/netlink"
)

var (
	ErrTimeout   = errors.New("no lease before timeout")
	ErrNoAddress = errors.New("lease has no address")
)

// Lease is what the address-assignment service handed to the station.
type Lease struct {
	IP      net.IP
	Subnet  net.IPMask
	Gateway net.IP
}

// Network returns the lease as an address within its subnet.
func (l *Lease) Network() *net.IPNet {
	return &net.IPNet{IP: l.IP, Mask: l.Subnet}
}

func (l *Lease) String() string {
	return fmt.Sprintf("%s gw %v", l.Network(), l.Gateway)
}

// Client requests leases. The zero value is not usable; start from DefaultClient.
type Client struct {
	// Timeout is the wait for each DHCP packet.
	Timeout time.Duration
	// Retries is how many times a packet is resent.
	Retries int
	// LinkUpTimeout is the wait for the link to come up.
	LinkUpTimeout time.Duration
	Log           logr.Logger

	discoverGateway func() (net.IP, error)
}

// DefaultClient returns the client with the driver bounds.
func DefaultClient(log logr.Logger) *Client {
	return &Client{
		Timeout:         15 * time.Second,
		Retries:         3,
		LinkUpTimeout:   30 * time.Second,
		Log:             log,
		discoverGateway: gateway.DiscoverGateway,
	}
}

// bound is the longest Request may block.
func (c *Client) bound() time.Duration {
	return c.LinkUpTimeout + c.Timeout*time.Duration(1<<uint(c.Retries))
}

// Request runs DHCPv4 on ifName, configures the kernel with the lease and
// returns it. It blocks until a lease is configured or the bound elapses.
func (c *Client) Request(ctx context.Context, ifName string) (*Lease, error) {
	iface, err := netlink.LinkByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ifName, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.bound())
	defer cancel()

	cfg := dhclient.Config{
		Timeout: c.Timeout,
		Retries: c.Retries,
	}
	if c.Log.V(1).Enabled() {
		cfg.LogLevel = dhclient.LogSummary
	}
	r := dhclient.SendRequests(ctx, []netlink.Link{iface}, true, false, cfg, c.LinkUpTimeout)

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w: %v", ifName, ErrTimeout, ctx.Err())

		case result, ok := <-r:
			if !ok {
				return nil, fmt.Errorf("%s: %w", ifName, ErrTimeout)
			}
			if result.Err != nil {
				return nil, fmt.Errorf("%s: %w: %v", ifName, ErrTimeout, result.Err)
			}
			if err := result.Lease.Configure(); err != nil {
				return nil, fmt.Errorf("could not configure %s: %w", ifName, err)
			}
			msg, _ := result.Lease.Message()
			if msg == nil {
				continue
			}
			l, err := c.fromMessage(msg)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", ifName, err)
			}
			c.Log.Info("configured", "interface", ifName, "lease", l.String())
			return l, nil
		}
	}
}

// fromMessage takes the lease out of a DHCPv4 ack. A reply without a
// router option falls back to the kernel default route, which
// Lease.Configure has just installed, when it lies inside the leased network.
func (c *Client) fromMessage(msg *dhcpv4.DHCPv4) (*Lease, error) {
	ip := msg.YourIPAddr.To4()
	if ip == nil || ip.IsUnspecified() {
		return nil, ErrNoAddress
	}
	l := &Lease{
		IP:     ip,
		Subnet: msg.SubnetMask(),
	}
	if l.Subnet == nil {
		l.Subnet = ip.DefaultMask()
	}
	if routers := msg.Router(); len(routers) > 0 {
		l.Gateway = routers[0].To4()
		return l, nil
	}
	if c.discoverGateway != nil {
		gw, err := c.discoverGateway()
		if err != nil {
			c.Log.V(1).Info("no router option and no default route", "error", err.Error())
			return l, nil
		}
		// The default route may belong to another interface.
		if !l.Network().Contains(gw) {
			c.Log.V(1).Info("default route is off this network, ignoring it", "gateway", gw.String(), "network", l.Network().String())
			return l, nil
		}
		l.Gateway = gw.To4()
	}
	return l, nil
}
