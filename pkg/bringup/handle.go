// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bringup

import (
	"fmt"
	"net"

	"github.com/u-root/wifiup/pkg/dhclient"
	"github.com/u-root/wifiup/pkg/wifi"
)

// Handle is a live, verified interface. It is never changed after
// BringUp returns it, so it may be read from any goroutine.
type Handle struct {
	iface   string
	channel wifi.Channel
	lease   dhclient.Lease
}

func cloneIP(ip net.IP) net.IP {
	if ip == nil {
		return nil
	}
	return append(net.IP(nil), ip...)
}

func newHandle(iface string, ch wifi.Channel, l *dhclient.Lease) *Handle {
	return &Handle{
		iface:   iface,
		channel: ch,
		lease: dhclient.Lease{
			IP:      cloneIP(l.IP),
			Subnet:  append(net.IPMask(nil), l.Subnet...),
			Gateway: cloneIP(l.Gateway),
		},
	}
}

func (h *Handle) Interface() string {
	return h.iface
}

// Channel is the channel found by the scan, or wifi.AutoChannel.
func (h *Handle) Channel() wifi.Channel {
	return h.channel
}

func (h *Handle) IP() net.IP {
	return cloneIP(h.lease.IP)
}

func (h *Handle) Subnet() net.IPMask {
	return append(net.IPMask(nil), h.lease.Subnet...)
}

func (h *Handle) Gateway() net.IP {
	return cloneIP(h.lease.Gateway)
}

// Lease returns a copy of the lease the handle was built from.
func (h *Handle) Lease() dhclient.Lease {
	return dhclient.Lease{IP: h.IP(), Subnet: h.Subnet(), Gateway: h.Gateway()}
}

func (h *Handle) String() string {
	return fmt.Sprintf("%s channel %v %s", h.iface, h.channel, h.lease.String())
}
