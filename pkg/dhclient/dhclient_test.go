// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dhclient

import (
	"errors"
	"net"
	"testing"

	"github.com/go-logr/logr"
	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ack(t *testing.T, mods ...dhcpv4.Modifier) *dhcpv4.DHCPv4 {
	t.Helper()
	m, err := dhcpv4.New(append([]dhcpv4.Modifier{dhcpv4.WithMessageType(dhcpv4.MessageTypeAck)}, mods...)...)
	require.NoError(t, err)
	return m
}

func TestFromMessage(t *testing.T) {
	noRoute := func() (net.IP, error) { return nil, errors.New("no default route") }
	kernelRoute := func() (net.IP, error) { return net.IPv4(192, 168, 4, 254), nil }

	for _, tt := range []struct {
		name     string
		mods     []dhcpv4.Modifier
		discover func() (net.IP, error)
		want     *Lease
		wantErr  error
	}{
		{
			name: "full ack",
			mods: []dhcpv4.Modifier{
				dhcpv4.WithYourIP(net.IPv4(192, 168, 4, 2)),
				dhcpv4.WithNetmask(net.IPv4Mask(255, 255, 255, 0)),
				dhcpv4.WithRouter(net.IPv4(192, 168, 4, 1)),
			},
			discover: noRoute,
			want: &Lease{
				IP:      net.IPv4(192, 168, 4, 2).To4(),
				Subnet:  net.IPv4Mask(255, 255, 255, 0),
				Gateway: net.IPv4(192, 168, 4, 1).To4(),
			},
		},
		{
			name: "no netmask uses class mask",
			mods: []dhcpv4.Modifier{
				dhcpv4.WithYourIP(net.IPv4(10, 1, 2, 3)),
				dhcpv4.WithRouter(net.IPv4(10, 0, 0, 1)),
			},
			discover: noRoute,
			want: &Lease{
				IP:      net.IPv4(10, 1, 2, 3).To4(),
				Subnet:  net.IPv4Mask(255, 0, 0, 0),
				Gateway: net.IPv4(10, 0, 0, 1).To4(),
			},
		},
		{
			name: "no router falls back to the default route",
			mods: []dhcpv4.Modifier{
				dhcpv4.WithYourIP(net.IPv4(192, 168, 4, 2)),
				dhcpv4.WithNetmask(net.IPv4Mask(255, 255, 255, 0)),
			},
			discover: kernelRoute,
			want: &Lease{
				IP:      net.IPv4(192, 168, 4, 2).To4(),
				Subnet:  net.IPv4Mask(255, 255, 255, 0),
				Gateway: net.IPv4(192, 168, 4, 254).To4(),
			},
		},
		{
			name: "no router and the default route is on another network",
			mods: []dhcpv4.Modifier{
				dhcpv4.WithYourIP(net.IPv4(192, 168, 4, 2)),
				dhcpv4.WithNetmask(net.IPv4Mask(255, 255, 255, 0)),
			},
			discover: func() (net.IP, error) { return net.IPv4(10, 0, 0, 1), nil },
			want: &Lease{
				IP:     net.IPv4(192, 168, 4, 2).To4(),
				Subnet: net.IPv4Mask(255, 255, 255, 0),
			},
		},
		{
			name: "no router and no route",
			mods: []dhcpv4.Modifier{
				dhcpv4.WithYourIP(net.IPv4(192, 168, 4, 2)),
				dhcpv4.WithNetmask(net.IPv4Mask(255, 255, 255, 0)),
			},
			discover: noRoute,
			want: &Lease{
				IP:     net.IPv4(192, 168, 4, 2).To4(),
				Subnet: net.IPv4Mask(255, 255, 255, 0),
			},
		},
		{
			name:     "no address",
			discover: noRoute,
			wantErr:  ErrNoAddress,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultClient(logr.Discard())
			c.discoverGateway = tt.discover

			got, err := c.fromMessage(ack(t, tt.mods...))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeaseString(t *testing.T) {
	l := &Lease{
		IP:      net.IPv4(192, 168, 4, 2).To4(),
		Subnet:  net.IPv4Mask(255, 255, 255, 0),
		Gateway: net.IPv4(192, 168, 4, 1).To4(),
	}
	assert.Equal(t, "192.168.4.2/24 gw 192.168.4.1", l.String())
}

func TestBound(t *testing.T) {
	c := DefaultClient(logr.Discard())
	assert.Equal(t, c.LinkUpTimeout+8*c.Timeout, c.bound())
}
