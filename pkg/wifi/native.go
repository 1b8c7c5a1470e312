// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SIOCGIWNAME is the wireless extensions "get name" request. Only
// wireless interfaces answer it.
const SIOCGIWNAME = 0x8B01

// IsWireless reports whether iface is a wireless interface.
func IsWireless(iface string) (bool, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, unix.IPPROTO_IP)
	if err != nil {
		return false, fmt.Errorf("socket: %w", err)
	}
	defer unix.Close(fd)

	ifr, err := unix.NewIfreq(iface)
	if err != nil {
		return false, err
	}
	if err := unix.IoctlIfreq(fd, SIOCGIWNAME, ifr); err != nil {
		if err == unix.ENODEV {
			return false, fmt.Errorf("%s: %w", iface, err)
		}
		return false, nil
	}
	return true, nil
}
