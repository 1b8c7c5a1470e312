// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

// Select returns the channel of the first access point named ssid.
// Duplicate broadcasters are not compared by signal: driver order wins.
func Select(aps []AccessPoint, ssid string) (Channel, bool) {
	for _, ap := range aps {
		if ap.Essid != ssid {
			continue
		}
		if !ap.Channel.Valid() {
			return AutoChannel, true
		}
		return ap.Channel, true
	}
	return AutoChannel, false
}
