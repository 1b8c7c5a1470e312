// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	nopassphrase = `network={
	ssid=%s
	key_mgmt=NONE%s
}
`
	pskNetwork = `network={
	ssid=%s
	key_mgmt=WPA-PSK
	psk=%s%s
}
`
	supplicantHeader = "ctrl_interface=/var/run/wpa_supplicant\nupdate_config=0\n\n"
)

// PSK derives the 256 bit pre-shared key for passphrase on ssid, as
// wpa_passphrase does. A 64 character passphrase is already a PSK.
func PSK(ssid, passphrase string) (string, error) {
	if err := validPassphrase(passphrase); err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", fmt.Errorf("open network has no PSK")
	}
	if len(passphrase) == 64 {
		return strings.ToLower(passphrase), nil
	}
	k := pbkdf2.Key([]byte(passphrase), []byte(ssid), 4096, 32, sha1.New)
	return hex.EncodeToString(k), nil
}

// supplicantConfig renders the wpa_supplicant config for the client role.
// The SSID is written hex encoded so any byte is allowed in it.
func supplicantConfig(c *ClientConfig) ([]byte, error) {
	var freq string
	if c.Channel.Valid() {
		freq = fmt.Sprintf("\n\tscan_freq=%d", channelFreq(c.Channel))
	}
	var b bytes.Buffer
	b.WriteString(supplicantHeader)
	if c.Passphrase == "" {
		fmt.Fprintf(&b, nopassphrase, hex.EncodeToString([]byte(c.SSID)), freq)
		return b.Bytes(), nil
	}
	psk, err := PSK(c.SSID, c.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("essid: %v: %w", c.SSID, err)
	}
	fmt.Fprintf(&b, pskNetwork, hex.EncodeToString([]byte(c.SSID)), psk, freq)
	return b.Bytes(), nil
}

// hostapdConfig renders the hostapd config for the access point role.
// ssid2 takes the SSID hex encoded, as in supplicantConfig.
func hostapdConfig(iface string, c *APConfig) ([]byte, error) {
	ch := c.Channel
	if !ch.Valid() {
		ch = fallbackAPChannel
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "interface=%s\ndriver=nl80211\nssid2=%x\nhw_mode=g\nchannel=%d\n", iface, c.SSID, ch)
	if c.Passphrase != "" {
		psk, err := PSK(c.SSID, c.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("essid: %v: %w", c.SSID, err)
		}
		fmt.Fprintf(&b, "wpa=2\nwpa_key_mgmt=WPA-PSK\nrsn_pairwise=CCMP\nwpa_psk=%s\n", psk)
	}
	return b.Bytes(), nil
}

// channelFreq maps a 2.4GHz channel to its centre frequency in MHz.
func channelFreq(c Channel) int {
	if c == 14 {
		return 2484
	}
	return 2407 + 5*int(c)
}

// freqChannel is the inverse of channelFreq; it returns AutoChannel
// outside the 2.4GHz band.
func freqChannel(mhz int) Channel {
	switch {
	case mhz == 2484:
		return 14
	case mhz >= 2412 && mhz <= 2472 && (mhz-2407)%5 == 0:
		return Channel((mhz - 2407) / 5)
	}
	return AutoChannel
}
