// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestPSK(t *testing.T) {
	for _, tt := range []struct {
		name string
		ssid string
		pass string
		want string
	}{
		{
			// IEEE 802.11i annex H.4 test vector.
			name: "ieee vector",
			ssid: "IEEE",
			pass: "password",
			want: "f42c6fc52df0ebef9ebb4b90b38a5f902e83fe1b135a70e23aed762e9710a12e",
		},
		{
			name: "raw psk passes through lowercased",
			ssid: "home",
			pass: strings.Repeat("AB", 32),
			want: strings.Repeat("ab", 32),
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PSK(tt.ssid, tt.pass)
			if err != nil {
				t.Fatalf("PSK(%q, %q): %v", tt.ssid, tt.pass, err)
			}
			if got != tt.want {
				t.Errorf("Incorrect PSK. got: %v, want: %v", got, tt.want)
			}
		})
	}
}

func TestPSKErrors(t *testing.T) {
	if _, err := PSK("home", ""); err == nil {
		t.Errorf("PSK of an open network got: nil error, want: error")
	}
	if _, err := PSK("home", "short"); err == nil {
		t.Errorf("PSK of a short passphrase got: nil error, want: error")
	}
}

func TestChannelFreq(t *testing.T) {
	for ch := Channel(1); ch <= 14; ch++ {
		if got := freqChannel(channelFreq(ch)); got != ch {
			t.Errorf("freqChannel(channelFreq(%v)) got: %v, want: %v", ch, got, ch)
		}
	}
	if got := freqChannel(5180); got != AutoChannel {
		t.Errorf("freqChannel(5180) got: %v, want: auto", got)
	}
}

func TestSupplicantConfigOpen(t *testing.T) {
	conf, err := supplicantConfig(&ClientConfig{SSID: "cafe"})
	if err != nil {
		t.Fatal(err)
	}
	s := string(conf)
	if !strings.Contains(s, "key_mgmt=NONE") || strings.Contains(s, "scan_freq") {
		t.Errorf("Incorrect open network config:\n%s", s)
	}
}

func TestConfigSSIDEscaping(t *testing.T) {
	for _, ssid := range []string{
		`cafe"`,
		"cafe\"\n\tkey_mgmt=NONE",
		"ap\nchannel=13",
	} {
		t.Run(ssid, func(t *testing.T) {
			want := hex.EncodeToString([]byte(ssid))

			conf, err := supplicantConfig(&ClientConfig{SSID: ssid, Passphrase: "password"})
			if err != nil {
				t.Fatal(err)
			}
			s := string(conf)
			if !strings.Contains(s, "\tssid="+want+"\n") {
				t.Errorf("Incorrect ssid line. got:\n%s\nwant: ssid=%v", s, want)
			}
			if n := strings.Count(s, "key_mgmt="); n != 1 {
				t.Errorf("Incorrect number of key_mgmt lines. got: %v, want: 1", n)
			}

			ap, err := hostapdConfig("wlan0ap", &APConfig{SSID: ssid, Channel: 6})
			if err != nil {
				t.Fatal(err)
			}
			a := string(ap)
			if !strings.Contains(a, "\nssid2="+want+"\n") {
				t.Errorf("Incorrect ssid2 line. got:\n%s\nwant: ssid2=%v", a, want)
			}
			if n := strings.Count(a, "channel="); n != 1 || !strings.Contains(a, "\nchannel=6\n") {
				t.Errorf("Incorrect channel lines. got:\n%s", a)
			}
		})
	}
}
