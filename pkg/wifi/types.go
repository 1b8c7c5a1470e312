// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// MaxSSIDLen is the 802.11 limit on an ESSID, in bytes.
	MaxSSIDLen = 32
	// DefaultAPSSID is the network the device advertises next to its station.
	DefaultAPSSID = "aptest"
	// fallbackAPChannel is used for the access point when the scan did not
	// tell us where the target network lives.
	fallbackAPChannel Channel = 1
)

var (
	ErrEmptySSID      = errors.New("ssid is empty")
	ErrSSIDTooLong    = fmt.Errorf("ssid is longer than %d bytes", MaxSSIDLen)
	ErrBadPassphrase  = errors.New("passphrase must be empty or 8 to 64 bytes")
	ErrBadRawPSK      = errors.New("64 byte passphrase must be a hex encoded PSK")
	ErrNoClientConfig = errors.New("station config has no client role")
)

type SecProto int

const (
	NoEnc SecProto = iota
	WpaPsk
	WpaEap
	NotSupportedProto
)

func (s SecProto) String() string {
	switch s {
	case NoEnc:
		return "open"
	case WpaPsk:
		return "WPA-PSK"
	case WpaEap:
		return "WPA-EAP"
	}
	return "unsupported"
}

// Channel is a 2.4GHz channel number. AutoChannel leaves the choice to the radio.
type Channel uint8

const AutoChannel Channel = 0

// Valid reports whether c names a real 2.4GHz channel.
func (c Channel) Valid() bool {
	return c >= 1 && c <= 14
}

func (c Channel) String() string {
	if !c.Valid() {
		return "auto"
	}
	return fmt.Sprintf("%d", uint8(c))
}

// TargetIdentity is the network the station should join.
type TargetIdentity struct {
	SSID       string
	Passphrase string
}

// Validate checks the identity against the radio limits.
func (t TargetIdentity) Validate() error {
	if t.SSID == "" {
		return ErrEmptySSID
	}
	if len(t.SSID) > MaxSSIDLen {
		return ErrSSIDTooLong
	}
	return validPassphrase(t.Passphrase)
}

func validPassphrase(p string) error {
	switch n := len(p); {
	case n == 0:
		return nil
	case n < 8 || n > 64:
		return ErrBadPassphrase
	case n == 64:
		if _, err := hex.DecodeString(p); err != nil {
			return ErrBadRawPSK
		}
	}
	return nil
}

// AccessPoint is one record of a scan.
type AccessPoint struct {
	Essid     string
	Signal    int // dBm
	Channel   Channel
	AuthSuite SecProto
}

// ClientConfig is the station role of a StationConfig.
type ClientConfig struct {
	SSID       string
	Passphrase string
	Channel    Channel
}

// APConfig is the access point role of a StationConfig.
type APConfig struct {
	SSID       string
	Passphrase string
	Channel    Channel
}

// StationConfig carries both radio roles so they are applied in one step.
type StationConfig struct {
	Client *ClientConfig
	AP     *APConfig
}

// NewMixedConfig builds a config that joins target and, at the same time,
// advertises apSSID. The access point follows the client channel, or
// channel 1 when the client channel is unknown.
func NewMixedConfig(target TargetIdentity, apSSID string, ch Channel) StationConfig {
	if !ch.Valid() {
		ch = AutoChannel
	}
	apCh := ch
	if !apCh.Valid() {
		apCh = fallbackAPChannel
	}
	return StationConfig{
		Client: &ClientConfig{
			SSID:       target.SSID,
			Passphrase: target.Passphrase,
			Channel:    ch,
		},
		AP: &APConfig{
			SSID:    apSSID,
			Channel: apCh,
		},
	}
}

// Validate checks both roles.
func (c StationConfig) Validate() error {
	if c.Client == nil {
		return ErrNoClientConfig
	}
	if err := (TargetIdentity{c.Client.SSID, c.Client.Passphrase}).Validate(); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if c.AP != nil {
		if c.AP.SSID == "" {
			return fmt.Errorf("access point: %w", ErrEmptySSID)
		}
		if len(c.AP.SSID) > MaxSSIDLen {
			return fmt.Errorf("access point: %w", ErrSSIDTooLong)
		}
		if err := validPassphrase(c.AP.Passphrase); err != nil {
			return fmt.Errorf("access point: %w", err)
		}
	}
	return nil
}

// WiFi is a radio driver. Every call blocks until the driver is done.
type WiFi interface {
	// Interface returns the station network interface name.
	Interface() string
	// Scan returns the visible access points in driver order.
	Scan(ctx context.Context) ([]AccessPoint, error)
	// Configure applies both roles of c. Applying the same c again is not an error.
	Configure(ctx context.Context, c StationConfig) error
	// Connect blocks until the station is associated or the driver gives up.
	Connect(ctx context.Context) error
}
