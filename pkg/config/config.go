// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config gathers the target network and runtime settings.
//
// Sources, lowest precedence first: values linked in at build time,
// the kernel command line, WIFIUP_* environment variables, command
// line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/u-root/u-root/pkg/cmdline"
	"github.com/u-root/wifiup/pkg/wifi"
)

// Set with -ldflags "-X github.com/u-root/wifiup/pkg/config.BuildSSID=...".
var (
	BuildSSID       string
	BuildPassphrase string
)

const (
	EnvPrefix        = "WIFIUP"
	DefaultInterface = "wlan0"
)

// Keys shared by flags, environment and viper.
const (
	KeyInterface  = "interface"
	KeySSID       = "ssid"
	KeyPassphrase = "passphrase"
	KeyAPSSID     = "ap-ssid"
	KeyVerbose    = "verbose"
	KeyDebug      = "debug"
	KeyConsole    = "console"
	KeyDryRun     = "dry-run"
)

// kernelKeys maps kernel command line flags to config keys.
var kernelKeys = map[string]string{
	"wifiup.iface":   KeyInterface,
	"wifiup.ssid":    KeySSID,
	"wifiup.pass":    KeyPassphrase,
	"wifiup.ap_ssid": KeyAPSSID,
}

var ErrNoInterface = errors.New("no interface")

type Config struct {
	Interface  string
	SSID       string
	Passphrase string
	APSSID     string
	Verbose    bool
	Debug      bool
	Console    bool
	DryRun     bool
}

// Flags registers the command line flags.
func Flags(fs *pflag.FlagSet) {
	fs.StringP(KeyInterface, "i", "", "wireless interface (default "+DefaultInterface+")")
	fs.String(KeySSID, "", "network to join")
	fs.String(KeyPassphrase, "", "WPA passphrase of the network, empty for open networks")
	fs.String(KeyAPSSID, "", "access point advertised next to the station (default "+wifi.DefaultAPSSID+")")
	fs.BoolP(KeyVerbose, "v", false, "verbose output")
	fs.Bool(KeyDebug, false, "debug output")
	fs.Bool(KeyConsole, false, "show progress on the console")
	fs.Bool(KeyDryRun, false, "drive a stub radio instead of the hardware")
}

// KernelCmdline returns the kernel command line flags, or nil when
// /proc/cmdline cannot be read.
func KernelCmdline() map[string]string {
	c := cmdline.NewCmdLine()
	if c.Err != nil {
		return nil
	}
	return c.AsMap
}

// NewViper returns a viper with defaults from the build and kernel, and
// WIFIUP_* environment lookups. Flags are bound by the caller.
func NewViper(kernel map[string]string) *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyInterface, DefaultInterface)
	v.SetDefault(KeySSID, BuildSSID)
	v.SetDefault(KeyPassphrase, BuildPassphrase)
	v.SetDefault(KeyAPSSID, wifi.DefaultAPSSID)
	for k, key := range kernelKeys {
		if val, ok := kernel[k]; ok {
			v.SetDefault(key, val)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// Matches the wifiup.pass kernel parameter; the long form also works.
	_ = v.BindEnv(KeyPassphrase, EnvPrefix+"_PASS", EnvPrefix+"_PASSPHRASE")
	return v
}

// Load reads and validates the config.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		Interface:  v.GetString(KeyInterface),
		SSID:       v.GetString(KeySSID),
		Passphrase: v.GetString(KeyPassphrase),
		APSSID:     v.GetString(KeyAPSSID),
		Verbose:    v.GetBool(KeyVerbose),
		Debug:      v.GetBool(KeyDebug),
		Console:    v.GetBool(KeyConsole),
		DryRun:     v.GetBool(KeyDryRun),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Target is the identity to join.
func (c *Config) Target() wifi.TargetIdentity {
	return wifi.TargetIdentity{SSID: c.SSID, Passphrase: c.Passphrase}
}

func (c *Config) Validate() error {
	if c.Interface == "" {
		return ErrNoInterface
	}
	if err := c.Target().Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if c.APSSID == "" {
		return fmt.Errorf("%s: %w", KeyAPSSID, wifi.ErrEmptySSID)
	}
	if len(c.APSSID) > wifi.MaxSSIDLen {
		return fmt.Errorf("%s: %w", KeyAPSSID, wifi.ErrSSIDTooLong)
	}
	return nil
}
