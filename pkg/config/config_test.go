// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/u-root/wifiup/pkg/wifi"
)

func TestLoadPrecedence(t *testing.T) {
	BuildSSID, BuildPassphrase = "built", "builtpass"
	defer func() { BuildSSID, BuildPassphrase = "", "" }()

	t.Run("build time", func(t *testing.T) {
		c, err := Load(NewViper(nil))
		require.NoError(t, err)
		assert.Equal(t, "built", c.SSID)
		assert.Equal(t, "builtpass", c.Passphrase)
		assert.Equal(t, DefaultInterface, c.Interface)
		assert.Equal(t, wifi.DefaultAPSSID, c.APSSID)
	})

	t.Run("kernel over build", func(t *testing.T) {
		c, err := Load(NewViper(map[string]string{"wifiup.ssid": "kernel", "wifiup.iface": "wlp2s0"}))
		require.NoError(t, err)
		assert.Equal(t, "kernel", c.SSID)
		assert.Equal(t, "builtpass", c.Passphrase)
		assert.Equal(t, "wlp2s0", c.Interface)
	})

	t.Run("env over kernel", func(t *testing.T) {
		t.Setenv("WIFIUP_SSID", "env")
		t.Setenv("WIFIUP_AP_SSID", "envap")
		c, err := Load(NewViper(map[string]string{"wifiup.ssid": "kernel"}))
		require.NoError(t, err)
		assert.Equal(t, "env", c.SSID)
		assert.Equal(t, "envap", c.APSSID)
	})

	t.Run("passphrase env names", func(t *testing.T) {
		t.Setenv("WIFIUP_PASS", "shortname")
		c, err := Load(NewViper(nil))
		require.NoError(t, err)
		assert.Equal(t, "shortname", c.Passphrase)

		t.Setenv("WIFIUP_PASS", "")
		t.Setenv("WIFIUP_PASSPHRASE", "longname")
		c, err = Load(NewViper(nil))
		require.NoError(t, err)
		assert.Equal(t, "longname", c.Passphrase)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("WIFIUP_SSID", "env")
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		Flags(fs)
		require.NoError(t, fs.Parse([]string{"--ssid", "flag", "--dry-run", "-v"}))

		v := NewViper(nil)
		require.NoError(t, v.BindPFlags(fs))
		c, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "flag", c.SSID)
		assert.True(t, c.DryRun)
		assert.True(t, c.Verbose)
		assert.False(t, c.Debug)
	})
}

func TestLoadRejects(t *testing.T) {
	for _, tt := range []struct {
		name string
		env  map[string]string
		want error
	}{
		{"no ssid", map[string]string{}, wifi.ErrEmptySSID},
		{"short passphrase", map[string]string{"WIFIUP_SSID": "home", "WIFIUP_PASSPHRASE": "abc"}, wifi.ErrBadPassphrase},
		{"long ap ssid", map[string]string{"WIFIUP_SSID": "home", "WIFIUP_AP_SSID": "0123456789012345678901234567890123"}, wifi.ErrSSIDTooLong},
	} {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(NewViper(nil))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
