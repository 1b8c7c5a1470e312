// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/u-root/wifiup/pkg/config"
	"github.com/u-root/wifiup/pkg/wifi"
)

func TestPrintScan(t *testing.T) {
	aps := []wifi.AccessPoint{
		{Essid: "home", Channel: 11, Signal: -80, AuthSuite: wifi.WpaPsk},
		{Essid: "home", Channel: 1, Signal: -20, AuthSuite: wifi.WpaPsk},
	}
	var b bytes.Buffer
	printScan(&b, aps, "home")
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"home" found, channel 11`, lines[2])

	b.Reset()
	printScan(&b, aps, "cafe")
	assert.Contains(t, b.String(), `"cafe" not found, channel auto`)
}

func TestScanCmdDryRun(t *testing.T) {
	v := config.NewViper(nil)
	cmd := newRootCmd(v)
	var b bytes.Buffer
	cmd.SetOut(&b)
	cmd.SetArgs([]string{"scan", "--dry-run", "--ssid", "home"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, b.String(), `"neighbour"`)
	assert.Contains(t, b.String(), `"home" found, channel 6`)
}

func TestNewEnvDryRun(t *testing.T) {
	c := &config.Config{Interface: "wlan0", SSID: "home", APSSID: "aptest", DryRun: true}
	env, err := newEnv(c, logr.Discard())
	require.NoError(t, err)

	assert.IsType(t, &wifi.StubWorker{}, env.Radio)
	assert.IsType(t, loopbackLeaser{}, env.Leaser)
	assert.Equal(t, "aptest", env.APSSID)

	l, err := env.Leaser.Request(context.Background(), "wlan0")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", l.Gateway.String())
}

func TestRootRejectsBadConfig(t *testing.T) {
	cmd := newRootCmd(config.NewViper(nil))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--ssid", "home", "--passphrase", "short", "--dry-run"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, wifi.ErrBadPassphrase)
}

func TestLinger(t *testing.T) {
	start := time.Now()
	linger(context.Background(), 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start = time.Now()
	linger(ctx, time.Hour)
	assert.Less(t, time.Since(start), time.Minute, "a stopped run does not wait for the hold")
}
