// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/u-root/wifiup/pkg/config"
	"github.com/u-root/wifiup/pkg/wifi"
	"github.com/u-root/wifiup/pkg/wlog"
)

// printScan writes the records in driver order and, when ssid is set,
// the channel a bring-up would pick.
func printScan(w io.Writer, aps []wifi.AccessPoint, ssid string) {
	for i, ap := range aps {
		fmt.Fprintf(w, "%2d %-32q ch %-4v %4d dBm %v\n", i, ap.Essid, ap.Channel, ap.Signal, ap.AuthSuite)
	}
	if ssid == "" {
		return
	}
	if ch, ok := wifi.Select(aps, ssid); ok {
		fmt.Fprintf(w, "%q found, channel %v\n", ssid, ch)
	} else {
		fmt.Fprintf(w, "%q not found, channel %v\n", ssid, ch)
	}
}

// newScanCmd runs just the scan step, to make spotting radio problems easier.
func newScanCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan once and print the access points in driver order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &config.Config{
				Interface: v.GetString(config.KeyInterface),
				SSID:      v.GetString(config.KeySSID),
				DryRun:    v.GetBool(config.KeyDryRun),
			}
			log := wlog.Init(v.GetBool(config.KeyVerbose), v.GetBool(config.KeyDebug))

			radio, err := newRadio(c, log)
			if err != nil {
				return err
			}
			aps, err := radio.Scan(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan %s: %w", c.Interface, err)
			}
			printScan(cmd.OutOrStdout(), aps, c.SSID)
			return nil
		},
	}
}
