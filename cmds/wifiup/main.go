// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// wifiup joins a wireless network, advertises its own access point next
// to it, waits for a lease, checks the gateway answers, then stays up.
//
// Synopsis:
//
//	wifiup [--ssid NAME] [--passphrase PASS] [-i IFACE] [--console]
//	wifiup scan [-i IFACE] [--ssid NAME]
//
// The network may also come from the kernel command line
// (wifiup.ssid=, wifiup.pass=, wifiup.iface=) or WIFIUP_* variables.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/u-root/wifiup/pkg/bringup"
	"github.com/u-root/wifiup/pkg/config"
	"github.com/u-root/wifiup/pkg/console"
	"github.com/u-root/wifiup/pkg/dhclient"
	"github.com/u-root/wifiup/pkg/ping"
	"github.com/u-root/wifiup/pkg/wifi"
	"github.com/u-root/wifiup/pkg/wlog"
	"golang.org/x/sys/unix"
)

// loopbackLeaser hands out the loopback address. Dry runs use it so the
// prober still sends real packets.
type loopbackLeaser struct{}

func (loopbackLeaser) Request(ctx context.Context, iface string) (*dhclient.Lease, error) {
	return &dhclient.Lease{
		IP:      net.IPv4(127, 0, 0, 1).To4(),
		Subnet:  net.IPv4Mask(255, 0, 0, 0),
		Gateway: net.IPv4(127, 0, 0, 1).To4(),
	}, nil
}

// dryRunRadio pretends the target is on channel 6 next to a neighbour.
func dryRunRadio(c *config.Config) *wifi.StubWorker {
	return wifi.NewStubWorker(c.Interface,
		wifi.AccessPoint{Essid: "neighbour", Signal: -80, Channel: 1, AuthSuite: wifi.WpaPsk},
		wifi.AccessPoint{Essid: c.SSID, Signal: -40, Channel: 6, AuthSuite: wifi.WpaPsk},
	)
}

func newRadio(c *config.Config, log logr.Logger) (wifi.WiFi, error) {
	if c.DryRun {
		return dryRunRadio(c), nil
	}
	ok, err := wifi.IsWireless(c.Interface)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s is not a wireless interface", c.Interface)
	}
	return wifi.NewIWLWorker(c.Interface, log.WithName("wifi"))
}

func newEnv(c *config.Config, log logr.Logger) (bringup.Env, error) {
	radio, err := newRadio(c, log)
	if err != nil {
		return bringup.Env{}, err
	}
	env := bringup.Env{
		Radio:  radio,
		Prober: ping.Default(),
		APSSID: c.APSSID,
		Log:    log.WithName("bringup"),
	}
	if c.DryRun {
		env.Leaser = loopbackLeaser{}
	} else {
		env.Leaser = dhclient.DefaultClient(log.WithName("dhclient"))
	}
	return env, nil
}

// failureHold is how long a failed bring-up stays on the console.
const failureHold = 10 * time.Second

// linger waits for d or until ctx is done.
func linger(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// run brings the network up. With the console enabled a failure stays on
// screen for failureHold and the console is closed before run returns;
// after a success the console is left open for the caller to close.
func run(ctx context.Context, c *config.Config, log logr.Logger) (*bringup.Handle, error) {
	env, err := newEnv(c, log)
	if err != nil {
		return nil, err
	}
	if !c.Console {
		return bringup.New(env).BringUp(ctx, c.Target())
	}

	if err := console.Init(); err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	p := console.NewProgress("starting")
	view := console.NewStateView(p)
	env.Observe = view.Observe
	h, err := bringup.New(env).BringUp(ctx, c.Target())
	view.Done(h, err)
	if err != nil {
		linger(ctx, failureHold)
		p.Close()
		console.Close()
		return nil, err
	}
	return h, nil
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "wifiup",
		Short:        "Join a wireless network and verify its gateway answers",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(v)
			if err != nil {
				return err
			}
			log := wlog.Init(c.Verbose, c.Debug)

			h, err := run(cmd.Context(), c, log)
			if err != nil {
				log.Error(err, "bring-up failed", "kind", bringup.KindOf(err).String())
				return err
			}
			if c.Console {
				defer console.Close()
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)

			// The handle is the caller's now; we only keep the process alive.
			<-cmd.Context().Done()
			return nil
		},
	}
	config.Flags(cmd.PersistentFlags())
	cobra.CheckErr(v.BindPFlags(cmd.PersistentFlags()))
	cmd.AddCommand(newScanCmd(v))
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	if err := newRootCmd(config.NewViper(config.KernelCmdline())).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
