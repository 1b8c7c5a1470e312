// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wifi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-logr/logr"
	"github.com/vishvananda/netlink"
)

const (
	// AssociateTimeout bounds how long Connect waits for the supplicant.
	AssociateTimeout = 30 * time.Second
	// ifNameMax is IFNAMSIZ without the trailing NUL.
	ifNameMax = 15
)

var (
	ErrAssociation   = errors.New("association did not complete")
	ErrNotConfigured = errors.New("radio has not been configured")
)

var (
	// RegEx for parsing iwlist output
	cellRE       = regexp.MustCompile(`(?m)^\s*Cell \d+`)
	essidRE      = regexp.MustCompile(`(?m)^\s*ESSID:"(.*)"\s*$`)
	channelRE    = regexp.MustCompile(`(?m)^\s*Channel:(\d+)\s*$`)
	freqRE       = regexp.MustCompile(`(?m)^\s*Frequency:(\d+(?:\.\d+)?) GHz`)
	signalRE     = regexp.MustCompile(`Signal level=(-?\d+) dBm`)
	encKeyOptRE  = regexp.MustCompile(`(?m)^\s*Encryption key:(on|off)\s*$`)
	wpa2RE       = regexp.MustCompile(`(?m)^\s*IE: IEEE 802.11i/WPA2 Version 1\s*$`)
	authSuitesRE = regexp.MustCompile(`(?m)^\s*Authentication Suites \(\d+\) : (.*)$`)
	wpaStateRE   = regexp.MustCompile(`(?m)^wpa_state=(\w+)$`)
)

// Executor runs an external command and returns its stdout.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execExecutor struct{}

func (execExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// IWLWorker implements the WiFi interface with the wireless tools
// (iwlist, iw) plus wpa_supplicant and hostapd.
type IWLWorker struct {
	Iface     string
	ConfigDir string
	Exec      Executor
	Log       logr.Logger

	// linkExists is swapped out in tests that have no netlink.
	linkExists func(name string) bool
	applied    *StationConfig
}

var _ = WiFi(&IWLWorker{})

// NewIWLWorker brings iface up and returns a worker driving it.
func NewIWLWorker(iface string, log logr.Logger) (*IWLWorker, error) {
	l, err := netlink.LinkByName(iface)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", iface, err)
	}
	if err := netlink.LinkSetUp(l); err != nil {
		return nil, fmt.Errorf("%s: link up: %w", iface, err)
	}
	return &IWLWorker{
		Iface:      iface,
		ConfigDir:  os.TempDir(),
		Exec:       execExecutor{},
		Log:        log,
		linkExists: netlinkExists,
	}, nil
}

func netlinkExists(name string) bool {
	_, err := netlink.LinkByName(name)
	return err == nil
}

func (w *IWLWorker) Interface() string {
	return w.Iface
}

// APInterface is the virtual interface carrying the access point role.
func (w *IWLWorker) APInterface() string {
	n := w.Iface
	if len(n) > ifNameMax-2 {
		n = n[:ifNameMax-2]
	}
	return n + "ap"
}

func (w *IWLWorker) supplicantPath() string {
	return filepath.Join(w.ConfigDir, "wpa_supplicant-"+w.Iface+".conf")
}

func (w *IWLWorker) hostapdPath() string {
	return filepath.Join(w.ConfigDir, "hostapd-"+w.APInterface()+".conf")
}

func (w *IWLWorker) Scan(ctx context.Context) ([]AccessPoint, error) {
	out, err := w.Exec.Run(ctx, "iwlist", w.Iface, "scanning")
	if err != nil {
		return nil, err
	}
	aps := parseIwlistOut(out)
	w.Log.V(1).Info("scan done", "interface", w.Iface, "records", len(aps))
	return aps, nil
}

/*
 * Assumptions:
 *	1) Every field of a cell sits between its "Cell" line and the next one
 *	2) We only support IEEE 802.11i/WPA2 Version 1
 *	3) Each Wifi only support (1) authentication suites (based on observations)
 *
 * Records keep iwlist order and duplicates are kept: callers decide.
 */
func parseIwlistOut(o []byte) []AccessPoint {
	cells := cellRE.FindAllIndex(o, -1)
	if cells == nil {
		return nil
	}

	res := make([]AccessPoint, 0, len(cells))
	for i := range cells {
		start, end := cells[i][0], len(o)
		if i != len(cells)-1 {
			end = cells[i+1][0]
		}
		res = append(res, parseCell(o[start:end]))
	}
	return res
}

func parseCell(c []byte) AccessPoint {
	var ap AccessPoint
	if m := essidRE.FindSubmatch(c); m != nil {
		ap.Essid = string(m[1])
	}
	if m := channelRE.FindSubmatch(c); m != nil {
		if n, err := strconv.Atoi(string(m[1])); err == nil && Channel(n).Valid() {
			ap.Channel = Channel(n)
		}
	} else if m := freqRE.FindSubmatch(c); m != nil {
		if f, err := strconv.ParseFloat(string(m[1]), 64); err == nil {
			ap.Channel = freqChannel(int(f*1000 + 0.5))
		}
	}
	if m := signalRE.FindSubmatch(c); m != nil {
		ap.Signal, _ = strconv.Atoi(string(m[1]))
	}

	if m := encKeyOptRE.FindSubmatch(c); m != nil && string(m[1]) == "off" {
		ap.AuthSuite = NoEnc
		return ap
	}
	// Narrow down the scope when looking for Authorization Suites
	l := wpa2RE.FindIndex(c)
	if l == nil {
		ap.AuthSuite = NotSupportedProto
		return ap
	}
	m := authSuitesRE.FindSubmatch(c[l[0]:])
	if m == nil {
		ap.AuthSuite = NotSupportedProto
		return ap
	}
	switch strings.TrimSpace(string(m[1])) {
	case "PSK":
		ap.AuthSuite = WpaPsk
	case "802.1x":
		ap.AuthSuite = WpaEap
	default:
		ap.AuthSuite = NotSupportedProto
	}
	return ap
}

// Configure writes the supplicant and hostapd configs and makes sure the
// access point interface exists. Nothing is started until Connect.
func (w *IWLWorker) Configure(ctx context.Context, c StationConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	conf, err := supplicantConfig(c.Client)
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.supplicantPath(), conf, 0600); err != nil {
		return fmt.Errorf("%s: %w", w.supplicantPath(), err)
	}

	if c.AP != nil {
		ap := w.APInterface()
		if !w.linkExists(ap) {
			if _, err := w.Exec.Run(ctx, "iw", "dev", w.Iface, "interface", "add", ap, "type", "__ap"); err != nil {
				return fmt.Errorf("creating %s: %w", ap, err)
			}
		}
		conf, err := hostapdConfig(ap, c.AP)
		if err != nil {
			return err
		}
		if err := os.WriteFile(w.hostapdPath(), conf, 0600); err != nil {
			return fmt.Errorf("%s: %w", w.hostapdPath(), err)
		}
	}

	w.applied = &c
	w.Log.V(1).Info("configured", "interface", w.Iface, "ssid", c.Client.SSID, "channel", c.Client.Channel.String())
	return nil
}

// Connect starts the supplicant (and hostapd for the access point role)
// and waits for association. It does not wait for an address.
func (w *IWLWorker) Connect(ctx context.Context) error {
	if w.applied == nil {
		return ErrNotConfigured
	}

	// A running supplicant just rereads its config.
	if _, err := w.Exec.Run(ctx, "wpa_cli", "-i", w.Iface, "reconfigure"); err != nil {
		if _, err := w.Exec.Run(ctx, "wpa_supplicant", "-B", "-i", w.Iface, "-c", w.supplicantPath()); err != nil {
			return err
		}
	}
	if w.applied.AP != nil {
		if _, err := w.Exec.Run(ctx, "hostapd", "-B", w.hostapdPath()); err != nil {
			return fmt.Errorf("access point %s: %w", w.APInterface(), err)
		}
	}

	return w.waitAssociated(ctx)
}

func (w *IWLWorker) waitAssociated(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = AssociateTimeout

	var state string
	op := func() error {
		out, err := w.Exec.Run(ctx, "wpa_cli", "-i", w.Iface, "status")
		if err != nil {
			return err
		}
		m := wpaStateRE.FindSubmatch(out)
		if m == nil {
			return fmt.Errorf("no wpa_state in status")
		}
		state = string(m[1])
		if state != "COMPLETED" {
			return fmt.Errorf("wpa_state=%s", state)
		}
		return nil
	}
	notify := func(err error, d time.Duration) {
		w.Log.V(1).Info("waiting for association", "interface", w.Iface, "state", state, "retryIn", d)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("%w: %v", ErrAssociation, err)
	}
	return nil
}
