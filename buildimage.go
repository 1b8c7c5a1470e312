// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build ignore

// buildimage builds a u-root initramfs that runs wifiup at boot.
//
//	go run buildimage.go -ssid home -pass secret
//
// The credentials are linked into wifiup; leave them empty to pass them on
// the kernel command line instead (wifiup.ssid=, wifiup.pass=).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
)

var (
	debug = func(string, ...interface{}) {}

	verbose = flag.Bool("v", true, "verbose debugging output")
	uroot   = flag.String("u", "", "options for u-root")
	cmds    = flag.String("c", "core", "u-root commands to build into the image")
	wcmds   = flag.String("w", "github.com/u-root/wifiup/cmds/wifiup", "wifiup commands to build into the image")
	ssid    = flag.String("ssid", "", "network linked into wifiup")
	pass    = flag.String("pass", "", "passphrase linked into wifiup")
	out     = flag.String("o", "/tmp/initramfs.linux_amd64.cpio", "output file")
)

func init() {
	flag.Parse()
	if *verbose {
		debug = log.Printf
	}
}

// This function is a bit nasty but we'll need it until we can extend
// u-root a bit.
// the Must means it has to succeed or we die.
func extraBinMust(n string) string {
	p, err := exec.LookPath(n)
	if err != nil {
		log.Fatalf("extraMustBin(%q): %v", n, err)
	}
	return p
}

func ldflags() string {
	const pkg = "github.com/u-root/wifiup/pkg/config"
	var f []string
	if *ssid != "" {
		f = append(f, fmt.Sprintf("-X '%s.BuildSSID=%s'", pkg, *ssid))
	}
	if *pass != "" {
		f = append(f, fmt.Sprintf("-X '%s.BuildPassphrase=%s'", pkg, *pass))
	}
	return strings.Join(f, " ")
}

func main() {
	var args = []string{
		"go", "run", "github.com/u-root/u-root/.",
		"-o", *out,
		"-uinitcmd", "wifiup --console",
		"-files", extraBinMust("iw"),
		"-files", extraBinMust("iwlist"),
		"-files", extraBinMust("wpa_supplicant"),
		"-files", extraBinMust("wpa_cli"),
		"-files", extraBinMust("hostapd"),
	}
	args = append(append(args, strings.Fields(*uroot)...), *cmds, *wcmds)

	c := exec.Command(args[0], args[1:]...)
	c.Stdout, c.Stderr = os.Stdout, os.Stderr
	if f := ldflags(); f != "" {
		c.Env = append(os.Environ(), "GOFLAGS=-ldflags="+f)
	}
	debug("Run %v", args)
	if err := c.Run(); err != nil {
		log.Fatalf("%s failed: %v", args, err)
	}
	debug("done")
}
