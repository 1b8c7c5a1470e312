// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ping sends ICMP echo requests and counts the replies. It does
// not decide whether a loss is acceptable.
package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

const protocolICMP = 1

var ErrBadSize = errors.New("negative probe size")

// Summary counts one run of probes.
type Summary struct {
	Transmitted int
	Received    int
}

// Lost is the number of unanswered probes.
func (s Summary) Lost() int {
	return s.Transmitted - s.Received
}

func (s Summary) String() string {
	return fmt.Sprintf("%d transmitted, %d received", s.Transmitted, s.Received)
}

// Pinger holds the probe parameters.
type Pinger struct {
	Count    int
	Timeout  time.Duration
	Interval time.Duration
	Size     int
}

// Default returns the default probe parameters: 5 probes of 56 bytes,
// one per second, each waiting up to a second for its reply.
func Default() *Pinger {
	return &Pinger{
		Count:    5,
		Timeout:  time.Second,
		Interval: time.Second,
		Size:     56,
	}
}

// listen opens a raw ICMP socket as root and an unprivileged datagram
// ICMP socket otherwise.
func listen() (*icmp.PacketConn, bool, error) {
	if unix.Geteuid() == 0 {
		c, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
		return c, true, err
	}
	c, err := icmp.ListenPacket("udp4", "0.0.0.0")
	return c, false, err
}

// Ping sends p.Count echo requests to ip. Lost replies are just counted.
// It returns an error when probing was impossible or ctx ended before
// every probe was sent; the partial Summary comes with it.
func (p *Pinger) Ping(ctx context.Context, ip net.IP) (Summary, error) {
	var s Summary
	dst4 := ip.To4()
	if dst4 == nil {
		return s, fmt.Errorf("%v is not an IPv4 address", ip)
	}
	if p.Size < 0 {
		return s, fmt.Errorf("probe size %d: %w", p.Size, ErrBadSize)
	}
	conn, raw, err := listen()
	if err != nil {
		return s, fmt.Errorf("icmp socket: %w", err)
	}
	defer conn.Close()

	var dst net.Addr = &net.UDPAddr{IP: dst4}
	if raw {
		dst = &net.IPAddr{IP: dst4}
	}
	id := os.Getpid() & 0xffff
	payload := make([]byte, p.Size)

	for seq := 0; seq < p.Count; seq++ {
		if seq > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.Interval):
			}
		}
		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("stopped after %v: %w", s, err)
		}
		m := icmp.Message{
			Type: ipv4.ICMPTypeEcho,
			Body: &icmp.Echo{ID: id, Seq: seq, Data: payload},
		}
		b, err := m.Marshal(nil)
		if err != nil {
			return s, err
		}
		if _, err := conn.WriteTo(b, dst); err != nil {
			return s, fmt.Errorf("sending probe %d: %w", seq, err)
		}
		s.Transmitted++
		if p.await(ctx, conn, dst4, seq, raw, id) {
			s.Received++
		}
	}
	return s, nil
}

// await reads until the reply to seq shows up or the per-probe timeout
// expires. Datagram sockets rewrite the echo ID so only raw sockets check it.
func (p *Pinger) await(ctx context.Context, conn *icmp.PacketConn, from net.IP, seq int, raw bool, id int) bool {
	deadline := time.Now().Add(p.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return false
	}
	buf := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			// Deadline hit or socket closed: the probe is lost.
			return false
		}
		if !peerIP(peer).Equal(from) {
			continue
		}
		m, err := icmp.ParseMessage(protocolICMP, buf[:n])
		if err != nil || m.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := m.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq || (raw && echo.ID != id) {
			continue
		}
		return true
	}
}

func peerIP(a net.Addr) net.IP {
	switch a := a.(type) {
	case *net.UDPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	}
	return nil
}
