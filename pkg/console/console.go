// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package console shows bring-up progress on the device console.
package console

import (
	"fmt"
	"strings"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/u-root/wifiup/pkg/bringup"
)

const resultHeight = 20
const resultWidth = 70

func Init() error {
	return ui.Init()
}

func Close() {
	ui.Close()
}

// newParagraph returns a widgets.Paragraph struct with given initial text.
func newParagraph(title, initText string) *widgets.Paragraph {
	p := widgets.NewParagraph()
	p.Title = title
	p.Text = initText
	p.Border = true
	p.SetRect(0, 0, resultWidth+2, resultHeight+3)
	p.TextStyle.Fg = ui.ColorWhite
	return p
}

// wrap splits every message longer than wid into lines of at most wid bytes.
func wrap(message []string, wid int) []string {
	text := []string{}
	for _, m := range message {
		for len(m) > wid {
			text = append(text, m[0:wid])
			m = m[wid:]
		}
		text = append(text, m)
	}
	return text
}

// tail keeps the last n lines.
func tail(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

// Progress is the box the bring-up steps are shown in.
type Progress struct {
	paragraph *widgets.Paragraph
}

func NewProgress(text string) *Progress {
	paragraph := newParagraph("Bringing up wifi", text)
	ui.Render(paragraph)
	return &Progress{paragraph}
}

func (p *Progress) Update(text string) {
	p.paragraph.Text = text
	ui.Render(p.paragraph)
}

// SetTitle changes the box title, e.g. once the outcome is known.
func (p *Progress) SetTitle(title string, fg ui.Color) {
	p.paragraph.Title = title
	p.paragraph.BorderStyle.Fg = fg
	ui.Render(p.paragraph)
}

func (p *Progress) Close() {
	ui.Clear()
}

// StateView turns bring-up transitions into lines of text. Its Observe
// method plugs into bringup.Env.Observe.
type StateView struct {
	lines   []string
	render  func(text string)
	outcome func(title string, fg ui.Color)
}

// NewStateView renders into p. A nil p only collects lines.
func NewStateView(p *Progress) *StateView {
	v := &StateView{}
	if p != nil {
		v.render = p.Update
		v.outcome = p.SetTitle
	}
	return v
}

func describe(t bringup.Transition) string {
	if t.To == bringup.Failed {
		return fmt.Sprintf("FAILED: %v", t.Err)
	}
	return fmt.Sprintf("%-15s", t.To.String()+"...")
}

func (v *StateView) add(line string) {
	v.lines = append(v.lines, line)
	if v.render != nil {
		v.render(v.Text())
	}
}

// Observe records one transition.
func (v *StateView) Observe(t bringup.Transition) {
	v.add(describe(t))
}

// Done records the outcome of the bring-up.
func (v *StateView) Done(h *bringup.Handle, err error) {
	if err != nil {
		v.add(fmt.Sprintf("giving up: %v", err))
		v.setOutcome("Wifi failed", ui.ColorRed)
		return
	}
	v.add(fmt.Sprintf("address %v/%d", h.IP(), maskBits(h)))
	v.add(fmt.Sprintf("gateway %v", h.Gateway()))
	v.setOutcome("Wifi ready on "+h.Interface(), ui.ColorGreen)
}

func (v *StateView) setOutcome(title string, fg ui.Color) {
	if v.outcome != nil {
		v.outcome(title, fg)
	}
}

func maskBits(h *bringup.Handle) int {
	ones, _ := h.Subnet().Size()
	return ones
}

// Lines returns everything recorded so far.
func (v *StateView) Lines() []string {
	return append([]string(nil), v.lines...)
}

// Text is what fits in the box: the newest lines, wrapped.
func (v *StateView) Text() string {
	return strings.Join(tail(wrap(v.lines, resultWidth), resultHeight), "\n")
}
