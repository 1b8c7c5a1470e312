// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wlog sets up the process logger: logr in front, zerolog behind.
package wlog

import (
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zerologr"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Init logs to stderr at the level picked by verbose and debug.
func Init(verbose, debug bool) logr.Logger {
	return New(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), verbose, debug)
}

// New logs to w. A terminal gets human readable lines, anything else gets
// one JSON object per line.
func New(w io.Writer, terminal, verbose, debug bool) logr.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"
	// logr V(1) is zerolog debug.
	zerologr.SetMaxV(1)

	zl := zerolog.New(w)
	if terminal {
		zl = zl.Output(zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    os.Getenv("NO_COLOR") != "",
			TimeFormat: time.RFC3339,
		})
	}
	zl = zl.Level(Level(verbose, debug)).With().Timestamp().Logger()
	return zerologr.New(&zl)
}

// Level maps the command line switches to a zerolog level.
func Level(verbose, debug bool) zerolog.Level {
	switch {
	case debug:
		return zerolog.DebugLevel
	case verbose:
		return zerolog.InfoLevel
	}
	return zerolog.ErrorLevel
}
