// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wlog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.ErrorLevel, Level(false, false))
	assert.Equal(t, zerolog.InfoLevel, Level(true, false))
	assert.Equal(t, zerolog.DebugLevel, Level(false, true))
	assert.Equal(t, zerolog.DebugLevel, Level(true, true))
}

func TestNewFilters(t *testing.T) {
	for _, tt := range []struct {
		name      string
		verbose   bool
		debug     bool
		wantInfo  bool
		wantDebug bool
	}{
		{name: "quiet"},
		{name: "verbose", verbose: true, wantInfo: true},
		{name: "debug", debug: true, wantInfo: true, wantDebug: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer
			log := New(&b, false, tt.verbose, tt.debug)

			log.Info("scanning", "ssid", "home")
			assert.Equal(t, tt.wantInfo, bytes.Contains(b.Bytes(), []byte(`"ssid":"home"`)))

			b.Reset()
			log.V(1).Info("state", "to", "connecting")
			assert.Equal(t, tt.wantDebug, bytes.Contains(b.Bytes(), []byte(`"to":"connecting"`)))

			b.Reset()
			log.Error(errors.New("boom"), "bring-up failed")
			assert.Contains(t, b.String(), "bring-up failed")
		})
	}
}
