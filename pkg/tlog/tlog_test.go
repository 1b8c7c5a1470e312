// Copyright 2019 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlog

import "testing"

func TestLogger(t *testing.T) {
	l := Testing{t}
	l.Printf("printf %d", 1)
	l.Print("print")

	log := l.Logger()
	if !log.V(1).Enabled() {
		t.Errorf("Incorrect verbosity. got: V(1) disabled, want: enabled")
	}
	log.Info("hello", "key", "value")
}
