// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock time for testability. Production
// code injects Real(); tests inject Fake() with deterministic time
// control. Every function that would otherwise call time.Now should
// accept a Clock parameter (or be a method on a struct with a Clock
// field) instead of calling the time package directly.
package clock

import "time"

// Clock provides the current time. The assertion builder's claims and
// run-duration logging are the only time consumers in secretmint, so
// the interface is deliberately small.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
