// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package timesource provides the consensus core's only notion of wall
// time: a value explicitly latched once per driver cycle so every
// subcomponent invoked during that cycle observes the same instant.
//
// Adapted from the teacher's pkg/go/utils/timer/mockable.Clock: the same
// mock/real duality, generalized into the driver-facing TimeSource
// contract the specification calls for (get_relative_time / update_time).
package timesource

import "time"

// Time is nanoseconds since the Unix epoch, held as a signed 64-bit
// integer; it encodes on the wire as a plain JSON integer, non-negative
// for any clock reading after 1970.
type Time int64

// Since returns the duration elapsed between two Time values.
func (t Time) Since(other Time) time.Duration {
	return time.Duration(t - other)
}

// Add returns t shifted forward by d.
func (t Time) Add(d time.Duration) Time {
	return t + Time(d)
}

// Before reports whether t is strictly earlier than other.
func (t Time) Before(other Time) bool {
	return t < other
}

// TimeSource is the capability every subcomponent is constructed with.
// It never calls time.Now() itself outside of Update: the driver calls
// Update exactly once at the top of every cycle, and every subcomponent
// invoked during that cycle reads the same latched value via Now.
type TimeSource interface {
	// Now returns the most recently latched time.
	Now() Time
	// Update latches the current wall-clock time.
	Update()
}

// systemTimeSource is the production TimeSource, backed by time.Now.
type systemTimeSource struct {
	now Time
}

// NewSystemTimeSource returns a TimeSource backed by the system clock.
// The returned source is latched once at construction; Now keeps
// returning that instant until the next Update.
func NewSystemTimeSource() TimeSource {
	return &systemTimeSource{now: Time(time.Now().UnixNano())}
}

func (s *systemTimeSource) Now() Time {
	return s.now
}

func (s *systemTimeSource) Update() {
	s.now = Time(time.Now().UnixNano())
}

// ManualTimeSource is a TimeSource tests drive directly, mirroring the
// teacher's mockable.Clock Set/Advance pair.
type ManualTimeSource struct {
	now Time
}

// NewManualTimeSource returns a ManualTimeSource starting at t.
func NewManualTimeSource(t time.Time) *ManualTimeSource {
	return &ManualTimeSource{now: Time(t.UnixNano())}
}

// Now returns the manually-set time.
func (m *ManualTimeSource) Now() Time {
	return m.now
}

// Update is a no-op: manual sources only move when told to.
func (m *ManualTimeSource) Update() {}

// Set pins the clock to an exact Time value.
func (m *ManualTimeSource) Set(t Time) {
	m.now = t
}

// Advance moves the manual clock forward by d.
func (m *ManualTimeSource) Advance(d time.Duration) {
	m.now = m.now.Add(d)
}
