// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// rollGain amplifies the measured roll before the reference is removed.
const rollGain = 2.0

// RollMode selects what SetReference does with the roll at trigger time.
type RollMode int

const (
	// RollModeSource computes the reference zero-roll but keeps the
	// reference roll at its previous value (0 unless captured before).
	RollModeSource RollMode = iota
	// RollModeCapture stores the current scaled roll as the reference, so
	// the pose held at trigger time reads as zero relative roll.
	RollModeCapture
)

func (m RollMode) String() string {
	switch m {
	case RollModeSource:
		return "source"
	case RollModeCapture:
		return "capture"
	default:
		return fmt.Sprintf("rollmode(%d)", int(m))
	}
}

// ParseRollMode accepts "source" or "capture".
func ParseRollMode(s string) (RollMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "source":
		return RollModeSource, nil
	case "capture":
		return RollModeCapture, nil
	default:
		return RollModeSource, fmt.Errorf("unknown roll mode %q (want source or capture)", s)
	}
}

// Calibration is the reference pose captured by SetReference.
type Calibration struct {
	AntiYaw       Rotation
	ReferenceRoll float64
}

// Compensator turns armband samples into orientations relative to a
// wearer-chosen reference pose. One instance serves one physical sensor and
// must be driven from a single goroutine.
type Compensator struct {
	mode RollMode
	cal  Calibration

	lastZeroRoll r3.Vec
	haveZeroRoll bool
	last         Orientation
}

func NewCompensator(mode RollMode) *Compensator {
	return &Compensator{
		mode: mode,
		cal:  Calibration{AntiYaw: Identity()},
		last: Orientation{Rotation: Identity()},
	}
}

// Calibration returns a copy of the current reference.
func (c *Compensator) Calibration() Calibration {
	return c.cal
}

// SetReference makes the current arm direction the new forward. The
// calibration is replaced only if every part of it could be computed.
func (c *Compensator) SetReference(s Sample) error {
	forward, ok := unit(s.Forward)
	if !ok {
		return fmt.Errorf("set reference: invalid forward %v: %w", s.Forward, ErrDegenerateOrientation)
	}
	horizontal := r3.Vec{X: forward.X, Z: forward.Z}
	if r3.Norm(horizontal) < degenerateEpsilon {
		return fmt.Errorf("set reference: forward %v has no horizontal component: %w", s.Forward, ErrDegenerateOrientation)
	}

	next := Calibration{
		AntiYaw:       FromTo(horizontal, WorldForward),
		ReferenceRoll: c.cal.ReferenceRoll,
	}
	referenceZeroRoll, _ := c.zeroRoll(forward)
	if c.mode == RollModeCapture {
		up, ok := unit(s.Up)
		if !ok {
			return fmt.Errorf("set reference: invalid up %v: %w", s.Up, ErrDegenerateOrientation)
		}
		next.ReferenceRoll = NormalizeAngle(rollGain * RollFromZero(referenceZeroRoll, forward, up))
	}
	c.cal = next
	return nil
}

// Update computes the compensated orientation for s:
// antiYaw · antiRoll · lookRotation(forward, up).
//
// A forward parallel to world up still yields a finite orientation, built on
// a fallback zero-roll direction, together with ErrDegenerateOrientation.
// An unusable forward or up vector returns the previous orientation.
func (c *Compensator) Update(s Sample) (Orientation, error) {
	forward, ok := unit(s.Forward)
	if !ok {
		return c.last, fmt.Errorf("update: invalid forward %v: %w", s.Forward, ErrDegenerateOrientation)
	}
	up, ok := unit(s.Up)
	if !ok {
		return c.last, fmt.Errorf("update: invalid up %v: %w", s.Up, ErrDegenerateOrientation)
	}

	zeroRoll, degenerate := c.zeroRoll(forward)
	roll := RollFromZero(zeroRoll, forward, up)
	relativeRoll := NormalizeAngle(rollGain*roll - c.cal.ReferenceRoll)
	antiRoll := AngleAxis(relativeRoll, forward)

	hint := WorldUp
	if degenerate {
		hint = zeroRoll
	}
	look, _ := LookRotation(forward, hint)

	rot := c.cal.AntiYaw.Mul(antiRoll).Mul(look)
	out := Orientation{
		Rotation:     rot,
		Pose:         rot.Euler(),
		Roll:         roll,
		RelativeRoll: relativeRoll,
		ZeroRoll:     zeroRoll,
		Degenerate:   degenerate,
	}
	c.last = out
	if degenerate {
		return out, fmt.Errorf("update: forward %v parallel to world up: %w", s.Forward, ErrDegenerateOrientation)
	}
	return out, nil
}

// zeroRoll returns the zero-roll direction for a unit forward. When it is
// undefined it falls back to the last valid direction projected onto the
// plane perpendicular to forward, then to (0,0,-sign(forward.Y)), and
// reports degenerate.
func (c *Compensator) zeroRoll(forward r3.Vec) (r3.Vec, bool) {
	if zr, ok := ZeroRollVector(forward); ok {
		c.lastZeroRoll = zr
		c.haveZeroRoll = true
		return zr, false
	}
	if c.haveZeroRoll {
		if zr, ok := unit(perpendicularPart(c.lastZeroRoll, forward)); ok {
			return zr, true
		}
	}
	return r3.Vec{Z: -math.Copysign(1, forward.Y)}, true
}

// ZeroRollVector returns the direction perpendicular to forward that is
// closest to world up. ok is false when forward is parallel to world up.
func ZeroRollVector(forward r3.Vec) (r3.Vec, bool) {
	m := r3.Cross(forward, WorldUp)
	return unit(r3.Cross(m, forward))
}

// RollFromZero returns the roll of up about forward measured from zeroRoll,
// in degrees within [-180, 180]. The sign is positive when
// forward·(up×zeroRoll) is negative.
func RollFromZero(zeroRoll, forward, up r3.Vec) float64 {
	cosine := clamp(r3.Dot(up, zeroRoll), -1, 1)
	sign := -1.0
	if r3.Dot(forward, r3.Cross(up, zeroRoll)) < 0 {
		sign = 1.0
	}
	return sign * math.Acos(cosine) * radToDeg
}

// NormalizeAngle wraps angle into [-180, 180] with a single step of 360.
// Inputs further than 360 degrees out of range stay out of range.
func NormalizeAngle(angle float64) float64 {
	if angle > 180 {
		return angle - 360
	}
	if angle < -180 {
		return angle + 360
	}
	return angle
}
