// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package glove

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/bend_glove/internal/gesture"
	"github.com/relabs-tech/bend_glove/internal/orientation"
)

// mockPhase is how long the mock holds each hand pose.
const mockPhase = 2 * time.Second

type mockSource struct {
	start       time.Time
	now         func() time.Time
	withVectors bool
}

// NewMockSource creates a mock glove that cycles through an open hand,
// each single finger and a fist, while the arm sways in yaw, pitch and roll.
// Without vectors only the roll scalar is sent.
func NewMockSource(withVectors bool) Source {
	return newMockSource(time.Now, withVectors)
}

func newMockSource(now func() time.Time, withVectors bool) *mockSource {
	return &mockSource{start: now(), now: now, withVectors: withVectors}
}

func (m *mockSource) Next() (Sample, error) {
	t := m.now()
	elapsed := t.Sub(m.start).Seconds()

	var s Sample
	s.Time = t

	bend := 0.5 + 0.4*math.Sin(elapsed*math.Pi/mockPhase.Seconds())
	phase := int(elapsed/mockPhase.Seconds()) % (gesture.NumFingers + 2)
	switch {
	case phase == 0:
		// open hand
	case phase <= gesture.NumFingers:
		s.Fingers[phase-1] = bend
	default:
		for i := range s.Fingers {
			s.Fingers[i] = bend
		}
	}

	s.Roll = 0.5 + 0.5*math.Sin(elapsed*0.5)

	if m.withVectors {
		arm := orientation.AngleAxis(30*math.Sin(elapsed*0.3), orientation.WorldUp).
			Mul(orientation.AngleAxis(10*math.Sin(elapsed*0.2), r3.Vec{X: 1})).
			Mul(orientation.AngleAxis(40*math.Sin(elapsed*0.5), orientation.WorldForward))
		f := arm.Rotate(orientation.WorldForward)
		u := arm.Rotate(orientation.WorldUp)
		s.Forward = &Vec3{X: f.X, Y: f.Y, Z: f.Z}
		s.Up = &Vec3{X: u.X, Y: u.Y, Z: u.Z}
	}
	return s, nil
}
