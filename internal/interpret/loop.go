// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package interpret drives the gesture classifier, the gesture-change
// trigger and the orientation compensator once per sampling tick.
package interpret

import (
	"errors"
	"time"

	"github.com/relabs-tech/bend_glove/internal/gesture"
	"github.com/relabs-tech/bend_glove/internal/glove"
	"github.com/relabs-tech/bend_glove/internal/orientation"
)

// Options configures a Loop.
type Options struct {
	RollMode orientation.RollMode
	Clips    gesture.ClipTable
	// ReferenceGesture resets the reference pose when the hand switches to
	// it. Unknown disables the gesture trigger.
	ReferenceGesture gesture.Gesture
	Rules            gesture.Rules
}

// Frame is everything one tick produced.
type Frame struct {
	Tick        uint64                    `json:"tick"`
	Time        time.Time                 `json:"time"`
	Reading     gesture.Reading           `json:"reading"`
	Previous    gesture.Gesture           `json:"previous"`
	Change      gesture.Change            `json:"change"`
	Animation   *gesture.AnimationCommand `json:"animation,omitempty"`
	ClipError   string                    `json:"clip_error,omitempty"`
	Orientation orientation.Orientation   `json:"orientation"`
	Reference   bool                      `json:"reference,omitempty"`
	Warning     string                    `json:"warning,omitempty"`

	// Err is the first reference or orientation error of the tick.
	Err error `json:"-"`
}

// Loop holds the per-sensor state threaded through ticks. It is not safe
// for concurrent use.
type Loop struct {
	rules            gesture.Rules
	clips            gesture.ClipTable
	referenceGesture gesture.Gesture

	compensator   *orientation.Compensator
	tracker       *gesture.Tracker
	reading       gesture.Reading
	prevIntensity float64
	tick          uint64
}

func NewLoop(opts Options) *Loop {
	rules := opts.Rules
	if rules == nil {
		rules = gesture.DefaultRules
	}
	clips := opts.Clips
	if clips == nil {
		clips = gesture.DefaultClips()
	}
	return &Loop{
		rules:            rules,
		clips:            clips,
		referenceGesture: opts.ReferenceGesture,
		compensator:      orientation.NewCompensator(opts.RollMode),
		tracker:          gesture.NewTracker(),
	}
}

// Tick classifies the fingers, detects gesture changes, updates the
// orientation and picks the animation clip for a new gesture.
func (l *Loop) Tick(s glove.Sample) Frame {
	l.tick++
	f := Frame{Tick: l.tick, Time: s.Time}

	l.reading = l.rules.Classify(s.FingerVector(), l.reading)
	f.Reading = l.reading
	f.Previous = l.tracker.Last()
	f.Change = l.tracker.Observe(l.reading.Gesture)

	armband := s.Orientation()
	if f.Change.Changed && l.referenceGesture != gesture.Unknown && l.reading.Gesture == l.referenceGesture {
		if err := l.compensator.SetReference(armband); err != nil {
			f.Err = err
			f.Warning = err.Error()
		} else {
			f.Reference = true
		}
	}

	o, err := l.compensator.Update(armband)
	f.Orientation = o
	if err != nil && f.Err == nil {
		f.Err = err
		f.Warning = err.Error()
	}

	if f.Change.Changed {
		cmd, err := l.clips.Select(l.reading, f.Change, l.prevIntensity)
		if err != nil {
			f.ClipError = err.Error()
		} else {
			f.Animation = &cmd
		}
	}
	l.prevIntensity = l.reading.Intensity
	return f
}

// SetReference applies an explicit reference trigger with the given sample.
func (l *Loop) SetReference(s glove.Sample) error {
	return l.compensator.SetReference(s.Orientation())
}

// Calibration exposes the current reference pose.
func (l *Loop) Calibration() orientation.Calibration {
	return l.compensator.Calibration()
}

// Reading returns the gesture currently held.
func (l *Loop) Reading() gesture.Reading {
	return l.reading
}

// IsDegenerate reports whether err came from an undefined arm direction.
func IsDegenerate(err error) bool {
	return errors.Is(err, orientation.ErrDegenerateOrientation)
}
