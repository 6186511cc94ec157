// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"errors"
	"fmt"
)

// ErrNoClip is returned when a gesture has no animation clip assigned.
var ErrNoClip = errors.New("no animation clip")

// ClipTable maps a gesture to the identifier of its pre-recorded clip.
type ClipTable map[Gesture]string

// DefaultClips names one recording per gesture.
func DefaultClips() ClipTable {
	clips := ClipTable{}
	for _, g := range All() {
		clips[g] = g.String()
	}
	return clips
}

// AnimationCommand tells the player which clip to load and how to play it.
type AnimationCommand struct {
	Gesture           Gesture `json:"gesture"`
	Clip              string  `json:"clip"`
	Loop              bool    `json:"loop"`
	Intensity         float64 `json:"intensity"`
	PreviousIntensity float64 `json:"previous_intensity"`
}

// Select builds the command for a gesture change. The caller reports the
// error to the user and keeps running.
func (t ClipTable) Select(r Reading, c Change, previousIntensity float64) (AnimationCommand, error) {
	clip, ok := t[r.Gesture]
	if !ok || clip == "" {
		return AnimationCommand{}, fmt.Errorf("error loading animation %s: %w", r.Gesture, ErrNoClip)
	}
	return AnimationCommand{
		Gesture:           r.Gesture,
		Clip:              clip,
		Loop:              c.LoopIdle,
		Intensity:         r.Intensity,
		PreviousIntensity: previousIntensity,
	}, nil
}
