// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

import (
	"fmt"
	"strings"
)

// Gesture is a discrete hand pose recognized from the glove flex sensors.
type Gesture int

const (
	Unknown Gesture = iota
	Rest
	Thumb
	Index
	Middle
	Ring
	Pinky
	Fist
)

var gestureNames = [...]string{
	Unknown: "unknown",
	Rest:    "rest",
	Thumb:   "thumb",
	Index:   "index",
	Middle:  "middle",
	Ring:    "ring",
	Pinky:   "pinky",
	Fist:    "fist",
}

// All lists every gesture in declaration order.
func All() []Gesture {
	return []Gesture{Unknown, Rest, Thumb, Index, Middle, Ring, Pinky, Fist}
}

func (g Gesture) String() string {
	if g < 0 || int(g) >= len(gestureNames) {
		return fmt.Sprintf("gesture(%d)", int(g))
	}
	return gestureNames[g]
}

// Parse converts a gesture name (case-insensitive) to a Gesture.
func Parse(s string) (Gesture, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range gestureNames {
		if n == name {
			return Gesture(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown gesture %q", s)
}

func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Gesture) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Finger indices into a FingerVector.
const (
	FingerThumb = iota
	FingerIndex
	FingerMiddle
	FingerRing
	FingerPinky
	NumFingers
)

// FingerVector holds one flex value per finger, nominally in [0,1].
type FingerVector [NumFingers]float64

// Reading is the classifier output: the held gesture and its intensity.
type Reading struct {
	Gesture   Gesture `json:"gesture"`
	Intensity float64 `json:"intensity"`
}
