// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gesture

// Rule is one entry of the classification table. When Match holds, the rule
// replaces the current reading with Gesture and Intensity(fingers).
type Rule struct {
	Name      string
	Gesture   Gesture
	Match     func(FingerVector) bool
	Intensity func(FingerVector) float64
}

// Rules is evaluated in order and every matching rule overrides the
// previous result, so the last match wins.
type Rules []Rule

// DefaultRules is the glove table: single fingers in thumb-to-pinky order,
// then Fist, which must stay last to override a single-finger match.
var DefaultRules = Rules{
	fingerRule("thumb", FingerThumb, Thumb),
	fingerRule("index", FingerIndex, Index),
	fingerRule("middle", FingerMiddle, Middle),
	fingerRule("ring", FingerRing, Ring),
	fingerRule("pinky", FingerPinky, Pinky),
	{
		Name:      "fist",
		Gesture:   Fist,
		Match:     allBent,
		Intensity: fingerValue(FingerThumb),
	},
}

func fingerRule(name string, finger int, g Gesture) Rule {
	return Rule{
		Name:    name,
		Gesture: g,
		Match: func(f FingerVector) bool {
			return f[finger] > 0
		},
		Intensity: fingerValue(finger),
	}
}

func fingerValue(finger int) func(FingerVector) float64 {
	return func(f FingerVector) float64 { return f[finger] }
}

// allBent reports whether every finger reads above zero. NaN never does.
func allBent(f FingerVector) bool {
	for _, v := range f {
		if !(v > 0) {
			return false
		}
	}
	return true
}

// Classify runs the table against fingers. If no rule matches, prev is
// returned unchanged: a held reading survives fingers returning to zero.
func (rs Rules) Classify(fingers FingerVector, prev Reading) Reading {
	out := prev
	for _, r := range rs {
		if r.Match(fingers) {
			out = Reading{Gesture: r.Gesture, Intensity: r.Intensity(fingers)}
		}
	}
	return out
}

// Classify evaluates DefaultRules.
func Classify(fingers FingerVector, prev Reading) Reading {
	return DefaultRules.Classify(fingers, prev)
}
