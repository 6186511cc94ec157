package glove

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/bend_glove/internal/gesture"
	"github.com/relabs-tech/bend_glove/internal/orientation"
)

// ErrInvalidSample is returned by Decode for payloads that do not carry a
// complete reading.
var ErrInvalidSample = errors.New("invalid glove sample")

// Vec3 is a direction in world space as carried on the wire.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// Sample is one decoded glove reading: five flex values (thumb..pinky),
// the raw roll scalar and, when the armband provides them, its forward and
// up directions.
type Sample struct {
	Fingers [gesture.NumFingers]float64 `json:"fingers"`
	Roll    float64                     `json:"roll"`
	Forward *Vec3                       `json:"forward,omitempty"`
	Up      *Vec3                       `json:"up,omitempty"`
	Time    time.Time                   `json:"time"`
}

// wireSample keeps fingers as a slice so a short array is detected instead
// of zero-filled.
type wireSample struct {
	Fingers []float64 `json:"fingers"`
	Roll    *float64  `json:"roll"`
	Forward *Vec3     `json:"forward"`
	Up      *Vec3     `json:"up"`
	Time    time.Time `json:"time"`
}

// Decode parses a JSON sample payload. A payload is accepted only when it
// is complete; callers keep their previous sample otherwise.
func Decode(payload []byte) (Sample, error) {
	var w wireSample
	if err := json.Unmarshal(payload, &w); err != nil {
		return Sample{}, fmt.Errorf("%w: %v", ErrInvalidSample, err)
	}
	if len(w.Fingers) != gesture.NumFingers {
		return Sample{}, fmt.Errorf("%w: want %d finger values, got %d", ErrInvalidSample, gesture.NumFingers, len(w.Fingers))
	}
	if w.Roll == nil {
		return Sample{}, fmt.Errorf("%w: missing roll", ErrInvalidSample)
	}
	if (w.Forward == nil) != (w.Up == nil) {
		return Sample{}, fmt.Errorf("%w: forward and up must be sent together", ErrInvalidSample)
	}

	s := Sample{Roll: *w.Roll, Forward: w.Forward, Up: w.Up, Time: w.Time}
	copy(s.Fingers[:], w.Fingers)
	return s, nil
}

// FingerVector returns the flex values for the classifier.
func (s Sample) FingerVector() gesture.FingerVector {
	return gesture.FingerVector(s.Fingers)
}

// Orientation returns the armband sample for the compensator. Without
// direction vectors they are derived from the roll scalar.
func (s Sample) Orientation() orientation.Sample {
	if s.Forward == nil || s.Up == nil {
		return orientation.WristSample(s.Roll)
	}
	return orientation.Sample{
		Forward: s.Forward.vec(),
		Up:      s.Up.vec(),
		RawRoll: s.Roll,
	}
}
