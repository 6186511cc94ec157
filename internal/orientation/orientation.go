package orientation

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerateOrientation marks a sample whose forward direction gives no
// usable zero-roll or yaw reference. Callers can keep the orientation that
// accompanies it.
var ErrDegenerateOrientation = errors.New("degenerate orientation")

// Pose is the Euler view of an orientation, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Sample is one armband reading: the sensor's forward and up directions in
// world space and the raw roll scalar they were derived from.
type Sample struct {
	Forward r3.Vec
	Up      r3.Vec
	RawRoll float64
}

// Orientation is the compensated output of one update.
type Orientation struct {
	Rotation Rotation `json:"rotation"`
	Pose     Pose     `json:"pose"`
	// Roll is the measured roll from zero-roll, RelativeRoll the angle
	// actually applied after gain and reference.
	Roll         float64 `json:"roll"`
	RelativeRoll float64 `json:"relative_roll"`
	ZeroRoll     r3.Vec  `json:"-"`
	Degenerate   bool    `json:"degenerate"`
}
