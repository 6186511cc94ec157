package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// WristSample derives an armband sample from the glove's bare roll scalar,
// for gloves that send no direction vectors. The wrist quaternion
// (x,y,z,w) = (0, 0, 1, cos(pi + roll*pi)) is normalized and applied to the
// world forward and up axes.
func WristSample(rawRoll float64) Sample {
	q := quat.Number{Real: math.Cos(math.Pi + rawRoll*math.Pi), Kmag: 1}
	r := Rotation(quat.Scale(1/quat.Abs(q), q))
	return Sample{
		Forward: r.Rotate(WorldForward),
		Up:      r.Rotate(WorldUp),
		RawRoll: rawRoll,
	}
}
