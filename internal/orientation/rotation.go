// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateEpsilon is the length below which a direction is treated as
// undefined.
const degenerateEpsilon = 1e-6

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi
)

var (
	// WorldUp is +Y, the antigravity direction.
	WorldUp = r3.Vec{Y: 1}
	// WorldForward is +Z, where the reference pose points after calibration.
	WorldForward = r3.Vec{Z: 1}
)

// Rotation is a unit quaternion. Real is w; Imag, Jmag, Kmag are x, y, z.
type Rotation quat.Number

// Identity is the rotation that leaves every vector unchanged.
func Identity() Rotation {
	return Rotation{Real: 1}
}

// AngleAxis returns a rotation of deg degrees about axis (right-hand rule).
func AngleAxis(deg float64, axis r3.Vec) Rotation {
	a, ok := unit(axis)
	if !ok {
		return Identity()
	}
	sin, cos := math.Sincos(0.5 * deg * degToRad)
	return Rotation{Real: cos, Imag: a.X * sin, Jmag: a.Y * sin, Kmag: a.Z * sin}
}

// FromTo returns the shortest rotation taking direction from onto to.
// Opposite directions turn half way around the part of world up that is
// perpendicular to from, so ground-plane vectors yaw about +Y.
func FromTo(from, to r3.Vec) Rotation {
	f, okF := unit(from)
	t, okT := unit(to)
	if !okF || !okT {
		return Identity()
	}
	d := r3.Dot(f, t)
	if d >= 1-degenerateEpsilon {
		return Identity()
	}
	if d <= -1+degenerateEpsilon {
		axis, ok := unit(perpendicularPart(WorldUp, f))
		if !ok {
			axis, _ = unit(perpendicularPart(r3.Vec{X: 1}, f))
		}
		return Rotation{Imag: axis.X, Jmag: axis.Y, Kmag: axis.Z}
	}
	c := r3.Cross(f, t)
	return Rotation{Real: 1 + d, Imag: c.X, Jmag: c.Y, Kmag: c.Z}.normalized()
}

// LookRotation returns the rotation whose +Z axis points along forward and
// whose +Y axis lies in the plane of forward and up. ok is false when
// forward and up are parallel.
func LookRotation(forward, up r3.Vec) (Rotation, bool) {
	z, ok := unit(forward)
	if !ok {
		return Identity(), false
	}
	x, ok := unit(r3.Cross(up, z))
	if !ok {
		return Identity(), false
	}
	y := r3.Cross(z, x)
	return fromBasis(x, y, z), true
}

// fromBasis converts the rotation matrix with columns x, y, z.
func fromBasis(x, y, z r3.Vec) Rotation {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	var q Rotation
	switch trace := m00 + m11 + m22; {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = Rotation{Real: s / 4, Imag: (m21 - m12) / s, Jmag: (m02 - m20) / s, Kmag: (m10 - m01) / s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Rotation{Real: (m21 - m12) / s, Imag: s / 4, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Rotation{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: s / 4, Kmag: (m12 + m21) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Rotation{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: s / 4}
	}
	return q.normalized()
}

// Mul composes r and o; the result applies o first, then r.
func (r Rotation) Mul(o Rotation) Rotation {
	return Rotation(quat.Mul(quat.Number(r), quat.Number(o)))
}

// Rotate applies r to v.
func (r Rotation) Rotate(v r3.Vec) r3.Vec {
	q := quat.Number(r)
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	out := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: out.Imag, Y: out.Jmag, Z: out.Kmag}
}

// Angle returns the angle in degrees between r and o.
func (r Rotation) Angle(o Rotation) float64 {
	d := math.Abs(r.Real*o.Real + r.Imag*o.Imag + r.Jmag*o.Jmag + r.Kmag*o.Kmag)
	return 2 * math.Acos(math.Min(d, 1)) * radToDeg
}

// IsFinite reports whether no component is NaN or infinite.
func (r Rotation) IsFinite() bool {
	q := quat.Number(r)
	return !quat.IsNaN(q) && !quat.IsInf(q)
}

// Euler decomposes r into yaw about +Y, pitch about +X and roll about +Z,
// in degrees, applied roll first.
func (r Rotation) Euler() Pose {
	f := r.Rotate(WorldForward)
	right := r.Rotate(r3.Vec{X: 1})
	up := r.Rotate(WorldUp)
	return Pose{
		Roll:  math.Atan2(right.Y, up.Y) * radToDeg,
		Pitch: math.Asin(clamp(-f.Y, -1, 1)) * radToDeg,
		Yaw:   math.Atan2(f.X, f.Z) * radToDeg,
	}
}

func (r Rotation) normalized() Rotation {
	q := quat.Number(r)
	n := quat.Abs(q)
	if n == 0 {
		return Identity()
	}
	return Rotation(quat.Scale(1/n, q))
}

type wireRotation struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (r Rotation) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRotation{W: r.Real, X: r.Imag, Y: r.Jmag, Z: r.Kmag})
}

func (r *Rotation) UnmarshalJSON(b []byte) error {
	var w wireRotation
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Rotation{Real: w.W, Imag: w.X, Jmag: w.Y, Kmag: w.Z}
	return nil
}

// unit normalizes v, reporting false for zero-length or non-finite input.
func unit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n < degenerateEpsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}

// perpendicularPart removes from v its component along the unit vector n.
func perpendicularPart(v, n r3.Vec) r3.Vec {
	return r3.Sub(v, r3.Scale(r3.Dot(v, n), n))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
