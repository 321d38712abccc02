package physics

import "math"

// Orientation is a right-handed orthonormal frame. It is produced by the
// Make* constructors and never mutated afterwards.
type Orientation struct {
	X Vec3 `json:"x"`
	Y Vec3 `json:"y"`
	Z Vec3 `json:"z"`
}

// Identity is the world frame.
var Identity = Orientation{X: Forward, Y: Right, Z: Up}

// MakeFromZY builds a frame whose Z axis points along z and whose Y axis is
// as close to yHint as orthogonality allows; X = Y × Z.
//
// Degenerate inputs never produce NaN:
//   - a zero z falls back to world up;
//   - a zero yHint, or one parallel to z, falls back to world up, or to
//     world forward when z is itself (anti)parallel to world up.
func MakeFromZY(z, yHint Vec3) Orientation {
	newZ := z.SafeNormal()
	if newZ.IsZero() {
		newZ = Up
	}

	norm := yHint.SafeNormal()
	if norm.IsZero() || IsNearlyEqual(math.Abs(newZ.Dot(norm)), 1, KindaSmallNumber) {
		if math.Abs(newZ.Z) < 1-KindaSmallNumber {
			norm = Up
		} else {
			norm = Forward
		}
	}

	newX := norm.Cross(newZ).SafeNormal()
	newY := newZ.Cross(newX)

	return Orientation{X: newX, Y: newY, Z: newZ}
}

// Rotator converts the frame to pitch/yaw/roll degrees.
func (o Orientation) Rotator() Rotator {
	return RotatorFromAxes(o.X, o.Y, o.Z)
}

// OrientationFromRotator expands r into its axes.
func OrientationFromRotator(r Rotator) Orientation {
	x, y, z := r.Axes()
	return Orientation{X: x, Y: y, Z: z}
}
