package physics

import (
	"fmt"
	"math"
)

// Rotator is an orientation in degrees: Pitch about Y, Yaw about Z, Roll about X.
type Rotator struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

func (r Rotator) Add(o Rotator) Rotator {
	return Rotator{r.Pitch + o.Pitch, r.Yaw + o.Yaw, r.Roll + o.Roll}
}

// YawOnly drops pitch and roll, leaving the heading.
func (r Rotator) YawOnly() Rotator { return Rotator{Yaw: r.Yaw} }

// Normalized wraps every angle into (-180, 180].
func (r Rotator) Normalized() Rotator {
	return Rotator{NormalizeAxis(r.Pitch), NormalizeAxis(r.Yaw), NormalizeAxis(r.Roll)}
}

// Axes returns the unit X (forward), Y (right) and Z (up) axes of r.
func (r Rotator) Axes() (x, y, z Vec3) {
	sp, cp := math.Sincos(r.Pitch * math.Pi / 180)
	sy, cy := math.Sincos(r.Yaw * math.Pi / 180)
	sr, cr := math.Sincos(r.Roll * math.Pi / 180)

	x = Vec3{cp * cy, cp * sy, sp}
	y = Vec3{sr*sp*cy - cr*sy, sr*sp*sy + cr*cy, -sr * cp}
	z = Vec3{-(cr*sp*cy + sr*sy), cy*sr - cr*sp*sy, cr * cp}
	return x, y, z
}

// Vector is the forward axis of r.
func (r Rotator) Vector() Vec3 {
	x, _, _ := r.Axes()
	return x
}

func (r Rotator) IsNearlyEqual(o Rotator, tolerance float64) bool {
	d := r.Add(Rotator{-o.Pitch, -o.Yaw, -o.Roll}).Normalized()
	return math.Abs(d.Pitch) <= tolerance && math.Abs(d.Yaw) <= tolerance && math.Abs(d.Roll) <= tolerance
}

func (r Rotator) String() string {
	return fmt.Sprintf("P=%.3f Y=%.3f R=%.3f", r.Pitch, r.Yaw, r.Roll)
}

// NormalizeAxis wraps an angle in degrees into (-180, 180].
func NormalizeAxis(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle > 180 {
		angle -= 360
	}
	return angle
}

// RotatorFromAxes recovers pitch, yaw and roll from an orthonormal frame.
func RotatorFromAxes(x, y, z Vec3) Rotator {
	const toDeg = 180 / math.Pi
	pitch := math.Atan2(x.Z, math.Hypot(x.X, x.Y)) * toDeg
	yaw := math.Atan2(x.Y, x.X) * toDeg

	_, syAxis, _ := Rotator{Pitch: pitch, Yaw: yaw}.Axes()
	roll := math.Atan2(z.Dot(syAxis), y.Dot(syAxis)) * toDeg

	return Rotator{Pitch: pitch, Yaw: yaw, Roll: roll}
}
