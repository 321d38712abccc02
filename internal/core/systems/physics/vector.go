package physics

import (
	"fmt"
	"math"
)

// Tolerances follow the engine conventions the gameplay numbers were tuned with.
const (
	SmallNumber      = 1e-8
	KindaSmallNumber = 1e-4
)

// Vec3 is a world-space vector in centimetres, Z up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

var (
	Zero    = Vec3{}
	Up      = Vec3{0, 0, 1}
	Forward = Vec3{1, 0, 0}
	Right   = Vec3{0, 1, 0}
)

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Div(s float64) Vec3 { return Vec3{a.X / s, a.Y / s, a.Z / s} }

func (a Vec3) Neg() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns a × b (right-handed).
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) SizeSquared() float64 { return a.X*a.X + a.Y*a.Y + a.Z*a.Z }

func (a Vec3) Size() float64 { return math.Sqrt(a.SizeSquared()) }

func (a Vec3) Size2D() float64 { return math.Hypot(a.X, a.Y) }

func (a Vec3) Horizontal() Vec3 { return Vec3{a.X, a.Y, 0} }

func (a Vec3) IsZero() bool { return a.X == 0 && a.Y == 0 && a.Z == 0 }

// IsNearlyZero reports whether every component is within tolerance of zero.
func (a Vec3) IsNearlyZero(tolerance float64) bool {
	return math.Abs(a.X) <= tolerance && math.Abs(a.Y) <= tolerance && math.Abs(a.Z) <= tolerance
}

func (a Vec3) IsFinite() bool {
	return !math.IsNaN(a.X) && !math.IsNaN(a.Y) && !math.IsNaN(a.Z) &&
		!math.IsInf(a.X, 0) && !math.IsInf(a.Y, 0) && !math.IsInf(a.Z, 0)
}

// SafeNormal returns the unit vector along a, or Zero when a is too short to
// have a direction.
func (a Vec3) SafeNormal() Vec3 {
	sq := a.SizeSquared()
	if sq == 1 {
		return a
	}
	if sq < SmallNumber {
		return Zero
	}
	return a.Scale(1 / math.Sqrt(sq))
}

// ClampedToSize keeps the direction of a and clamps its length into
// [minSize, maxSize]. A vector with no direction stays zero.
func (a Vec3) ClampedToSize(minSize, maxSize float64) Vec3 {
	size := a.Size()
	if size <= SmallNumber {
		return Zero
	}
	dir := a.Div(size)
	return dir.Scale(Clamp(size, minSize, maxSize))
}

// ClampedToMaxSize shortens a to maxSize if it is longer.
func (a Vec3) ClampedToMaxSize(maxSize float64) Vec3 {
	if maxSize < KindaSmallNumber {
		return Zero
	}
	sq := a.SizeSquared()
	if sq > maxSize*maxSize {
		return a.Scale(maxSize / math.Sqrt(sq))
	}
	return a
}

func (a Vec3) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", a.X, a.Y, a.Z)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func IsNearlyEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
