// Package swing computes web-swing anchors, arc forces and swing-plane
// orientation, and drives a character's swing state from discrete actions.
//
// The formulas are placeholders: none of them look at level geometry.
package swing

import (
	"math"

	"github.com/zeusync/webswing/internal/core/systems/physics"
)

// ComputeAnchorPoint returns the default-tuned anchor for a swing started at
// position while the camera looks along cameraForward.
func ComputeAnchorPoint(position, cameraForward physics.Vec3, verticalVelocity float64) physics.Vec3 {
	return DefaultAnchorParams().AnchorPoint(position, cameraForward, verticalVelocity)
}

// AnchorPoint throws the web Distance units along the camera and Height units
// up: position + SafeNormal(cameraForward)*Distance + (0, 0, Height).
//
// verticalVelocity does not move the anchor. The tuned behaviour keeps a
// fixed height even though VerticalReach is derived from it; see
// VerticalReach.
func (a AnchorParams) AnchorPoint(position, cameraForward physics.Vec3, verticalVelocity float64) physics.Vec3 {
	return position.
		Add(cameraForward.SafeNormal().Scale(a.Distance)).
		Add(physics.Vec3{Z: a.Height})
}

// VerticalReach is clamp(|vz| * ReachScale, ReachMin, ReachMax). It is
// reported alongside each anchor but is not part of AnchorPoint.
func (a AnchorParams) VerticalReach(verticalVelocity float64) float64 {
	return physics.Clamp(math.Abs(verticalVelocity)*a.ReachScale, a.ReachMin, a.ReachMax)
}

// ComputeSwingForce returns the arc force pulling a swinging body around its
// anchor:
//
//	d = (anchor - position) · ClampedToSize(velocity, min, max)
//	F = d * SafeNormal(anchor - position) * -2 / ForceReductionFactor
//
// An anchor at the body's position yields zero, and so does a
// ForceReductionFactor that is not positive, which Validate rejects.
func ComputeSwingForce(anchorPoint, position, velocity physics.Vec3, params Params) physics.Vec3 {
	if !(params.ForceReductionFactor > 0) {
		return physics.Zero
	}
	toAnchor := anchorPoint.Sub(position)
	clamped := velocity.ClampedToSize(params.VelocityClampMin, params.VelocityClampMax)
	d := toAnchor.Dot(clamped)
	return toAnchor.SafeNormal().Scale(d).Scale(-2).Div(params.ForceReductionFactor)
}

// ComputeSwingOrientation returns the swing-plane frame: Z points at the
// anchor, Y is the side vector -(SafeNormal(velocity) × Z), X completes a
// right-handed frame. Degenerate inputs use the fallbacks of
// physics.MakeFromZY.
func ComputeSwingOrientation(anchorPoint, position, velocity physics.Vec3) physics.Orientation {
	toAnchor := swingPlaneDirection(anchorPoint, position)
	side := velocity.SafeNormal().Cross(toAnchor).Neg()
	return physics.MakeFromZY(toAnchor, side)
}

// swingPlaneDirection is the Z axis of the swing frame. It subtracts the unit
// vector of the absolute position rather than the position itself, which is
// how the swing animation was tuned; correcting it changes every orientation
// away from the world origin.
func swingPlaneDirection(anchorPoint, position physics.Vec3) physics.Vec3 {
	return anchorPoint.Sub(position.SafeNormal()).SafeNormal()
}
