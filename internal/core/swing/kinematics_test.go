package swing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/webswing/internal/core/systems/physics"
)

var approx = cmpopts.EquateApprox(1e-12, 1e-9)

func TestComputeAnchorPoint(t *testing.T) {
	got := ComputeAnchorPoint(physics.Zero, physics.Vec3{X: 1}, 0)
	assert.Equal(t, physics.Vec3{X: 1500, Z: 1200}, got)

	// camera forward is normalised before use
	got = ComputeAnchorPoint(physics.Vec3{X: 10, Y: 20, Z: 30}, physics.Vec3{Y: 7}, 0)
	if diff := cmp.Diff(physics.Vec3{X: 10, Y: 1520, Z: 1230}, got, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	// no camera direction: only the fixed height is added
	got = ComputeAnchorPoint(physics.Vec3{X: 5}, physics.Zero, 0)
	assert.Equal(t, physics.Vec3{X: 5, Z: 1200}, got)
}

// The vertical reach is derived from vertical speed but does not move the
// anchor; this pins the tuned behaviour until the intent is confirmed.
func TestComputeAnchorPointIgnoresVerticalVelocity(t *testing.T) {
	base := ComputeAnchorPoint(physics.Vec3{X: 1, Y: 2, Z: 3}, physics.Vec3{X: 0.3, Y: 0.4}, 0)
	for _, vz := range []float64{-5000, -900, 1, 800, 2600, 10000} {
		assert.Equal(t, base, ComputeAnchorPoint(physics.Vec3{X: 1, Y: 2, Z: 3}, physics.Vec3{X: 0.3, Y: 0.4}, vz))
	}
}

func TestComputeAnchorPointDeterministic(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		p := physics.Vec3{X: r.Float64() * 1e4, Y: r.Float64() * 1e4, Z: r.Float64() * 1e3}
		f := physics.Vec3{X: r.Float64() - 0.5, Y: r.Float64() - 0.5, Z: r.Float64() - 0.5}
		vz := r.Float64() * 3000
		assert.Equal(t, ComputeAnchorPoint(p, f, vz), ComputeAnchorPoint(p, f, vz))
	}
}

func TestVerticalReach(t *testing.T) {
	a := DefaultAnchorParams()
	assert.Equal(t, 1000.0, a.VerticalReach(0))
	assert.InDelta(t, 1200.0, a.VerticalReach(-1000), 1e-9)
	assert.InDelta(t, 2400.0, a.VerticalReach(2000), 1e-9)
	assert.Equal(t, 3000.0, a.VerticalReach(9000))
}

func TestComputeSwingForceZeroVelocity(t *testing.T) {
	got := ComputeSwingForce(physics.Vec3{X: 1500, Z: 1200}, physics.Zero, physics.Zero, DefaultParams())
	assert.True(t, got.IsNearlyZero(0))
}

func TestComputeSwingForceAnchorAtPosition(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for i := 0; i < 100; i++ {
		p := physics.Vec3{X: r.Float64() * 1e4, Y: r.Float64() * 1e4, Z: r.Float64() * 1e4}
		v := physics.Vec3{X: r.Float64()*4000 - 2000, Y: r.Float64()*4000 - 2000, Z: r.Float64()*4000 - 2000}
		got := ComputeSwingForce(p, p, v, DefaultParams())
		assert.True(t, got.IsNearlyZero(0), "got %v", got)
	}
}

func TestComputeSwingForceNonPositiveFactor(t *testing.T) {
	anchor := physics.Vec3{X: 1500, Z: 1200}
	for _, factor := range []float64{0, -4, math.NaN()} {
		params := DefaultParams()
		params.ForceReductionFactor = factor
		for _, pos := range []physics.Vec3{physics.Zero, anchor} {
			got := ComputeSwingForce(anchor, pos, physics.Vec3{X: 800}, params)
			assert.Equal(t, physics.Zero, got, "factor %v at %v", factor, pos)
		}
	}
}

func TestComputeSwingForceAtMaxVelocity(t *testing.T) {
	anchor := physics.Vec3{X: 1500, Z: 1200}
	got := ComputeSwingForce(anchor, physics.Zero, physics.Vec3{X: 2000}, DefaultParams())

	const d = 3_000_000.0
	length := math.Sqrt(1500*1500 + 1200*1200)
	want := physics.Vec3{X: 1500 / length, Z: 1200 / length}.Scale(d * -2 / 4)
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	assert.InDelta(t, 1_500_000, got.Size(), 1e-6)
	// points away from the anchor
	assert.Less(t, got.Dot(anchor), 0.0)
}

func TestComputeSwingForceClampsVelocity(t *testing.T) {
	anchor := physics.Vec3{X: 1000}
	params := DefaultParams()

	slow := ComputeSwingForce(anchor, physics.Zero, physics.Vec3{X: 10}, params)
	atMin := ComputeSwingForce(anchor, physics.Zero, physics.Vec3{X: 400}, params)
	if diff := cmp.Diff(atMin, slow, approx); diff != "" {
		t.Errorf("slow velocity must be scaled up to the minimum (-want +got):\n%s", diff)
	}

	fast := ComputeSwingForce(anchor, physics.Zero, physics.Vec3{X: 9000}, params)
	atMax := ComputeSwingForce(anchor, physics.Zero, physics.Vec3{X: 2000}, params)
	if diff := cmp.Diff(atMax, fast, approx); diff != "" {
		t.Errorf("fast velocity must be scaled down to the maximum (-want +got):\n%s", diff)
	}

	// 1000 * 400 * -2 / 4 along +X
	assert.InDelta(t, -200_000, atMin.X, 1e-6)
}

func TestComputeSwingForceScalesWithReductionFactor(t *testing.T) {
	anchor := physics.Vec3{X: 300, Y: -700, Z: 1500}
	position := physics.Vec3{X: 20, Y: 30, Z: 40}
	velocity := physics.Vec3{X: 800, Y: 100, Z: -50}

	p := DefaultParams()
	full := ComputeSwingForce(anchor, position, velocity, p)
	p.ForceReductionFactor /= 2
	halved := ComputeSwingForce(anchor, position, velocity, p)

	assert.InDelta(t, 2*full.Size(), halved.Size(), 1e-6)
	if diff := cmp.Diff(full.Scale(2), halved, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestComputeSwingOrientation(t *testing.T) {
	anchor := physics.Vec3{X: 1500, Z: 1200}
	o := ComputeSwingOrientation(anchor, physics.Zero, physics.Vec3{X: 2000})

	z := anchor.SafeNormal()
	if diff := cmp.Diff(z, o.Z, approx); diff != "" {
		t.Errorf("Z (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(physics.Vec3{Y: 1}, o.Y, approx); diff != "" {
		t.Errorf("Y (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(physics.Vec3{X: z.Z, Z: -z.X}, o.X, approx); diff != "" {
		t.Errorf("X (-want +got):\n%s", diff)
	}

	r := o.Rotator()
	assert.InDelta(t, -math.Atan2(1500, 1200)*180/math.Pi, r.Pitch, 1e-9)
	assert.InDelta(t, 0, r.Yaw, 1e-9)
	assert.InDelta(t, 0, r.Roll, 1e-9)
}

// The swing-plane axis subtracts the unit vector of the absolute position,
// not the position itself.
func TestComputeSwingOrientationUsesNormalizedPosition(t *testing.T) {
	position := physics.Vec3{X: 1000}
	anchor := physics.Vec3{X: 1000, Z: 1000}
	o := ComputeSwingOrientation(anchor, position, physics.Vec3{Y: 500})

	want := physics.Vec3{X: 999, Z: 1000}.SafeNormal()
	if diff := cmp.Diff(want, o.Z, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	assert.Greater(t, math.Abs(o.Z.Dot(physics.Forward)), 0.5, "not the displacement direction (0,0,1)")
}

func TestComputeSwingOrientationDegenerate(t *testing.T) {
	cases := map[string]struct{ anchor, position, velocity physics.Vec3 }{
		"zero velocity":           {physics.Vec3{X: 1500, Z: 1200}, physics.Zero, physics.Zero},
		"anchor at unit position": {physics.Vec3{X: 1}, physics.Vec3{X: 5}, physics.Vec3{Y: 100}},
		"velocity toward anchor":  {physics.Vec3{Z: 1000}, physics.Zero, physics.Vec3{Z: 300}},
		"everything zero":         {physics.Zero, physics.Zero, physics.Zero},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			o := ComputeSwingOrientation(tc.anchor, tc.position, tc.velocity)
			for _, axis := range []physics.Vec3{o.X, o.Y, o.Z} {
				require.True(t, axis.IsFinite())
				assert.InDelta(t, 1, axis.Size(), 1e-9)
			}
			r := o.Rotator()
			assert.False(t, math.IsNaN(r.Pitch) || math.IsNaN(r.Yaw) || math.IsNaN(r.Roll))
		})
	}

	o := ComputeSwingOrientation(physics.Zero, physics.Zero, physics.Zero)
	assert.Equal(t, physics.Up, o.Z, "degenerate anchor direction falls back to world up")
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
	require.NoError(t, DefaultAnchorParams().Validate())

	bad := Params{VelocityClampMin: 3000, VelocityClampMax: 2000, ForceReductionFactor: 0}
	err := bad.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Contains(t, err.Error(), "velocity_clamp_min")
	assert.Contains(t, err.Error(), "force_reduction_factor")

	assert.ErrorIs(t, Params{VelocityClampMin: -1, VelocityClampMax: 1, ForceReductionFactor: 1}.Validate(), ErrInvalidParams)
	assert.ErrorIs(t, AnchorParams{ReachMin: 10, ReachMax: 1}.Validate(), ErrInvalidParams)
}
