// Package locomotion moves a third-person character: controller rotation,
// walking with braking, jumping, air control under gravity and external
// forces such as the swing pull.
package locomotion

import (
	"math"

	"github.com/zeusync/webswing/internal/core/systems/physics"
)

// Body is the kinematic state integrated every tick.
type Body struct {
	Position physics.Vec3    `json:"position"`
	Velocity physics.Vec3    `json:"velocity"`
	Rotation physics.Rotator `json:"rotation"`
	Grounded bool            `json:"grounded"`
}

// Movement accumulates input between ticks and applies it in Integrate.
// It is not safe for concurrent use; the owning character serialises access.
type Movement struct {
	cfg Config

	possessed bool
	control   physics.Rotator

	pendingInput physics.Vec3
	pendingForce physics.Vec3
	jumpHeld     bool
	jumpFired    bool
}

func NewMovement(cfg Config) *Movement {
	return &Movement{cfg: cfg, possessed: true}
}

func (m *Movement) Config() Config { return m.cfg }

// SetPossessed attaches or detaches the controller. An unpossessed character
// ignores movement and look input.
func (m *Movement) SetPossessed(possessed bool) { m.possessed = possessed }

func (m *Movement) Possessed() bool { return m.possessed }

func (m *Movement) ControlRotation() physics.Rotator { return m.control }

// SetControlRotation replaces the controller rotation, clamping pitch.
func (m *Movement) SetControlRotation(r physics.Rotator) {
	m.control = physics.Rotator{
		Pitch: physics.Clamp(physics.NormalizeAxis(r.Pitch), m.cfg.PitchMin, m.cfg.PitchMax),
		Yaw:   physics.NormalizeAxis(r.Yaw),
	}
}

// CameraForward is the direction the controller looks along.
func (m *Movement) CameraForward() physics.Vec3 { return m.control.Vector() }

// CameraLocation places the follow camera at the end of the boom behind body.
func (m *Movement) CameraLocation(body Body) physics.Vec3 {
	return body.Position.Sub(m.CameraForward().Scale(m.cfg.CameraBoomLength))
}

// MoveForward queues input along the controller's yaw heading.
func (m *Movement) MoveForward(value float64) {
	if !m.possessed || value == 0 {
		return
	}
	x, _, _ := m.control.YawOnly().Axes()
	m.AddMovementInput(x, value)
}

// MoveRight queues input perpendicular to the controller's yaw heading.
func (m *Movement) MoveRight(value float64) {
	if !m.possessed || value == 0 {
		return
	}
	_, y, _ := m.control.YawOnly().Axes()
	m.AddMovementInput(y, value)
}

func (m *Movement) AddMovementInput(direction physics.Vec3, scale float64) {
	m.pendingInput = m.pendingInput.Add(direction.Scale(scale))
}

// PendingInput is the movement input queued since the last Integrate.
func (m *Movement) PendingInput() physics.Vec3 { return m.pendingInput }

// TurnAtRate turns by a normalised rate; 1.0 is BaseTurnRate degrees per second.
func (m *Movement) TurnAtRate(rate, dt float64) {
	m.AddYawInput(rate * m.cfg.BaseTurnRate * dt)
}

// LookUpAtRate pitches by a normalised rate; 1.0 is BaseLookUpRate degrees per second.
func (m *Movement) LookUpAtRate(rate, dt float64) {
	m.AddPitchInput(rate * m.cfg.BaseLookUpRate * dt)
}

func (m *Movement) AddYawInput(degrees float64) {
	if !m.possessed || degrees == 0 {
		return
	}
	m.control.Yaw = physics.NormalizeAxis(m.control.Yaw + degrees)
}

func (m *Movement) AddPitchInput(degrees float64) {
	if !m.possessed || degrees == 0 {
		return
	}
	m.control.Pitch = physics.Clamp(m.control.Pitch+degrees, m.cfg.PitchMin, m.cfg.PitchMax)
}

// Jump requests a jump. It fires on the first tick the body is grounded and
// does not repeat until the button is released and pressed again.
func (m *Movement) Jump() {
	if !m.jumpHeld {
		m.jumpFired = false
	}
	m.jumpHeld = true
}

func (m *Movement) StopJumping() {
	m.jumpHeld = false
	m.jumpFired = false
}

func (m *Movement) IsJumpHeld() bool { return m.jumpHeld }

// AddForce queues a force in newtons-equivalent (mass × cm/s²) for the next
// Integrate.
func (m *Movement) AddForce(force physics.Vec3) {
	m.pendingForce = m.pendingForce.Add(force)
}

// Integrate advances body by dt seconds and consumes the queued input and force.
func (m *Movement) Integrate(body *Body, dt float64) {
	if dt <= 0 {
		return
	}

	input := m.pendingInput.Horizontal().ClampedToMaxSize(1)
	force := m.pendingForce
	m.pendingInput = physics.Zero
	m.pendingForce = physics.Zero

	if m.jumpHeld && !m.jumpFired && body.Grounded {
		body.Velocity.Z = m.cfg.JumpZVelocity
		body.Grounded = false
		m.jumpFired = true
	}

	accel := input.Scale(m.cfg.MaxAcceleration)
	if body.Grounded {
		m.walk(body, accel, dt)
	} else {
		m.fall(body, accel, dt)
	}

	body.Velocity = body.Velocity.Add(force.Scale(dt / m.cfg.Mass))
	body.Position = body.Position.Add(body.Velocity.Scale(dt))

	if body.Position.Z <= m.cfg.GroundHeight {
		body.Position.Z = m.cfg.GroundHeight
		if body.Velocity.Z < 0 {
			body.Velocity.Z = 0
		}
		body.Grounded = true
	} else {
		body.Grounded = false
	}

	if m.cfg.OrientRotationToMovement {
		m.orient(body, dt)
	}
}

func (m *Movement) walk(body *Body, accel physics.Vec3, dt float64) {
	horizontal := body.Velocity.Horizontal()
	if accel.IsNearlyZero(physics.SmallNumber) {
		speed := horizontal.Size()
		reduced := math.Max(0, speed-m.cfg.BrakingDeceleration*dt)
		if speed > 0 {
			horizontal = horizontal.Scale(reduced / speed)
		}
	} else {
		horizontal = horizontal.Add(accel.Scale(dt)).ClampedToMaxSize(m.cfg.MaxWalkSpeed)
	}
	body.Velocity = physics.Vec3{X: horizontal.X, Y: horizontal.Y, Z: math.Max(body.Velocity.Z, 0)}
}

func (m *Movement) fall(body *Body, accel physics.Vec3, dt float64) {
	body.Velocity = body.Velocity.
		Add(accel.Scale(m.cfg.AirControl * dt)).
		Add(physics.Vec3{Z: m.cfg.GravityZ * dt})
}

// orient turns the body's yaw toward its horizontal velocity, limited by
// RotationRateYaw.
func (m *Movement) orient(body *Body, dt float64) {
	horizontal := body.Velocity.Horizontal()
	step := m.cfg.RotationRateYaw * dt
	if step <= 0 || horizontal.SizeSquared() < physics.KindaSmallNumber {
		return
	}
	target := math.Atan2(horizontal.Y, horizontal.X) * 180 / math.Pi
	delta := physics.Clamp(physics.NormalizeAxis(target-body.Rotation.Yaw), -step, step)
	body.Rotation = physics.Rotator{Yaw: physics.NormalizeAxis(body.Rotation.Yaw + delta)}
}
