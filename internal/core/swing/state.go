package swing

import "github.com/zeusync/webswing/internal/core/systems/physics"

// Phase is the swing state machine position.
type Phase uint8

const (
	NotSwinging Phase = iota
	Swinging
)

func (p Phase) String() string {
	if p == Swinging {
		return "swinging"
	}
	return "not_swinging"
}

// State is the per-character swing state. It is reset every time a swing
// begins and is owned by exactly one character.
type State struct {
	IsSwinging  bool         `json:"is_swinging"`
	AnchorPoint physics.Vec3 `json:"anchor_point"`
}

func (s State) Phase() Phase {
	if s.IsSwinging {
		return Swinging
	}
	return NotSwinging
}

// ActorContext is what the swing logic needs to know about a character for
// one tick.
type ActorContext interface {
	Position() physics.Vec3
	Velocity() physics.Vec3
	CameraForward() physics.Vec3
}

// Step is one tick of swing output.
type Step struct {
	Force       physics.Vec3        `json:"force"`
	Orientation physics.Orientation `json:"orientation"`
}

// Event is the payload of swing.started and swing.released bus events.
type Event struct {
	ActorID       string       `json:"actor_id"`
	AnchorPoint   physics.Vec3 `json:"anchor_point"`
	Position      physics.Vec3 `json:"position"`
	VerticalReach float64      `json:"vertical_reach,omitempty"`
}
