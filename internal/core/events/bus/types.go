package bus

// Routing keys used across the module.
const (
	// Per-actor topic: input for one character.
	TypeInputAction = "input.action"
	TypeInputAxis   = "input.axis"

	// Default topic: world-wide notifications.
	TypeSwingStarted  = "swing.started"
	TypeSwingReleased = "swing.released"
	TypeActorSpawned  = "actor.spawned"
	TypeActorRemoved  = "actor.removed"
)
