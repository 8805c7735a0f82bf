package models

// ActorKind identifies who performed a state change.
type ActorKind string

const (
	ActorUser  ActorKind = "user"
	ActorAgent ActorKind = "agent"
	ActorAPI   ActorKind = "api"
)

// Actor is the identity attached to a mutation.
type Actor struct {
	Kind ActorKind
	Name string
}

// NormalizeActorKind collapses raw actor strings to the canonical enum
// at the storage boundary. "bot" and "automation" are legacy spellings
// of the automated agent and map to ActorAgent; anything unrecognized
// is treated as a human user.
func NormalizeActorKind(raw string) ActorKind {
	switch ActorKind(raw) {
	case ActorAgent, "bot", "automation":
		return ActorAgent
	case ActorAPI:
		return ActorAPI
	default:
		return ActorUser
	}
}
