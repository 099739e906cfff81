package components

import "github.com/mlange-42/ark/ecs"

// BehaviorState is the current state of an agent's decision loop.
type BehaviorState uint8

const (
	StateIdle BehaviorState = iota
	StateSeekingResource
	StateCollectingResource
	StateSeekingEnemy
	StateAttacking
	StateFleeing
)

// NumBehaviorStates is the number of behavior states.
const NumBehaviorStates = 6

// String returns the display name for a BehaviorState.
func (s BehaviorState) String() string {
	names := BehaviorStateNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// BehaviorStateNames returns the display names for all behavior states.
// The order matches the BehaviorState constants.
func BehaviorStateNames() []string {
	return []string{"Idle", "SeekingResource", "CollectingResource", "SeekingEnemy", "Attacking", "Fleeing"}
}

// Behavior is the per-agent blackboard for the decision loop. Target
// references are revalidated every tick, so a stale entity here is harmless.
type Behavior struct {
	State BehaviorState

	Enemy       ecs.Entity
	HasEnemy    bool
	Resource    ecs.Entity
	HasResource bool

	// Wander target
	WanderX, WanderY float32
	HasWander        bool
	WanderTimer      float32 // seconds until a new wander target is picked

	AttackCooldown float32 // seconds until the next hit lands
	Speed          float32 // effective speed, recomputed when speed points change
}

// ClearEnemy drops the enemy target.
func (b *Behavior) ClearEnemy() {
	b.HasEnemy = false
	b.Enemy = ecs.Entity{}
}

// ClearResource drops the resource target.
func (b *Behavior) ClearResource() {
	b.HasResource = false
	b.Resource = ecs.Entity{}
}
