// Package components defines ECS components for the simulation.
package components

// Position represents an entity's world position.
// The world is centered on the origin; z is implicitly 0.
type Position struct {
	X, Y float32
}

// Faction identifies one of the two competing populations.
type Faction uint8

const (
	FactionGuarani Faction = iota
	FactionJesuit
)

// NumFactions is the number of factions in the simulation.
const NumFactions = 2

// String returns the display name for a Faction.
func (f Faction) String() string {
	switch f {
	case FactionGuarani:
		return "Guarani"
	case FactionJesuit:
		return "Jesuit"
	}
	return "Unknown"
}

// Enemy returns the opposing faction.
func (f Faction) Enemy() Faction {
	if f == FactionGuarani {
		return FactionJesuit
	}
	return FactionGuarani
}

// Index returns f as a slice index.
func (f Faction) Index() int {
	return int(f)
}

// ParseFaction maps a faction name back to its value.
func ParseFaction(s string) (Faction, bool) {
	switch s {
	case "Guarani", "guarani":
		return FactionGuarani, true
	case "Jesuit", "jesuit":
		return FactionJesuit, true
	}
	return 0, false
}

// ResourceKind is the type of a collectible resource.
type ResourceKind uint8

const (
	ResourceWood ResourceKind = iota // +1 strength
	ResourceSoy                      // +1 vitality, heals
	ResourceMate                     // +1 speed point
)

// NumResourceKinds is the number of resource kinds.
const NumResourceKinds = 3

// String returns the display name for a ResourceKind.
func (k ResourceKind) String() string {
	names := ResourceKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// ResourceKindNames returns the display names for all resource kinds.
// The order matches the ResourceKind constants.
func ResourceKindNames() []string {
	return []string{"Wood", "Soy", "Mate"}
}
