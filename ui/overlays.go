package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayVision      OverlayID = "vision"
	OverlayAttackRange OverlayID = "attack_range"
	OverlayTargets     OverlayID = "targets"
	OverlayNames       OverlayID = "names"
	OverlayStates      OverlayID = "states"
	OverlayPerf        OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID        OverlayID
	Name      string
	Key       int32  // 0 = no key
	KeyLabel  string // e.g. "V"
	Category  string
	Exclusive []OverlayID // disabled when this one is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{ID: OverlayVision, Name: "Vision Radius", Key: rl.KeyV, KeyLabel: "V", Category: "perception"})
	r.Register(OverlayDescriptor{ID: OverlayAttackRange, Name: "Attack Range", Key: rl.KeyR, KeyLabel: "R", Category: "perception"})
	r.Register(OverlayDescriptor{ID: OverlayTargets, Name: "Targets", Key: rl.KeyT, KeyLabel: "T", Category: "perception"})

	// Names and states share the label slot above each agent.
	r.Register(OverlayDescriptor{ID: OverlayNames, Name: "Names", Key: rl.KeyN, KeyLabel: "N", Category: "labels", Exclusive: []OverlayID{OverlayStates}})
	r.Register(OverlayDescriptor{ID: OverlayStates, Name: "States", Key: rl.KeyL, KeyLabel: "L", Category: "labels", Exclusive: []OverlayID{OverlayNames}})

	r.Register(OverlayDescriptor{ID: OverlayPerf, Name: "Performance", Key: rl.KeyF3, KeyLabel: "F3", Category: "debug"})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// Legend returns the key bindings as a single line, e.g. "[V] Vision Radius".
func (r *OverlayRegistry) Legend() string {
	var s string
	for i, desc := range r.descriptors {
		if desc.KeyLabel == "" {
			continue
		}
		if i > 0 {
			s += "  "
		}
		s += "[" + desc.KeyLabel + "] " + desc.Name
	}
	return s
}
