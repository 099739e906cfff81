package components

// Resource is a pooled collectible. Pooled resources are never freed; the pool
// only flips Available and moves them.
type Resource struct {
	Kind      ResourceKind
	Available bool
	Slot      int // index within the pool for its kind
}
