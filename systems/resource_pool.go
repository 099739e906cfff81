package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/config"
)

// ResourcePoolConfig holds the sizing of a ResourcePool.
type ResourcePoolConfig struct {
	CapacityPerType  int
	MaxActivePerType int
	RespawnInterval  float32 // seconds of scaled time between respawn attempts
	WorldWidth       float32
	WorldHeight      float32
	Margin           float32 // spawn positions stay this far inside the edge
	CellSize         float32
}

// PoolConfigFrom builds a ResourcePoolConfig from the loaded configuration.
func PoolConfigFrom(cfg *config.Config) ResourcePoolConfig {
	return ResourcePoolConfig{
		CapacityPerType:  max(cfg.Resource.CapacityPerType, 0),
		MaxActivePerType: max(cfg.Resource.MaxActivePerType, 0),
		RespawnInterval:  float32(cfg.Resource.RespawnInterval),
		WorldWidth:       float32(cfg.World.Size),
		WorldHeight:      float32(cfg.World.Size),
		Margin:           float32(cfg.World.ResourceMargin),
		CellSize:         float32(cfg.Resource.GridCell),
	}
}

// ResourcePool owns a fixed set of pooled resource entities per kind. Entities
// are created once; spawning and collection only flip availability and move them.
type ResourcePool struct {
	mapper *ecs.Map2[components.Position, components.Resource]
	posMap *ecs.Map[components.Position]
	resMap *ecs.Map[components.Resource]

	pool   [components.NumResourceKinds][]ecs.Entity
	active [components.NumResourceKinds][]ecs.Entity

	cfg    ResourcePoolConfig
	boundX float32
	boundY float32
	timer  float32

	grid *SpatialGrid
	rng  RNG

	// Scratch buffer reused by Nearest
	neighbors []Neighbor
}

// NewResourcePool allocates CapacityPerType inactive resources per kind.
func NewResourcePool(w *ecs.World, cfg ResourcePoolConfig, rng RNG) *ResourcePool {
	if cfg.CellSize <= 0 {
		cfg.CellSize = 5
	}
	p := &ResourcePool{
		mapper: ecs.NewMap2[components.Position, components.Resource](w),
		posMap: ecs.NewMap[components.Position](w),
		resMap: ecs.NewMap[components.Resource](w),
		cfg:    cfg,
		boundX: max(cfg.WorldWidth/2-cfg.Margin, 0),
		boundY: max(cfg.WorldHeight/2-cfg.Margin, 0),
		grid:   NewSpatialGrid(cfg.WorldWidth, cfg.WorldHeight, cfg.CellSize),
		rng:    rng,
	}

	for k := range components.NumResourceKinds {
		kind := components.ResourceKind(k)
		p.pool[k] = make([]ecs.Entity, 0, cfg.CapacityPerType)
		p.active[k] = make([]ecs.Entity, 0, cfg.MaxActivePerType)
		for i := 0; i < cfg.CapacityPerType; i++ {
			pos := components.Position{}
			res := components.Resource{Kind: kind, Slot: i}
			p.pool[k] = append(p.pool[k], p.mapper.NewEntity(&pos, &res))
		}
	}

	return p
}

// ResetAndRepopulate deactivates every active resource and then activates up
// to MaxActivePerType per kind at fresh random positions.
func (p *ResourcePool) ResetAndRepopulate() {
	for k := range p.active {
		for _, e := range p.active[k] {
			p.deactivate(e)
		}
		p.active[k] = p.active[k][:0]
	}
	p.grid.Clear()
	p.timer = 0

	for k := range p.active {
		for len(p.active[k]) < p.cfg.MaxActivePerType {
			if !p.spawn(components.ResourceKind(k)) {
				break
			}
		}
	}
}

// Tick advances the respawn timer by dt. When it reaches RespawnInterval the
// timer resets and each kind below its cap gets at most one respawn attempt.
// It returns the number of resources spawned.
func (p *ResourcePool) Tick(dt float32) int {
	p.timer += dt
	if p.timer < p.cfg.RespawnInterval {
		return 0
	}
	p.timer = 0

	spawned := 0
	for k := range p.active {
		if len(p.active[k]) < p.cfg.MaxActivePerType && p.spawn(components.ResourceKind(k)) {
			spawned++
		}
	}
	return spawned
}

// NotifyCollected marks e as collected and returns it to the inactive pool.
// It is a no-op returning false when e is already unavailable.
func (p *ResourcePool) NotifyCollected(e ecs.Entity) bool {
	res := p.resMap.Get(e)
	if res == nil || !res.Available {
		return false
	}

	k := res.Kind
	for i, other := range p.active[k] {
		if other == e {
			p.active[k] = append(p.active[k][:i], p.active[k][i+1:]...)
			break
		}
	}
	p.deactivate(e)
	return true
}

// IsAvailable reports whether e is an active, uncollected resource.
func (p *ResourcePool) IsAvailable(e ecs.Entity) bool {
	if !p.resMap.Has(e) {
		return false
	}
	return p.resMap.Get(e).Available
}

// Kind returns the kind of a pooled resource.
func (p *ResourcePool) Kind(e ecs.Entity) components.ResourceKind {
	return p.resMap.Get(e).Kind
}

// Position returns the position of a pooled resource.
func (p *ResourcePool) Position(e ecs.Entity) components.Position {
	return *p.posMap.Get(e)
}

// AvailableResources returns all active and available resources across kinds.
// The returned slice is a copy; it does not track later collections.
func (p *ResourcePool) AvailableResources() []ecs.Entity {
	var out []ecs.Entity
	for k := range p.active {
		for _, e := range p.active[k] {
			if p.resMap.Get(e).Available {
				out = append(out, e)
			}
		}
	}
	return out
}

// Nearest returns the closest available resource strictly within radius of (x, y).
func (p *ResourcePool) Nearest(x, y, radius float32) (ecs.Entity, float32, bool) {
	p.neighbors = p.grid.QueryRadiusAllInto(p.neighbors[:0], x, y, radius, ecs.Entity{}, p.posMap)

	var best ecs.Entity
	bestDistSq := radius * radius
	found := false
	for _, n := range p.neighbors {
		if !p.resMap.Get(n.E).Available {
			continue
		}
		if n.DistSq < bestDistSq {
			bestDistSq = n.DistSq
			best = n.E
			found = true
		}
	}
	return best, bestDistSq, found
}

// ActiveCount returns the number of active resources of a kind.
func (p *ResourcePool) ActiveCount(kind components.ResourceKind) int {
	return len(p.active[kind])
}

// Capacity returns the pool size per kind.
func (p *ResourcePool) Capacity() int {
	return p.cfg.CapacityPerType
}

// MaxActive returns the per-kind cap on simultaneously active resources.
func (p *ResourcePool) MaxActive() int {
	return p.cfg.MaxActivePerType
}

// spawn activates the first inactive resource of kind at a random position.
func (p *ResourcePool) spawn(kind components.ResourceKind) bool {
	for _, e := range p.pool[kind] {
		res := p.resMap.Get(e)
		if res.Available {
			continue
		}
		pos := p.posMap.Get(e)
		pos.X = (p.rng.Float32()*2 - 1) * p.boundX
		pos.Y = (p.rng.Float32()*2 - 1) * p.boundY
		res.Available = true
		p.active[kind] = append(p.active[kind], e)
		p.grid.Insert(e, pos.X, pos.Y)
		return true
	}
	return false
}

// deactivate marks e unavailable and drops it from the spatial index.
func (p *ResourcePool) deactivate(e ecs.Entity) {
	res := p.resMap.Get(e)
	pos := p.posMap.Get(e)
	res.Available = false
	p.grid.Remove(e, pos.X, pos.Y)
}
