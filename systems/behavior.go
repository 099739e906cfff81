package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/config"
)

// Context is what an agent's decision loop needs from its owner. It is passed
// into every update rather than stored on the agent.
type Context interface {
	// Population returns the live list of a faction in stable order.
	Population(f components.Faction) []ecs.Entity
	// RequestMultiplication asks for a child of parent's faction near parent.
	RequestMultiplication(parent ecs.Entity) bool
	// NotifyDeath reports that e has just died.
	NotifyDeath(e ecs.Entity)
}

// FactionParams holds per-faction behavior tuning.
type FactionParams struct {
	BaseSpeed        float32
	AttackRange      float32
	AttackCooldown   float32
	FleeWhenIsolated bool
}

// BehaviorParams holds the decision loop parameters shared by all agents.
type BehaviorParams struct {
	VisionRadius      float32
	CollectionRange   float32
	TargetReached     float32
	WanderMin         float32
	WanderMax         float32
	FleeReleaseFactor float32
	AttackLeashFactor float32

	NeedHealthRatio float32
	NeedVitality    int
	NeedStrength    int
	NeedSpeed       int

	ClampBound  float32 // movement clamp, half-size minus margin
	WanderBound float32 // wander targets are drawn from [-WanderBound, WanderBound]

	Factions [components.NumFactions]FactionParams
}

// BehaviorParamsFrom builds BehaviorParams from the loaded configuration.
func BehaviorParamsFrom(cfg *config.Config) BehaviorParams {
	b := cfg.Behavior
	p := BehaviorParams{
		VisionRadius:      float32(b.VisionRadius),
		CollectionRange:   float32(b.CollectionRange),
		TargetReached:     float32(b.TargetReached),
		WanderMin:         float32(b.WanderMin),
		WanderMax:         float32(b.WanderMax),
		FleeReleaseFactor: float32(b.FleeReleaseFactor),
		AttackLeashFactor: float32(b.AttackLeashFactor),
		NeedHealthRatio:   float32(b.Needs.HealthRatio),
		NeedVitality:      b.Needs.Vitality,
		NeedStrength:      b.Needs.Strength,
		NeedSpeed:         b.Needs.Speed,
		ClampBound:        float32(cfg.Derived.ClampBound),
		WanderBound:       float32(cfg.Derived.SpawnBound),
	}
	for i := range p.Factions {
		fc := cfg.Faction(i)
		p.Factions[i] = FactionParams{
			BaseSpeed:        float32(fc.BaseSpeed),
			AttackRange:      float32(fc.AttackRange),
			AttackCooldown:   float32(fc.AttackCooldown),
			FleeWhenIsolated: fc.FleeWhenIsolated,
		}
	}
	return p
}

// Events counts what happened during one agent update, for telemetry.
type Events struct {
	Attacks     int
	Kills       int
	Collections [components.NumResourceKinds]int
	Births      int
}

// BehaviorSystem runs the per-agent decide/act state machine.
type BehaviorSystem struct {
	world     *ecs.World
	posMap    *ecs.Map[components.Position]
	agentMap  *ecs.Map[components.Agent]
	behMap    *ecs.Map[components.Behavior]
	pool      *ResourcePool
	rng       RNG
	params    BehaviorParams
	visionSq  float32
	releaseSq float32
}

// NewBehaviorSystem creates a new behavior system.
func NewBehaviorSystem(w *ecs.World, pool *ResourcePool, rng RNG, params BehaviorParams) *BehaviorSystem {
	s := &BehaviorSystem{
		world:    w,
		posMap:   ecs.NewMap[components.Position](w),
		agentMap: ecs.NewMap[components.Agent](w),
		behMap:   ecs.NewMap[components.Behavior](w),
		pool:     pool,
		rng:      rng,
	}
	s.SetParams(params)
	return s
}

// SetParams replaces the behavior parameters.
func (s *BehaviorSystem) SetParams(params BehaviorParams) {
	s.params = params
	s.visionSq = params.VisionRadius * params.VisionRadius
	release := params.VisionRadius * params.FleeReleaseFactor
	s.releaseSq = release * release
}

// Params returns the current behavior parameters.
func (s *BehaviorSystem) Params() BehaviorParams {
	return s.params
}

// NewBehavior returns the initial blackboard for an agent.
func (s *BehaviorSystem) NewBehavior(a *components.Agent) components.Behavior {
	return components.Behavior{
		State: components.StateIdle,
		Speed: a.EffectiveSpeed(s.params.Factions[a.Faction].BaseSpeed),
	}
}

// Update advances one agent by dt seconds of scaled time: timers, decide, act,
// then a multiplication attempt.
func (s *BehaviorSystem) Update(ctx Context, e ecs.Entity, dt float32) Events {
	var ev Events
	if !s.world.Alive(e) {
		return ev
	}
	pos := s.posMap.Get(e)
	agent := s.agentMap.Get(e)
	beh := s.behMap.Get(e)
	if agent.Dead {
		return ev
	}

	if beh.AttackCooldown > 0 {
		beh.AttackCooldown -= dt
	}
	if beh.WanderTimer > 0 {
		beh.WanderTimer -= dt
	}

	s.Decide(ctx, e, pos, agent, beh)

	switch beh.State {
	case components.StateSeekingEnemy:
		s.seekEnemy(pos, beh, dt)
	case components.StateAttacking:
		s.attack(ctx, pos, agent, beh, &ev)
	case components.StateFleeing:
		s.flee(pos, beh, dt)
	case components.StateSeekingResource:
		s.seekResource(pos, beh, dt)
	case components.StateCollectingResource:
		s.collect(agent, beh, &ev)
	default:
		s.wander(pos, beh, dt)
	}

	if agent.CanMultiply() && ctx.RequestMultiplication(e) {
		// The child may have grown the component storage; fetch again.
		s.agentMap.Get(e).DidMultiply()
		ev.Births++
	}

	return ev
}

// Decide re-evaluates the agent's state from scratch.
func (s *BehaviorSystem) Decide(ctx Context, e ecs.Entity, pos *components.Position, agent *components.Agent, beh *components.Behavior) {
	fp := s.params.Factions[agent.Faction]

	enemy, enemyDistSq, found := s.nearestLiving(ctx.Population(agent.Faction.Enemy()), e, pos)
	if found {
		beh.Enemy = enemy
		beh.HasEnemy = true
		if fp.FleeWhenIsolated && s.alliesNearby(ctx.Population(agent.Faction), e, pos) == 0 {
			beh.State = components.StateFleeing
			return
		}
		if enemyDistSq <= fp.AttackRange*fp.AttackRange {
			beh.State = components.StateAttacking
		} else {
			beh.State = components.StateSeekingEnemy
		}
		return
	}
	beh.ClearEnemy()

	if s.needsResources(agent) {
		res, resDistSq, ok := s.pool.Nearest(pos.X, pos.Y, s.params.VisionRadius)
		if ok {
			beh.Resource = res
			beh.HasResource = true
			if resDistSq <= s.params.CollectionRange*s.params.CollectionRange {
				beh.State = components.StateCollectingResource
			} else {
				beh.State = components.StateSeekingResource
			}
			return
		}
	}
	beh.ClearResource()

	beh.State = components.StateIdle
}

// needsResources reports whether the agent is hurt or under-developed.
func (s *BehaviorSystem) needsResources(a *components.Agent) bool {
	return a.Health < a.MaxHealth()*s.params.NeedHealthRatio ||
		a.Vitality < s.params.NeedVitality ||
		a.Strength < s.params.NeedStrength ||
		a.SpeedPoints < s.params.NeedSpeed
}

// nearestLiving returns the closest living agent in list strictly inside vision.
func (s *BehaviorSystem) nearestLiving(list []ecs.Entity, self ecs.Entity, pos *components.Position) (ecs.Entity, float32, bool) {
	var best ecs.Entity
	bestDistSq := s.visionSq
	found := false
	for _, other := range list {
		if other == self || !s.liveAgent(other) {
			continue
		}
		op := s.posMap.Get(other)
		d := distanceSq(pos.X, pos.Y, op.X, op.Y)
		if d < bestDistSq {
			bestDistSq = d
			best = other
			found = true
		}
	}
	return best, bestDistSq, found
}

// alliesNearby counts living agents in list, excluding self, strictly inside vision.
func (s *BehaviorSystem) alliesNearby(list []ecs.Entity, self ecs.Entity, pos *components.Position) int {
	n := 0
	for _, other := range list {
		if other == self || !s.liveAgent(other) {
			continue
		}
		op := s.posMap.Get(other)
		if distanceSq(pos.X, pos.Y, op.X, op.Y) < s.visionSq {
			n++
		}
	}
	return n
}

// liveAgent reports whether e still exists and has not died.
func (s *BehaviorSystem) liveAgent(e ecs.Entity) bool {
	if !s.world.Alive(e) || !s.agentMap.Has(e) {
		return false
	}
	return !s.agentMap.Get(e).Dead
}

// validEnemy revalidates the stored enemy target, dropping it if stale.
func (s *BehaviorSystem) validEnemy(beh *components.Behavior) bool {
	if !beh.HasEnemy || !s.liveAgent(beh.Enemy) {
		beh.ClearEnemy()
		beh.State = components.StateIdle
		return false
	}
	return true
}

// validResource revalidates the stored resource target, dropping it if stale.
func (s *BehaviorSystem) validResource(beh *components.Behavior) bool {
	if !beh.HasResource || !s.pool.IsAvailable(beh.Resource) {
		beh.ClearResource()
		beh.State = components.StateIdle
		return false
	}
	return true
}

func (s *BehaviorSystem) wander(pos *components.Position, beh *components.Behavior, dt float32) {
	if beh.WanderTimer <= 0 || !beh.HasWander ||
		distance(pos.X, pos.Y, beh.WanderX, beh.WanderY) < s.params.TargetReached {
		beh.WanderX, beh.WanderY = RandomInBounds(s.rng, s.params.WanderBound)
		beh.HasWander = true
		beh.WanderTimer = s.params.WanderMin + s.rng.Float32()*(s.params.WanderMax-s.params.WanderMin)
	}
	s.moveTo(pos, beh.WanderX, beh.WanderY, beh.Speed, dt)
}

func (s *BehaviorSystem) seekEnemy(pos *components.Position, beh *components.Behavior, dt float32) {
	if !s.validEnemy(beh) {
		return
	}
	ep := s.posMap.Get(beh.Enemy)
	s.moveTo(pos, ep.X, ep.Y, beh.Speed, dt)
}

func (s *BehaviorSystem) seekResource(pos *components.Position, beh *components.Behavior, dt float32) {
	if !s.validResource(beh) {
		return
	}
	rp := s.pool.Position(beh.Resource)
	s.moveTo(pos, rp.X, rp.Y, beh.Speed, dt)
}

func (s *BehaviorSystem) flee(pos *components.Position, beh *components.Behavior, dt float32) {
	if !s.validEnemy(beh) {
		return
	}
	ep := s.posMap.Get(beh.Enemy)
	if dx, dy, ok := normalize(pos.X-ep.X, pos.Y-ep.Y); ok {
		s.moveTo(pos, pos.X+dx*s.params.VisionRadius, pos.Y+dy*s.params.VisionRadius, beh.Speed, dt)
	}
	if distanceSq(pos.X, pos.Y, ep.X, ep.Y) > s.releaseSq {
		beh.ClearEnemy()
		beh.State = components.StateIdle
	}
}

func (s *BehaviorSystem) attack(ctx Context, pos *components.Position, agent *components.Agent, beh *components.Behavior, ev *Events) {
	if !s.validEnemy(beh) {
		return
	}
	fp := s.params.Factions[agent.Faction]
	ep := s.posMap.Get(beh.Enemy)
	leash := fp.AttackRange * s.params.AttackLeashFactor
	if distanceSq(pos.X, pos.Y, ep.X, ep.Y) > leash*leash {
		beh.State = components.StateSeekingEnemy
		return
	}
	if beh.AttackCooldown > 0 {
		return
	}

	enemy := beh.Enemy
	target := s.agentMap.Get(enemy)
	ev.Attacks++
	beh.AttackCooldown = fp.AttackCooldown
	if target.TakeDamage(agent.AttackDamage()) {
		ev.Kills++
		ctx.NotifyDeath(enemy)
	}
	if target.Dead {
		beh.ClearEnemy()
		beh.State = components.StateIdle
	}
}

func (s *BehaviorSystem) collect(agent *components.Agent, beh *components.Behavior, ev *Events) {
	if !s.validResource(beh) {
		return
	}
	kind := s.pool.Kind(beh.Resource)
	if agent.Collect(kind) {
		beh.Speed = agent.EffectiveSpeed(s.params.Factions[agent.Faction].BaseSpeed)
	}
	s.pool.NotifyCollected(beh.Resource)
	ev.Collections[kind]++
	beh.ClearResource()
	beh.State = components.StateIdle
}

// moveTo steps toward (tx, ty) by speed*dt and clamps to the world bounds.
func (s *BehaviorSystem) moveTo(pos *components.Position, tx, ty, speed, dt float32) {
	dx, dy, ok := normalize(tx-pos.X, ty-pos.Y)
	if !ok {
		return
	}
	step := speed * dt
	pos.X, pos.Y = clampToBounds(pos.X+dx*step, pos.Y+dy*step, s.params.ClampBound)
}
