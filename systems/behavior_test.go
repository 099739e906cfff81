package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/config"
)

func init() {
	config.MustInit("")
}

// fakeContext is a minimal owner for behavior tests.
type fakeContext struct {
	pops       [components.NumFactions][]ecs.Entity
	allowBirth bool
	births     int
	deaths     []ecs.Entity
}

func (c *fakeContext) Population(f components.Faction) []ecs.Entity { return c.pops[f] }

func (c *fakeContext) RequestMultiplication(parent ecs.Entity) bool {
	if !c.allowBirth {
		return false
	}
	c.births++
	return true
}

func (c *fakeContext) NotifyDeath(e ecs.Entity) { c.deaths = append(c.deaths, e) }

type behaviorFixture struct {
	world  *ecs.World
	pool   *ResourcePool
	sys    *BehaviorSystem
	mapper *ecs.Map3[components.Position, components.Agent, components.Behavior]
	ctx    *fakeContext
}

// newBehaviorFixture builds a world with an empty resource pool unless
// maxActive is positive.
func newBehaviorFixture(maxActive int) *behaviorFixture {
	cfg := config.Cfg()
	w := ecs.NewWorld()
	rng := rand.New(rand.NewSource(3))
	poolCfg := PoolConfigFrom(cfg)
	poolCfg.MaxActivePerType = maxActive
	pool := NewResourcePool(w, poolCfg, rng)
	pool.ResetAndRepopulate()
	return &behaviorFixture{
		world:  w,
		pool:   pool,
		sys:    NewBehaviorSystem(w, pool, rng, BehaviorParamsFrom(cfg)),
		mapper: ecs.NewMap3[components.Position, components.Agent, components.Behavior](w),
		ctx:    &fakeContext{},
	}
}

func (f *behaviorFixture) spawn(faction components.Faction, x, y float32) ecs.Entity {
	base := float32(config.Cfg().Faction(faction.Index()).BaseMaxHealth)
	pos := components.Position{X: x, Y: y}
	agent := components.NewAgent(faction, base)
	beh := f.sys.NewBehavior(&agent)
	e := f.mapper.NewEntity(&pos, &agent, &beh)
	f.ctx.pops[faction] = append(f.ctx.pops[faction], e)
	return e
}

func (f *behaviorFixture) get(e ecs.Entity) (*components.Position, *components.Agent, *components.Behavior) {
	return f.mapper.Get(e)
}

// ---------- Enemy handling ----------

func TestBehavior_IsolatedGuaraniFlees(t *testing.T) {
	f := newBehaviorFixture(0)
	g := f.spawn(components.FactionGuarani, 0, 0)
	f.spawn(components.FactionJesuit, 3, 0)

	f.sys.Update(f.ctx, g, 1.0/60)

	pos, _, beh := f.get(g)
	if beh.State != components.StateFleeing {
		t.Errorf("state = %s, want Fleeing", beh.State)
	}
	if pos.X >= 0 {
		t.Errorf("fleeing Guarani moved to x=%.3f, want away from enemy (x<0)", pos.X)
	}
}

func TestBehavior_GuaraniWithAllyEngages(t *testing.T) {
	f := newBehaviorFixture(0)
	g := f.spawn(components.FactionGuarani, 0, 0)
	f.spawn(components.FactionGuarani, 0, 2)
	j := f.spawn(components.FactionJesuit, 1, 0)

	ev := f.sys.Update(f.ctx, g, 1.0/60)

	_, _, beh := f.get(g)
	if beh.State != components.StateAttacking {
		t.Errorf("state = %s, want Attacking", beh.State)
	}
	if ev.Attacks != 1 {
		t.Errorf("attacks = %d, want 1", ev.Attacks)
	}
	_, target, _ := f.get(j)
	// strength 0: 0*2+5 = 5 damage, no reduction
	if target.Health != 95 {
		t.Errorf("Jesuit health = %v, want 95", target.Health)
	}
}

func TestBehavior_DeadAllyDoesNotCount(t *testing.T) {
	f := newBehaviorFixture(0)
	g := f.spawn(components.FactionGuarani, 0, 0)
	ally := f.spawn(components.FactionGuarani, 0, 2)
	f.spawn(components.FactionJesuit, 3, 0)
	_, a, _ := f.get(ally)
	a.TakeDamage(1000)

	f.sys.Update(f.ctx, g, 1.0/60)

	_, _, beh := f.get(g)
	if beh.State != components.StateFleeing {
		t.Errorf("state = %s, want Fleeing", beh.State)
	}
}

func TestBehavior_JesuitNeverFlees(t *testing.T) {
	f := newBehaviorFixture(0)
	j := f.spawn(components.FactionJesuit, 0, 0)
	f.spawn(components.FactionGuarani, 5, 0)

	f.sys.Update(f.ctx, j, 1.0/60)

	pos, _, beh := f.get(j)
	if beh.State != components.StateSeekingEnemy {
		t.Errorf("state = %s, want SeekingEnemy", beh.State)
	}
	if pos.X <= 0 {
		t.Errorf("Jesuit moved to x=%.3f, want toward enemy", pos.X)
	}
}

func TestBehavior_EnemyOutsideVisionIgnored(t *testing.T) {
	f := newBehaviorFixture(0)
	j := f.spawn(components.FactionJesuit, -12, 0)
	f.spawn(components.FactionGuarani, 12, 0)

	f.sys.Update(f.ctx, j, 1.0/60)

	_, _, beh := f.get(j)
	if beh.State != components.StateIdle {
		t.Errorf("state = %s, want Idle", beh.State)
	}
	if beh.HasEnemy {
		t.Error("enemy outside vision should not be targeted")
	}
}

func TestBehavior_KillNotifiesOnce(t *testing.T) {
	f := newBehaviorFixture(0)
	j := f.spawn(components.FactionJesuit, 0, 0)
	g := f.spawn(components.FactionGuarani, 1, 0)
	_, target, _ := f.get(g)
	target.Health = 3

	ev := f.sys.Update(f.ctx, j, 1.0/60)

	if ev.Kills != 1 {
		t.Errorf("kills = %d, want 1", ev.Kills)
	}
	if len(f.ctx.deaths) != 1 || f.ctx.deaths[0] != g {
		t.Errorf("deaths = %v, want [%v]", f.ctx.deaths, g)
	}
	_, _, beh := f.get(j)
	if beh.State != components.StateIdle || beh.HasEnemy {
		t.Errorf("after kill: state = %s hasEnemy = %v, want Idle/false", beh.State, beh.HasEnemy)
	}

	// The corpse is not targeted again.
	f.sys.Update(f.ctx, j, 1.0/60)
	if len(f.ctx.deaths) != 1 {
		t.Errorf("death reported %d times", len(f.ctx.deaths))
	}
}

func TestBehavior_AttackCooldown(t *testing.T) {
	f := newBehaviorFixture(0)
	j := f.spawn(components.FactionJesuit, 0, 0)
	g := f.spawn(components.FactionGuarani, 1, 0)

	dt := float32(0.1)
	attacks := 0
	// The first hit lands immediately; the 1.95s cooldown needs 20 more updates.
	for i := 0; i < 21; i++ {
		ev := f.sys.Update(f.ctx, j, dt)
		attacks += ev.Attacks
	}
	if attacks != 2 {
		t.Errorf("attacks = %d, want 2", attacks)
	}
	_, target, _ := f.get(g)
	if target.Health != 70 {
		t.Errorf("Guarani health = %v, want 70", target.Health)
	}
}

func TestBehavior_StaleEnemyFallsBackToIdle(t *testing.T) {
	f := newBehaviorFixture(0)
	j := f.spawn(components.FactionJesuit, 0, 0)
	g := f.spawn(components.FactionGuarani, 5, 0)

	_, _, beh := f.get(j)
	beh.Enemy = g
	beh.HasEnemy = true
	f.world.RemoveEntity(g)

	pos, agent, beh := f.get(j)
	f.sys.seekEnemy(pos, beh, 1.0/60)
	if beh.State != components.StateIdle || beh.HasEnemy {
		t.Errorf("state = %s hasEnemy = %v, want Idle/false", beh.State, beh.HasEnemy)
	}

	beh.Enemy = g
	beh.HasEnemy = true
	var ev Events
	f.sys.attack(f.ctx, pos, agent, beh, &ev)
	if beh.State != components.StateIdle || ev.Attacks != 0 {
		t.Errorf("attack on removed target: state = %s attacks = %d", beh.State, ev.Attacks)
	}
}

// ---------- Resources ----------

// onlyResource collects every active resource except one of kind and returns it.
func (f *behaviorFixture) onlyResource(kind components.ResourceKind) ecs.Entity {
	var keep ecs.Entity
	found := false
	for _, e := range f.pool.AvailableResources() {
		if !found && f.pool.Kind(e) == kind {
			keep = e
			found = true
			continue
		}
		f.pool.NotifyCollected(e)
	}
	return keep
}

func TestBehavior_SeeksAndCollectsResource(t *testing.T) {
	f := newBehaviorFixture(1)
	target := f.onlyResource(components.ResourceWood)
	rp := f.pool.Position(target)

	a := f.spawn(components.FactionJesuit, rp.X+3, rp.Y)

	// Out of collection range: move toward it.
	f.sys.Update(f.ctx, a, 1.0/60)
	pos, _, beh := f.get(a)
	if beh.State != components.StateSeekingResource {
		t.Fatalf("state = %s, want SeekingResource", beh.State)
	}
	if pos.X >= rp.X+3 {
		t.Error("agent did not move toward the resource")
	}

	pos.X = rp.X + 0.2
	ev := f.sys.Update(f.ctx, a, 1.0/60)

	_, agent, beh := f.get(a)
	if ev.Collections[components.ResourceWood] != 1 {
		t.Errorf("wood collections = %d, want 1", ev.Collections[components.ResourceWood])
	}
	if agent.ResourcesCollected != 1 || agent.Strength != 1 {
		t.Errorf("collected = %d strength = %d, want 1/1", agent.ResourcesCollected, agent.Strength)
	}
	if f.pool.IsAvailable(target) {
		t.Error("collected resource still available")
	}
	if beh.State != components.StateIdle || beh.HasResource {
		t.Errorf("state = %s hasResource = %v, want Idle/false", beh.State, beh.HasResource)
	}
}

func TestBehavior_SatisfiedAgentIgnoresResources(t *testing.T) {
	f := newBehaviorFixture(1)
	target := f.onlyResource(components.ResourceSoy)
	rp := f.pool.Position(target)

	a := f.spawn(components.FactionJesuit, rp.X+0.2, rp.Y)
	_, agent, _ := f.get(a)
	agent.Vitality = 5
	agent.Strength = 3
	agent.SpeedPoints = 3
	agent.Health = agent.MaxHealth()

	f.sys.Update(f.ctx, a, 1.0/60)

	_, _, beh := f.get(a)
	if beh.State != components.StateIdle {
		t.Errorf("state = %s, want Idle", beh.State)
	}
	if !f.pool.IsAvailable(target) {
		t.Error("satisfied agent should not collect")
	}
}

func TestBehavior_StaleResourceFallsBackToIdle(t *testing.T) {
	f := newBehaviorFixture(1)
	target := f.pool.AvailableResources()[0]
	a := f.spawn(components.FactionJesuit, 0, 0)

	pos, agent, beh := f.get(a)
	beh.Resource = target
	beh.HasResource = true
	f.pool.NotifyCollected(target)

	var ev Events
	f.sys.collect(agent, beh, &ev)
	if beh.State != components.StateIdle || beh.HasResource {
		t.Errorf("state = %s, want Idle", beh.State)
	}
	if agent.ResourcesCollected != 0 {
		t.Error("stale resource must not be applied")
	}

	beh.Resource = target
	beh.HasResource = true
	before := *pos
	f.sys.seekResource(pos, beh, 1.0/60)
	if *pos != before {
		t.Error("agent moved toward a collected resource")
	}
}

func TestBehavior_MateRecomputesSpeed(t *testing.T) {
	f := newBehaviorFixture(1)
	target := f.onlyResource(components.ResourceMate)
	rp := f.pool.Position(target)

	a := f.spawn(components.FactionGuarani, rp.X, rp.Y+0.5)
	_, _, beh := f.get(a)
	base := beh.Speed

	f.sys.Update(f.ctx, a, 1.0/60)

	_, agent, beh := f.get(a)
	if agent.SpeedPoints != 1 {
		t.Fatalf("speed points = %d, want 1", agent.SpeedPoints)
	}
	want := base * 1.05
	if beh.Speed < want-1e-4 || beh.Speed > want+1e-4 {
		t.Errorf("speed = %v, want %v", beh.Speed, want)
	}
}

// ---------- Movement ----------

func TestBehavior_MovementClamped(t *testing.T) {
	f := newBehaviorFixture(0)
	g := f.spawn(components.FactionGuarani, 14, 0)
	f.spawn(components.FactionJesuit, 10, 0)

	// A huge step would carry the fleeing agent well past the edge.
	f.sys.Update(f.ctx, g, 10)

	pos, _, _ := f.get(g)
	bound := f.sys.Params().ClampBound
	if pos.X > bound || pos.X < -bound || pos.Y > bound || pos.Y < -bound {
		t.Errorf("position (%.2f, %.2f) outside clamp bound %.2f", pos.X, pos.Y, bound)
	}
	if pos.X != bound {
		t.Errorf("x = %.3f, want clamped to %.3f", pos.X, bound)
	}
}

func TestBehavior_WanderStaysInBounds(t *testing.T) {
	f := newBehaviorFixture(0)
	a := f.spawn(components.FactionJesuit, 0, 0)
	bound := f.sys.Params().ClampBound
	for i := 0; i < 2000; i++ {
		f.sys.Update(f.ctx, a, 0.1)
		pos, _, beh := f.get(a)
		if beh.State != components.StateIdle {
			t.Fatalf("step %d: state = %s, want Idle", i, beh.State)
		}
		if pos.X > bound || pos.X < -bound || pos.Y > bound || pos.Y < -bound {
			t.Fatalf("step %d: position (%.2f, %.2f) out of bounds", i, pos.X, pos.Y)
		}
	}
}

// ---------- Multiplication ----------

func TestBehavior_Multiplication(t *testing.T) {
	tests := []struct {
		name       string
		allow      bool
		wantBirths int
		wantFlag   bool
	}{
		{"accepted", true, 1, true},
		{"refused at cap", false, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBehaviorFixture(0)
			f.ctx.allowBirth = tt.allow
			a := f.spawn(components.FactionJesuit, 0, 0)
			_, agent, _ := f.get(a)
			agent.Vitality = 3
			agent.ResourcesCollected = 5

			ev := f.sys.Update(f.ctx, a, 1.0/60)

			_, agent, _ = f.get(a)
			if ev.Births != tt.wantBirths || f.ctx.births != tt.wantBirths {
				t.Errorf("births = %d/%d, want %d", ev.Births, f.ctx.births, tt.wantBirths)
			}
			if agent.MultipliedThisCycle != tt.wantFlag {
				t.Errorf("flag = %v, want %v", agent.MultipliedThisCycle, tt.wantFlag)
			}

			// Only once per cycle even when the owner keeps accepting.
			f.sys.Update(f.ctx, a, 1.0/60)
			if f.ctx.births != tt.wantBirths {
				t.Errorf("births after second update = %d, want %d", f.ctx.births, tt.wantBirths)
			}
		})
	}
}

func TestBehavior_DeadAgentInert(t *testing.T) {
	f := newBehaviorFixture(0)
	a := f.spawn(components.FactionJesuit, 0, 0)
	f.spawn(components.FactionGuarani, 1, 0)
	pos, agent, _ := f.get(a)
	agent.TakeDamage(1000)
	before := *pos

	ev := f.sys.Update(f.ctx, a, 1.0/60)
	if ev != (Events{}) {
		t.Errorf("dead agent produced events: %+v", ev)
	}
	if *pos != before {
		t.Error("dead agent moved")
	}
}
