package components

// Fixed rules of the agent lifecycle. These are design constants and are not
// exposed through configuration.
const (
	HealthPerVitality        = 10   // maxHealth = base + vitality*10
	DamageReductionPerPoint  = 0.02 // per vitality point
	MaxDamageReduction       = 0.5
	SoyHeal                  = 20
	SpeedBonusPerPoint       = 0.05 // effectiveSpeed = base * (1 + speedPoints*0.05)
	MultiplyMinVitality      = 3
	MultiplyMinCollected     = 5
	MultiplicationResetSteps = 50
)

// Agent holds the vitals, growth stats and multiplication bookkeeping of one
// agent. Position and behavior state live in their own components.
type Agent struct {
	Faction       Faction
	Health        float32
	BaseMaxHealth float32

	// Growth stats, only ever incremented by collection
	Strength    int
	SpeedPoints int
	Vitality    int

	ResourcesCollected  int  // reset on respawn
	MultipliedThisCycle bool // cleared by the engine every MultiplicationResetSteps
	Dead                bool
}

// NewAgent returns a fresh agent at full health.
func NewAgent(f Faction, baseMaxHealth float32) Agent {
	return Agent{
		Faction:       f,
		Health:        baseMaxHealth,
		BaseMaxHealth: baseMaxHealth,
	}
}

// MaxHealth returns base health plus the vitality bonus.
func (a *Agent) MaxHealth() float32 {
	return a.BaseMaxHealth + float32(a.Vitality)*HealthPerVitality
}

// DamageReduction returns the fraction of incoming damage absorbed, min(vitality*0.02, 0.5).
func (a *Agent) DamageReduction() float32 {
	return min(float32(a.Vitality)*DamageReductionPerPoint, MaxDamageReduction)
}

// TakeDamage applies amount reduced by vitality. It reports whether this call
// killed the agent, which happens at most once per life.
func (a *Agent) TakeDamage(amount float32) bool {
	if a.Dead {
		return false
	}
	a.Health -= amount * (1 - a.DamageReduction())
	if a.Health <= 0 {
		a.Health = 0
		a.Dead = true
		return true
	}
	return false
}

// Respawn restores the agent to full health and clears its multiplication
// bookkeeping. Growth stats are kept. Relocation is the caller's job.
func (a *Agent) Respawn() {
	a.Health = a.MaxHealth()
	a.Dead = false
	a.ResourcesCollected = 0
	a.MultipliedThisCycle = false
}

// Collect applies the effect of a resource. It returns true when speed points
// changed and the owner's movement speed must be recomputed.
func (a *Agent) Collect(kind ResourceKind) bool {
	if a.Dead {
		return false
	}
	a.ResourcesCollected++
	switch kind {
	case ResourceWood:
		a.Strength++
	case ResourceSoy:
		a.Vitality++
		a.Health = min(a.Health+SoyHeal, a.MaxHealth())
	case ResourceMate:
		a.SpeedPoints++
		return true
	}
	return false
}

// CanMultiply reports whether the agent meets the multiplication thresholds.
func (a *Agent) CanMultiply() bool {
	return !a.Dead &&
		!a.MultipliedThisCycle &&
		a.Vitality >= MultiplyMinVitality &&
		a.ResourcesCollected >= MultiplyMinCollected
}

// DidMultiply sets the one-cycle flag. Stats are not consumed.
func (a *Agent) DidMultiply() {
	a.MultipliedThisCycle = true
}

// ResetMultiplication clears the one-cycle flag.
func (a *Agent) ResetMultiplication() {
	a.MultipliedThisCycle = false
}

// AttackDamage returns the raw damage dealt per hit.
func (a *Agent) AttackDamage() float32 {
	return float32(a.Strength)*2 + 5
}

// EffectiveSpeed returns base scaled by the speed-point bonus.
func (a *Agent) EffectiveSpeed(base float32) float32 {
	return base * (1 + float32(a.SpeedPoints)*SpeedBonusPerPoint)
}

// HealthRatio returns health as a fraction of max health.
func (a *Agent) HealthRatio() float32 {
	maxH := a.MaxHealth()
	if maxH <= 0 {
		return 0
	}
	return a.Health / maxH
}
