// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Simulation SimulationConfig `yaml:"simulation"`
	Behavior   BehaviorConfig   `yaml:"behavior"`
	Factions   FactionsConfig   `yaml:"factions"`
	Resource   ResourceConfig   `yaml:"resource"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Server     ServerConfig     `yaml:"server"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the dimensions of the square world.
// The world is centered on the origin and spans [-Size/2, Size/2] on both axes.
type WorldConfig struct {
	Size           float64 `yaml:"size"`
	ClampMargin    float64 `yaml:"clamp_margin"`    // Movement stops this far inside the edge
	SpawnMargin    float64 `yaml:"spawn_margin"`    // Agents spawn this far inside the edge
	ResourceMargin float64 `yaml:"resource_margin"` // Resources spawn this far inside the edge
}

// PopulationConfig holds population sizes and limits.
type PopulationConfig struct {
	Guarani       int     `yaml:"guarani"`
	Jesuit        int     `yaml:"jesuit"`
	MaxPerFaction int     `yaml:"max_per_faction"`
	ChildOffset   float64 `yaml:"child_offset"` // Children land within +/- this of the parent
}

// SimulationConfig holds step and time parameters.
type SimulationConfig struct {
	MaxSteps    int     `yaml:"max_steps"`
	DT          float64 `yaml:"dt"`
	Speed       float64 `yaml:"speed"`
	MinSpeed    float64 `yaml:"min_speed"`
	MaxSpeed    float64 `yaml:"max_speed"`
	StartPaused bool    `yaml:"start_paused"`
	Seed        int64   `yaml:"seed"` // 0 = time-based
}

// BehaviorConfig holds the shared agent decision parameters.
type BehaviorConfig struct {
	VisionRadius      float64     `yaml:"vision_radius"`
	CollectionRange   float64     `yaml:"collection_range"`
	TargetReached     float64     `yaml:"target_reached"`
	WanderMin         float64     `yaml:"wander_min"` // seconds
	WanderMax         float64     `yaml:"wander_max"` // seconds
	FleeReleaseFactor float64     `yaml:"flee_release_factor"`
	AttackLeashFactor float64     `yaml:"attack_leash_factor"`
	Needs             NeedsConfig `yaml:"needs"`
}

// NeedsConfig holds the thresholds below which an agent goes looking for resources.
type NeedsConfig struct {
	HealthRatio float64 `yaml:"health_ratio"`
	Vitality    int     `yaml:"vitality"`
	Strength    int     `yaml:"strength"`
	Speed       int     `yaml:"speed"`
}

// FactionsConfig holds per-faction tuning.
type FactionsConfig struct {
	Guarani FactionConfig `yaml:"guarani"`
	Jesuit  FactionConfig `yaml:"jesuit"`
}

// FactionConfig holds base stats for one faction.
type FactionConfig struct {
	BaseMaxHealth    float64 `yaml:"base_max_health"`
	BaseSpeed        float64 `yaml:"base_speed"`
	AttackRange      float64 `yaml:"attack_range"`
	AttackCooldown   float64 `yaml:"attack_cooldown"` // seconds
	FleeWhenIsolated bool    `yaml:"flee_when_isolated"`
}

// ResourceConfig holds resource pool parameters.
type ResourceConfig struct {
	CapacityPerType  int     `yaml:"capacity_per_type"`
	MaxActivePerType int     `yaml:"max_active_per_type"`
	RespawnInterval  float64 `yaml:"respawn_interval"` // seconds of scaled simulation time
	GridCell         float64 `yaml:"grid_cell"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowSteps int `yaml:"window_steps"`
	PerfWindow  int `yaml:"perf_window"`
}

// ServerConfig holds the websocket front door parameters.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	TickHz         int    `yaml:"tick_hz"`
	BroadcastEvery int    `yaml:"broadcast_every"` // steps between stats broadcasts
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HalfSize      float64 // World.Size / 2
	ClampBound    float64 // HalfSize - ClampMargin
	SpawnBound    float64 // HalfSize - SpawnMargin
	ResourceBound float64 // HalfSize - ResourceMargin
	DT32          float32
	WorldSize32   float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// Faction returns the tuning table for the faction at index i (0 = Guarani, 1 = Jesuit).
func (c *Config) Faction(i int) FactionConfig {
	if i == 1 {
		return c.Factions.Jesuit
	}
	return c.Factions.Guarani
}

// computeDerived calculates values derived from loaded config and clamps
// values that would otherwise leave the simulation in an unusable state.
func (c *Config) computeDerived() {
	if c.World.Size <= 0 {
		c.World.Size = 30
	}
	if c.Population.MaxPerFaction < 1 {
		c.Population.MaxPerFaction = 1
	}
	if c.Simulation.MaxSteps < 1 {
		c.Simulation.MaxSteps = 1
	}
	if c.Simulation.MinSpeed <= 0 {
		c.Simulation.MinSpeed = 0.25
	}
	if c.Simulation.MaxSpeed < c.Simulation.MinSpeed {
		c.Simulation.MaxSpeed = c.Simulation.MinSpeed
	}
	if c.Behavior.WanderMax < c.Behavior.WanderMin {
		c.Behavior.WanderMax = c.Behavior.WanderMin
	}
	if c.Resource.GridCell <= 0 {
		c.Resource.GridCell = 5
	}
	if c.Telemetry.WindowSteps < 1 {
		c.Telemetry.WindowSteps = 1
	}

	c.Derived.HalfSize = c.World.Size / 2
	c.Derived.ClampBound = max(c.Derived.HalfSize-c.World.ClampMargin, 0)
	c.Derived.SpawnBound = max(c.Derived.HalfSize-c.World.SpawnMargin, 0)
	c.Derived.ResourceBound = max(c.Derived.HalfSize-c.World.ResourceMargin, 0)
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.WorldSize32 = float32(c.World.Size)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
