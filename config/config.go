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
	World     WorldConfig     `yaml:"world"`
	Food      FoodConfig      `yaml:"food"`
	Neural    NeuralConfig    `yaml:"neural"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds graph growth and energy parameters.
type WorldConfig struct {
	InitialEnergy          float64 `yaml:"initial_energy"`      // Seed node energy
	DefaultNodeEnergy      float64 `yaml:"default_node_energy"` // Energy handed to a grown node
	GrowthCost             float64 `yaml:"growth_cost"`         // Energy lost per growth event
	PassiveEnergyLoss      float64 `yaml:"passive_energy_loss"` // Multiplicative decay per step
	MaxNodeEnergy          float64 `yaml:"max_node_energy"`
	MaxEdgesPerNode        int     `yaml:"max_edges_per_node"`
	MaxNodes               int     `yaml:"max_nodes"` // Growth stops once reached
	EdgeLength             float64 `yaml:"edge_length"`
	DefaultFlowRate        float64 `yaml:"default_flow_rate"`
	FlowRateStep           float64 `yaml:"flow_rate_step"`
	MaxFlowRate            float64 `yaml:"max_flow_rate"`
	MinGrowthAngleVariance float64 `yaml:"min_growth_angle_variance"`
	Collision              string  `yaml:"collision"` // nearest | first
}

// FoodConfig holds food source placement parameters.
type FoodConfig struct {
	Count      int     `yaml:"count"`
	Spread     float64 `yaml:"spread"` // Centers drawn in [-spread, spread]^2
	MinEnergy  float64 `yaml:"min_energy"`
	MaxEnergy  float64 `yaml:"max_energy"`
	AbsorbRate float64 `yaml:"absorb_rate"` // Energy taken per step by the feeding node
}

// NeuralConfig holds the decision network layer widths.
// Input and output widths are fixed by the simulation features.
type NeuralConfig struct {
	GrowthHidden     []int  `yaml:"growth_hidden"`
	FlowHidden       []int  `yaml:"flow_hidden"`
	HiddenActivation string `yaml:"hidden_activation"`
	OutputActivation string `yaml:"output_activation"`
}

// FitnessConfig selects the per-trial fitness metric.
type FitnessConfig struct {
	Metric string `yaml:"metric"` // energy | food_consumed | centrality
}

// EvolutionConfig holds genetic algorithm parameters.
type EvolutionConfig struct {
	Generations       int     `yaml:"generations"`
	PopulationSize    int     `yaml:"population_size"`
	NumTries          int     `yaml:"num_tries"`
	NumSteps          int     `yaml:"num_steps"`
	EliteProportion   float64 `yaml:"elite_proportion"`
	CrossedProportion float64 `yaml:"crossed_proportion"`
	MutationRate      float64 `yaml:"mutation_rate"`
	MutationStrength  float64 `yaml:"mutation_strength"`
	Aggregation       string  `yaml:"aggregation"` // median | mean | min | percentile
	Percentile        float64 `yaml:"percentile"`  // Used by aggregation=percentile
	Crossover         string  `yaml:"crossover"`   // blend | single_point
	Workers           int     `yaml:"workers"`     // 0 = GOMAXPROCS
}

// TelemetryConfig holds output file names.
type TelemetryConfig struct {
	GenomeFile     string `yaml:"genome_file"`
	TrajectoryFile string `yaml:"trajectory_file"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MinGrowthEnergy float64 // DefaultNodeEnergy + GrowthCost
	NumElite        int     // max(1, PopulationSize * EliteProportion)
	NumCrossed      int     // PopulationSize * CrossedProportion, bounded by the free slots
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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	switch c.World.Collision {
	case "nearest", "first":
	default:
		return fmt.Errorf("world.collision: unknown mode %q", c.World.Collision)
	}
	switch c.Fitness.Metric {
	case "energy", "food_consumed", "centrality":
	default:
		return fmt.Errorf("fitness.metric: unknown metric %q", c.Fitness.Metric)
	}
	switch c.Evolution.Aggregation {
	case "median", "mean", "min", "percentile":
	default:
		return fmt.Errorf("evolution.aggregation: unknown aggregation %q", c.Evolution.Aggregation)
	}
	switch c.Evolution.Crossover {
	case "blend", "single_point":
	default:
		return fmt.Errorf("evolution.crossover: unknown crossover %q", c.Evolution.Crossover)
	}
	for _, name := range []string{c.Neural.HiddenActivation, c.Neural.OutputActivation} {
		switch name {
		case "sigmoid", "relu", "tanh":
		default:
			return fmt.Errorf("neural: unknown activation %q", name)
		}
	}
	for _, w := range append(append([]int{}, c.Neural.GrowthHidden...), c.Neural.FlowHidden...) {
		if w <= 0 {
			return fmt.Errorf("neural: hidden layer width must be positive, got %d", w)
		}
	}
	if c.Evolution.PopulationSize < 1 {
		return fmt.Errorf("evolution.population_size must be at least 1, got %d", c.Evolution.PopulationSize)
	}
	if c.Evolution.NumTries < 1 {
		return fmt.Errorf("evolution.num_tries must be at least 1, got %d", c.Evolution.NumTries)
	}
	if c.Evolution.Percentile < 0 || c.Evolution.Percentile > 1 {
		return fmt.Errorf("evolution.percentile must be in [0, 1], got %v", c.Evolution.Percentile)
	}
	if c.World.MaxNodeEnergy <= 0 {
		return fmt.Errorf("world.max_node_energy must be positive, got %v", c.World.MaxNodeEnergy)
	}
	if c.World.InitialEnergy < 0 || c.World.InitialEnergy > c.World.MaxNodeEnergy {
		return fmt.Errorf("world.initial_energy must be in [0, %v], got %v", c.World.MaxNodeEnergy, c.World.InitialEnergy)
	}
	if c.World.DefaultNodeEnergy < 0 || c.World.DefaultNodeEnergy > c.World.MaxNodeEnergy {
		return fmt.Errorf("world.default_node_energy must be in [0, %v], got %v", c.World.MaxNodeEnergy, c.World.DefaultNodeEnergy)
	}
	if c.World.EdgeLength <= 0 {
		return fmt.Errorf("world.edge_length must be positive, got %v", c.World.EdgeLength)
	}
	if c.Food.MaxEnergy < c.Food.MinEnergy {
		return fmt.Errorf("food.max_energy (%v) below food.min_energy (%v)", c.Food.MaxEnergy, c.Food.MinEnergy)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after changing fields programmatically.
func (c *Config) ComputeDerived() {
	c.Derived.MinGrowthEnergy = c.World.DefaultNodeEnergy + c.World.GrowthCost

	pop := c.Evolution.PopulationSize
	numElite := int(float64(pop) * c.Evolution.EliteProportion)
	if numElite < 1 {
		numElite = 1
	}
	if numElite > pop {
		numElite = pop
	}
	numCrossed := int(float64(pop) * c.Evolution.CrossedProportion)
	if numCrossed > pop-numElite {
		numCrossed = pop - numElite
	}
	if numCrossed < 0 {
		numCrossed = 0
	}
	c.Derived.NumElite = numElite
	c.Derived.NumCrossed = numCrossed
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Neural.GrowthHidden = append([]int(nil), c.Neural.GrowthHidden...)
	clone.Neural.FlowHidden = append([]int(nil), c.Neural.FlowHidden...)
	return &clone
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
