// Package evolution runs the genetic algorithm over growth network genomes:
// multi-trial evaluation, ranking, elitism, crossover and mutation.
package evolution

import (
	"fmt"
	"sort"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/neural"
	"github.com/pthm-cable/physarum/rng"
	"github.com/pthm-cable/physarum/world"
)

// Organism is one genome together with the world it is evaluated in.
type Organism struct {
	Genome  *neural.Genome
	Fitness float64   // aggregated over Trials
	Trials  []float64 // per-trial fitness of the last evaluation
	Elite   bool      // copied unchanged from the previous generation

	world *world.World
}

// World returns the organism's world as left by its last trial.
func (o *Organism) World() *world.World { return o.world }

// Population is the set of organisms of the current generation.
type Population struct {
	cfg       *config.Config
	arch      neural.Architecture
	agg       Aggregator
	crossover Crossover
	rng       *rng.Source

	Organisms  []*Organism
	Generation int
}

// NewPopulation creates PopulationSize organisms with random genomes, each
// with a fresh world.
func NewPopulation(cfg *config.Config, r *rng.Source) (*Population, error) {
	arch, err := neural.NewArchitecture(cfg.Neural)
	if err != nil {
		return nil, fmt.Errorf("building architecture: %w", err)
	}
	kind, err := ParseAggregation(cfg.Evolution.Aggregation)
	if err != nil {
		return nil, err
	}
	crossover, err := ParseCrossover(cfg.Evolution.Crossover)
	if err != nil {
		return nil, err
	}

	p := &Population{
		cfg:       cfg,
		arch:      arch,
		agg:       Aggregator{Kind: kind, P: cfg.Evolution.Percentile},
		crossover: crossover,
		rng:       r,
	}
	p.Organisms = make([]*Organism, cfg.Evolution.PopulationSize)
	for i := range p.Organisms {
		p.Organisms[i] = p.newOrganism(neural.NewGenome(arch, r), false)
	}
	return p, nil
}

// Seed replaces the genomes of the first organisms, for resuming from a
// saved record.
func (p *Population) Seed(genomes ...*neural.Genome) {
	for i, g := range genomes {
		if i >= len(p.Organisms) {
			return
		}
		p.Organisms[i] = p.newOrganism(g, false)
	}
}

func (p *Population) newOrganism(g *neural.Genome, elite bool) *Organism {
	return &Organism{
		Genome: g,
		Elite:  elite,
		world:  world.New(p.cfg, g, p.rng.Split()),
	}
}

// Architecture returns the network layout shared by every genome.
func (p *Population) Architecture() neural.Architecture { return p.arch }

// Sort orders organisms by descending fitness. Ties keep their order.
func (p *Population) Sort() {
	sort.SliceStable(p.Organisms, func(i, j int) bool {
		return p.Organisms[i].Fitness > p.Organisms[j].Fitness
	})
}

// Best returns the first organism. Call after Sort.
func (p *Population) Best() *Organism { return p.Organisms[0] }

// Fitness returns the aggregated fitness of every organism in current order.
func (p *Population) Fitness() []float64 {
	out := make([]float64, len(p.Organisms))
	for i, o := range p.Organisms {
		out[i] = o.Fitness
	}
	return out
}
