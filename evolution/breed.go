package evolution

import (
	"fmt"

	"github.com/pthm-cable/physarum/neural"
	"github.com/pthm-cable/physarum/rng"
)

// Crossover selects how two parent genomes are recombined.
type Crossover uint8

const (
	// CrossoverBlend interpolates parents with one weight per network block.
	CrossoverBlend Crossover = iota
	// CrossoverSinglePoint takes a prefix of one parent and the rest of the other.
	CrossoverSinglePoint
)

// ParseCrossover maps a config name to a Crossover.
func ParseCrossover(name string) (Crossover, error) {
	switch name {
	case "blend":
		return CrossoverBlend, nil
	case "single_point":
		return CrossoverSinglePoint, nil
	}
	return 0, fmt.Errorf("unknown crossover %q", name)
}

// Cross recombines a and b into a new genome.
func (c Crossover) Cross(a, b *neural.Genome, r *rng.Source) *neural.Genome {
	if c == CrossoverSinglePoint {
		return SinglePointCrossover(a, b, r)
	}
	return BlendCrossover(a, b, r)
}

// BlendCrossover returns t*a + (1-t)*b, with t drawn once per block.
func BlendCrossover(a, b *neural.Genome, r *rng.Source) *neural.Genome {
	child := a.Clone()
	for _, block := range []neural.Block{neural.GrowthBlock, neural.FlowBlock} {
		pa := a.FlattenBlock(block)
		pb := b.FlattenBlock(block)
		t := r.Float64()
		for i := range pa {
			pa[i] = t*pa[i] + (1-t)*pb[i]
		}
		// Both parents share the architecture, so the length always matches.
		if err := child.LoadBlock(block, pa); err != nil {
			panic(err)
		}
	}
	return child
}

// SinglePointCrossover copies a's flattened parameters up to a random cut and
// b's after it.
func SinglePointCrossover(a, b *neural.Genome, r *rng.Source) *neural.Genome {
	pa := a.Flatten()
	pb := b.Flatten()
	cut := r.Intn(len(pa) + 1)
	copy(pa[cut:], pb[cut:])
	child := a.Clone()
	if err := child.Load(pa); err != nil {
		panic(err)
	}
	return child
}

// NextGeneration replaces the sorted population with its offspring: elites
// cloned unchanged, crossed children of two random elites, and mutated clones
// of random elites for the remaining slots. Every offspring gets a new world.
func (p *Population) NextGeneration() {
	n := len(p.Organisms)
	numElite := min(p.cfg.Derived.NumElite, n)
	numCrossed := p.cfg.Derived.NumCrossed
	rate := p.cfg.Evolution.MutationRate
	strength := p.cfg.Evolution.MutationStrength

	elites := p.Organisms[:numElite]
	next := make([]*Organism, 0, n)
	for _, o := range elites {
		next = append(next, p.newOrganism(o.Genome.Clone(), true))
	}
	for i := 0; i < numCrossed && len(next) < n; i++ {
		a := elites[p.rng.Intn(numElite)].Genome
		b := elites[p.rng.Intn(numElite)].Genome
		child := p.crossover.Cross(a, b, p.rng)
		child.Mutate(p.rng, rate, strength)
		next = append(next, p.newOrganism(child, false))
	}
	for len(next) < n {
		child := elites[p.rng.Intn(numElite)].Genome.Clone()
		child.Mutate(p.rng, rate, strength)
		next = append(next, p.newOrganism(child, false))
	}

	p.Organisms = next
	p.Generation++
}
