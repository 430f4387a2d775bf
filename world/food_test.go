package world

import (
	"math"
	"testing"
)

func TestFoodRemovedAfterOneFeeding(t *testing.T) {
	cfg := testConfig()
	w := emptyWorld(t, cfg, alwaysGrow(t, cfg))
	w.addFood(0, 0, cfg.Food.AbsorbRate, 1)
	n := w.addNode(0, 0, 5)
	w.linkFood(n)

	w.updateFood()

	if w.FoodCount() != 0 {
		t.Fatalf("food count = %d, want 0", w.FoodCount())
	}
	node, _ := w.Node(n)
	if node.HasFood {
		t.Error("node still linked to removed food")
	}
	if math.Abs(node.Energy-(5+cfg.Food.AbsorbRate)) > 1e-12 {
		t.Errorf("node energy = %v, want %v", node.Energy, 5+cfg.Food.AbsorbRate)
	}
	if w.FoodConsumed() != cfg.Food.AbsorbRate {
		t.Errorf("FoodConsumed = %v, want %v", w.FoodConsumed(), cfg.Food.AbsorbRate)
	}
}

func TestFoodFeedsOneNodePerStep(t *testing.T) {
	cfg := testConfig()
	w := emptyWorld(t, cfg, alwaysGrow(t, cfg))
	w.addFood(0, 0, 100, 10)
	full := w.addNode(1, 0, cfg.World.MaxNodeEnergy)
	first := w.addNode(0, 1, 5)
	second := w.addNode(-1, 0, 5)
	for _, n := range w.Nodes() {
		w.linkFood(n)
	}

	w.updateFood()

	fullNode, _ := w.Node(full)
	firstNode, _ := w.Node(first)
	secondNode, _ := w.Node(second)
	if fullNode.Energy != cfg.World.MaxNodeEnergy {
		t.Errorf("full node energy = %v", fullNode.Energy)
	}
	if math.Abs(firstNode.Energy-(5+cfg.Food.AbsorbRate)) > 1e-12 {
		t.Errorf("first eligible node energy = %v, want %v", firstNode.Energy, 5+cfg.Food.AbsorbRate)
	}
	if secondNode.Energy != 5 {
		t.Errorf("second node fed in the same step: %v", secondNode.Energy)
	}
	if got := w.FoodEnergy(); math.Abs(got-(100-cfg.Food.AbsorbRate)) > 1e-12 {
		t.Errorf("food energy = %v", got)
	}
}

func TestFeedingCapsNodeEnergy(t *testing.T) {
	cfg := testConfig()
	w := emptyWorld(t, cfg, alwaysGrow(t, cfg))
	w.addFood(0, 0, 100, 10)
	n := w.addNode(0, 0, cfg.World.MaxNodeEnergy-0.04)
	w.linkFood(n)

	w.updateFood()

	node, _ := w.Node(n)
	if node.Energy != cfg.World.MaxNodeEnergy {
		t.Errorf("node energy = %v, want cap %v", node.Energy, cfg.World.MaxNodeEnergy)
	}
	if s := w.Stats(); math.Abs(s.Spilled-(cfg.Food.AbsorbRate-0.04)) > 1e-9 {
		t.Errorf("Spilled = %v, want %v", s.Spilled, cfg.Food.AbsorbRate-0.04)
	}
}

func TestNodeOutsideFoodNotLinked(t *testing.T) {
	cfg := testConfig()
	w := emptyWorld(t, cfg, alwaysGrow(t, cfg))
	w.addFood(0, 0, 100, 2)
	n := w.addNode(5, 5, 1)
	w.linkFood(n)

	if node, _ := w.Node(n); node.HasFood {
		t.Error("node outside radius linked to food")
	}
}
