package neural

import "math"

// GrowthInput is the per-node feature set seen by the growth network.
type GrowthInput struct {
	InEdges      int
	OutEdges     int
	AvgInFlow    float64
	AvgOutFlow   float64
	AvgInAngle   float64
	AvgOutAngle  float64
	Energy       float64 // normalized to [0, 1]
	TouchingFood bool
	History      []int // oldest first, at most SignalHistoryLen entries
}

// Vector encodes the input in network order. The history window is
// normalized by NumSignals and zero-padded.
func (in GrowthInput) Vector() []float64 {
	v := make([]float64, GrowthInputs)
	v[0] = float64(in.InEdges)
	v[1] = float64(in.OutEdges)
	v[2] = in.AvgInFlow
	v[3] = in.AvgOutFlow
	v[4] = in.AvgInAngle
	v[5] = in.AvgOutAngle
	v[6] = in.Energy
	if in.TouchingFood {
		v[7] = 1
	}
	for i := 0; i < SignalHistoryLen && i < len(in.History); i++ {
		v[8+i] = float64(in.History[i]) / NumSignals
	}
	return v
}

// GrowthDecision is the decoded growth network output.
type GrowthDecision struct {
	Probability   float64 // [0, 1]
	Angle         float64 // [0, 2π)
	AngleVariance float64 // [0, π]
	Signal        int     // [0, NumSignals)
}

// GrowthDecisionNet decides whether and where a node grows.
type GrowthDecisionNet struct {
	nn   *FNN
	Last GrowthDecision
}

// NewGrowthDecisionNet reads the growth block of g.
func NewGrowthDecisionNet(g *Genome) *GrowthDecisionNet {
	return &GrowthDecisionNet{nn: g.GrowthNet()}
}

// Decide runs the growth network on a node's features.
func (d *GrowthDecisionNet) Decide(in GrowthInput) GrowthDecision {
	out := d.nn.Forward(in.Vector())

	signal := int(out[3] * NumSignals)
	if signal >= NumSignals {
		signal = NumSignals - 1
	}
	if signal < 0 {
		signal = 0
	}

	d.Last = GrowthDecision{
		Probability:   unit(out[0]),
		Angle:         wrapAngle(out[1] * 2 * math.Pi),
		AngleVariance: unit(out[2]) * math.Pi,
		Signal:        signal,
	}
	return d.Last
}

// unit clamps x to [0, 1]. Non-sigmoid output layers can leave that range.
func unit(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	return math.Min(x, 1)
}

// wrapAngle maps a into [0, 2π).
func wrapAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		return 0
	}
	return a
}

// FlowInput is the per-edge feature set seen by the flow network.
type FlowInput struct {
	FlowRate       float64
	UpstreamFlow   float64 // net signed flow at the From node
	DownstreamFlow float64 // net signed flow at the To node
	Signal         int     // From node's broadcast signal
}

// Vector encodes the input in network order.
func (in FlowInput) Vector() []float64 {
	return []float64{
		in.FlowRate,
		in.UpstreamFlow,
		in.DownstreamFlow,
		float64(in.Signal) / NumSignals,
	}
}

// FlowDecision is the decoded flow network output.
type FlowDecision struct {
	Increase float64 // [0, 1]
	Decrease float64 // [0, 1]
}

// FlowDecisionNet decides whether an edge's flow rate changes.
type FlowDecisionNet struct {
	nn   *FNN
	Last FlowDecision
}

// NewFlowDecisionNet reads the flow block of g.
func NewFlowDecisionNet(g *Genome) *FlowDecisionNet {
	return &FlowDecisionNet{nn: g.FlowNet()}
}

// Decide runs the flow network on an edge's features.
func (d *FlowDecisionNet) Decide(in FlowInput) FlowDecision {
	out := d.nn.Forward(in.Vector())
	d.Last = FlowDecision{Increase: unit(out[0]), Decrease: unit(out[1])}
	return d.Last
}
