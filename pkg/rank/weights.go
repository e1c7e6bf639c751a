package rank

import "sync/atomic"

// Axis1Weights weight the topical/content axis sub-metrics.
type Axis1Weights struct {
	Context float64 `json:"context" yaml:"context"`
	Content float64 `json:"content" yaml:"content"`
	Chain   float64 `json:"chain" yaml:"chain"`
}

// Axis2Weights weight the trust/freshness axis sub-metrics.
type Axis2Weights struct {
	Depth       float64 `json:"depth" yaml:"depth"`
	Information float64 `json:"information" yaml:"information"`
	Accuracy    float64 `json:"accuracy" yaml:"accuracy"`
}

// AxisSplit divides the overall score between the two axes.
type AxisSplit struct {
	Axis1 float64 `json:"axis1" yaml:"axis1"`
	Axis2 float64 `json:"axis2" yaml:"axis2"`
}

// ExtraWeights weight the capped raw-volume bonuses.
type ExtraWeights struct {
	PostCount     float64 `json:"post_count" yaml:"post_count"`
	NeighborCount float64 `json:"neighbor_count" yaml:"neighbor_count"`
	VisitorCount  float64 `json:"visitor_count" yaml:"visitor_count"`
}

// WeightSet is one immutable snapshot of all tunable engine weights. The
// background trainer produces new sets; running computations never see a
// partially updated one.
type WeightSet struct {
	Axis1 Axis1Weights `json:"axis1_subweights" yaml:"axis1_subweights"`
	Axis2 Axis2Weights `json:"axis2_subweights" yaml:"axis2_subweights"`
	Split AxisSplit    `json:"axis_weights" yaml:"axis_weights"`
	Extra ExtraWeights `json:"extra_factor_weights" yaml:"extra_factor_weights"`
}

// DefaultWeights returns the documented default weight set.
func DefaultWeights() *WeightSet {
	return &WeightSet{
		Axis1: Axis1Weights{Context: 0.35, Content: 0.40, Chain: 0.25},
		Axis2: Axis2Weights{Depth: 0.33, Information: 0.34, Accuracy: 0.33},
		Split: AxisSplit{Axis1: 0.5, Axis2: 0.5},
		Extra: ExtraWeights{PostCount: 0.35, NeighborCount: 0.35, VisitorCount: 0.30},
	}
}

// valid reports whether each weight group sums close enough to 1.0 to use.
func (w *WeightSet) valid() bool {
	const eps = 1e-3
	near := func(sum float64) bool { return sum > 1-eps && sum < 1+eps }
	return near(w.Axis1.Context+w.Axis1.Content+w.Axis1.Chain) &&
		near(w.Axis2.Depth+w.Axis2.Information+w.Axis2.Accuracy) &&
		near(w.Split.Axis1+w.Split.Axis2)
}

// WeightProvider hands the engine one weight snapshot per computation.
// Implementations must return a set that is never mutated afterwards.
type WeightProvider interface {
	Weights() *WeightSet
}

// StaticWeights is a WeightProvider around a fixed set.
type StaticWeights struct {
	set *WeightSet
}

// NewStaticWeights wraps ws; nil falls back to the defaults.
func NewStaticWeights(ws *WeightSet) *StaticWeights {
	if ws == nil || !ws.valid() {
		ws = DefaultWeights()
	}
	return &StaticWeights{set: ws}
}

func (s *StaticWeights) Weights() *WeightSet { return s.set }

// SwappableWeights is a WeightProvider whose set an external trainer can
// replace wholesale while analyses run. Readers take one reference at call
// start; the swap is a single atomic pointer store, so no computation ever
// observes a torn set.
type SwappableWeights struct {
	ptr atomic.Pointer[WeightSet]
}

// NewSwappableWeights starts from ws (defaults when nil or invalid).
func NewSwappableWeights(ws *WeightSet) *SwappableWeights {
	s := &SwappableWeights{}
	s.Swap(ws)
	return s
}

// Swap installs a new trained set. Invalid or nil sets are replaced by the
// defaults rather than rejected: the engine must keep answering.
func (s *SwappableWeights) Swap(ws *WeightSet) {
	if ws == nil || !ws.valid() {
		ws = DefaultWeights()
	}
	cp := *ws
	s.ptr.Store(&cp)
}

func (s *SwappableWeights) Weights() *WeightSet { return s.ptr.Load() }

// snapshot resolves a provider to a usable set, tolerating nil providers
// and nil results so scoring can never fail on configuration.
func snapshot(p WeightProvider) *WeightSet {
	if p == nil {
		return DefaultWeights()
	}
	ws := p.Weights()
	if ws == nil || !ws.valid() {
		return DefaultWeights()
	}
	return ws
}
