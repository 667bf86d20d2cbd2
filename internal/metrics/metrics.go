// Package metrics provides run-level aggregations over per-frame world
// summaries. Each metric satisfies engine.Metric.
package metrics

import (
	"github.com/san-kum/quarksim/internal/engine"
	"github.com/san-kum/quarksim/internal/world"
)

// BoundFraction averages the fraction of quarks bound into hadrons across
// the run.
type BoundFraction struct {
	name    string
	sum     float64
	samples int
}

func NewBoundFraction() *BoundFraction {
	return &BoundFraction{name: "bound_fraction"}
}

func (b *BoundFraction) Name() string { return b.name }

func (b *BoundFraction) Observe(s world.FrameStats) {
	b.sum += s.BoundFraction
	b.samples++
}

func (b *BoundFraction) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.sum / float64(b.samples)
}

func (b *BoundFraction) Reset() {
	b.sum = 0
	b.samples = 0
}

// KineticEnergy averages the total kinetic energy across the run.
type KineticEnergy struct {
	name    string
	sum     float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(s world.FrameStats) {
	k.sum += s.Kinetic
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.sum / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.sum = 0
	k.samples = 0
}

// PeakNucleusSize tracks the largest nucleon count seen in any nucleus.
type PeakNucleusSize struct {
	name string
	max  int
}

func NewPeakNucleusSize() *PeakNucleusSize {
	return &PeakNucleusSize{name: "peak_nucleus_size"}
}

func (p *PeakNucleusSize) Name() string { return p.name }

func (p *PeakNucleusSize) Observe(s world.FrameStats) {
	if s.MaxNucleus > p.max {
		p.max = s.MaxNucleus
	}
}

func (p *PeakNucleusSize) Value() float64 { return float64(p.max) }

func (p *PeakNucleusSize) Reset() { p.max = 0 }

// FinalCensus reports a composite count from the last observed frame.
type FinalCensus struct {
	name   string
	pick   func(world.FrameStats) int
	latest int
}

func NewFinalHadrons() *FinalCensus {
	return &FinalCensus{name: "final_hadrons", pick: func(s world.FrameStats) int { return s.Hadrons }}
}

func NewFinalNuclei() *FinalCensus {
	return &FinalCensus{name: "final_nuclei", pick: func(s world.FrameStats) int { return s.Nuclei }}
}

func NewFinalMesons() *FinalCensus {
	return &FinalCensus{name: "final_mesons", pick: func(s world.FrameStats) int { return s.Mesons }}
}

func (f *FinalCensus) Name() string { return f.name }

func (f *FinalCensus) Observe(s world.FrameStats) { f.latest = f.pick(s) }

func (f *FinalCensus) Value() float64 { return float64(f.latest) }

func (f *FinalCensus) Reset() { f.latest = 0 }

// Standard returns the default metric set attached to every recorded run.
func Standard() []engine.Metric {
	return []engine.Metric{
		NewBoundFraction(),
		NewKineticEnergy(),
		NewPeakNucleusSize(),
		NewFinalHadrons(),
		NewFinalNuclei(),
		NewFinalMesons(),
	}
}
