package forces

import (
	"math"

	"github.com/san-kum/quarksim/internal/vec"
	"github.com/san-kum/quarksim/internal/world"
)

// NucleonPair returns the residual force on nucleon a from nucleon b:
// a hard-sphere exclusion growing quadratically with overlap, and inside a
// wider contact radius a Yukawa attraction plus closing-velocity damping.
// The attraction ramps to zero at the exclusion boundary so contact stays
// stable.
func NucleonPair(a, b *world.Hadron, p *Params) vec.Vec3 {
	d := b.Center.Sub(a.Center)
	r2 := d.Len2()
	if r2 < p.SofteningFloor*p.SofteningFloor {
		return vec.Vec3{}
	}
	r := math.Sqrt(r2)
	dir := d.Scale(1 / r)

	rs := a.Radius + b.Radius
	rExcl := p.NucleonExclusion * rs
	rWide := p.NucleonContact * rs

	f := 0.0
	if r < rExcl {
		ov := rExcl - r
		f -= p.NucleonExclusionK * ov * ov
	}
	if r < rWide {
		ramp := (r - rExcl) / (rWide - rExcl)
		if ramp < 0 {
			ramp = 0
		} else if ramp > 1 {
			ramp = 1
		}
		f += p.NucleonAttraction * math.Exp(-r/p.NucleonYukawaRange) / r2 * ramp

		vrel := b.Vel.Sub(a.Vel)
		f += p.NucleonDamping * vrel.Dot(dir)
	}

	return dir.Scale(f).Clamped(p.MaxPairForce)
}

// residualNucleon sums the nucleon-pair force of hadron hd (slot self)
// against every other valid nucleon hadron. The caller divides the result
// evenly among hd's constituents.
func residualNucleon(w *world.World, p *Params, hd *world.Hadron, self int32) vec.Vec3 {
	acc := vec.Vec3{}
	n := w.HadronsLive()
	for i := int32(0); i < n; i++ {
		if i == self {
			continue
		}
		other := &w.Hadrons[i]
		if !other.Kind().IsNucleon() {
			continue
		}
		acc = acc.Add(NucleonPair(hd, other, p))
	}
	return acc
}
