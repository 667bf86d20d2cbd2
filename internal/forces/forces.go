package forces

import (
	"math"

	"github.com/san-kum/quarksim/internal/vec"
	"github.com/san-kum/quarksim/internal/world"
)

// Evaluate sums every contribution acting on particle i and writes the
// per-particle force accumulator. Pure read pass over particle and hadron
// state; the only write is w.Particles[i].Force, so one lane per particle
// needs no locking.
func Evaluate(w *world.World, p *Params, i int32) {
	pt := &w.Particles[i]
	acc := vec.Vec3{}

	for j := range w.Particles {
		if int32(j) == i {
			continue
		}
		acc = acc.Add(pairForce(pt, &w.Particles[j], p))
	}

	if pt.Flavor == world.Electron {
		acc = acc.Add(electronHadronForce(w, p, pt))
	}

	if pt.Flavor.IsQuark() {
		if ref := pt.BoundHadron.Load(); ref > 0 {
			if hd := w.HadronAt(ref); hd != nil && hd.Kind().IsNucleon() {
				res := residualNucleon(w, p, hd, ref-1)
				acc = acc.Add(res.Scale(1 / float64(hd.NumQuarks())))
			}
		}
	}

	pt.Force = acc
}

// pairForce returns the force on a from b. The scalar f runs along the
// unit vector from a toward b, positive meaning attraction. The summed
// vector is clamped per pair before accumulation.
func pairForce(a, b *world.Particle, p *Params) vec.Vec3 {
	d := b.Pos.Sub(a.Pos)
	r2 := d.Len2()
	if r2 < p.SofteningFloor*p.SofteningFloor {
		return vec.Vec3{}
	}
	r := math.Sqrt(r2)
	dir := d.Scale(1 / r)

	f := p.Gravity * a.Mass * b.Mass / r2

	if emCoupled(a, b) {
		f -= p.Coulomb * a.Charge * b.Charge / (r2 + p.CoulombSoft)
	}

	f += strongForce(a, b, r, r2, p)

	if a.Flavor != world.Carrier && b.Flavor != world.Carrier && r < 3*p.WeakRange {
		f += p.WeakStrength * math.Exp(-r/p.WeakRange) / r2
	}

	return dir.Scale(f).Clamped(p.MaxPairForce)
}

// emCoupled applies the shielding rules: bound quarks interact
// electromagnetically only within their own hadron (the parent hadron's net
// charge handles the rest), and electrons never couple to individual quarks.
func emCoupled(a, b *world.Particle) bool {
	qa, qb := a.Flavor.IsQuark(), b.Flavor.IsQuark()
	switch {
	case qa && qb:
		ba, bb := a.BoundHadron.Load(), b.BoundHadron.Load()
		if ba == 0 && bb == 0 {
			return true
		}
		return ba != 0 && ba == bb
	case qa && b.Flavor == world.Electron, qb && a.Flavor == world.Electron:
		return false
	default:
		return true
	}
}

func strongForce(a, b *world.Particle, r, r2 float64, p *Params) float64 {
	if !a.Flavor.IsQuark() || !b.Flavor.IsQuark() {
		return 0
	}
	ba, bb := a.BoundHadron.Load(), b.BoundHadron.Load()
	bothFree := ba == 0 && bb == 0
	sameHadron := ba != 0 && ba == bb
	if !bothFree && !sameHadron {
		return 0
	}

	if r < p.CoreRadius {
		return -p.CoreStrength / r2
	}

	rangeScale, boost := confinementScale(a, b, p)
	if r >= p.StrongRange*rangeScale {
		return 0
	}

	sign := -1.0
	if world.Compatible(a.Color, b.Color) {
		sign = 1.0
	}
	return sign * boost * (p.StrongA/r2 + p.StrongB)
}

// confinementScale widens and strengthens the strong force for unconfined
// quarks with compatible colors: full factors when both are free, half when
// only one is.
func confinementScale(a, b *world.Particle, p *Params) (float64, float64) {
	if !world.Compatible(a.Color, b.Color) {
		return 1, 1
	}
	fa, fb := a.BoundHadron.Load() == 0, b.BoundHadron.Load() == 0
	switch {
	case fa && fb:
		return p.ConfineRange, p.ConfineBoost
	case fa || fb:
		return 1 + (p.ConfineRange-1)/2, 1 + (p.ConfineBoost-1)/2
	default:
		return 1, 1
	}
}

// electronHadronForce couples an electron to every valid hadron as a point
// charge at its center, with a hard exclusion push inside the hadron's
// radius plus a buffer. The exclusion keeps electrons outside nuclei and
// produces shell-like orbits.
func electronHadronForce(w *world.World, p *Params, pt *world.Particle) vec.Vec3 {
	acc := vec.Vec3{}
	n := w.HadronsLive()
	for i := int32(0); i < n; i++ {
		hd := &w.Hadrons[i]
		if !hd.Valid() {
			continue
		}
		d := hd.Center.Sub(pt.Pos)
		r2 := d.Len2()
		if r2 < p.SofteningFloor*p.SofteningFloor {
			continue
		}
		r := math.Sqrt(r2)
		dir := d.Scale(1 / r)

		f := -p.Coulomb * pt.Charge * hd.NetCharge(w) / (r2 + p.CoulombSoft)

		if bound := hd.Radius + p.ElectronBuffer; r < bound {
			f -= p.ElectronExclusion * (bound - r)
		}

		acc = acc.Add(dir.Scale(f).Clamped(p.MaxPairForce))
	}
	return acc
}
