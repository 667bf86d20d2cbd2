// Package aggregate implements the four per-frame aggregation passes:
// hadron formation, hadron validation, nucleus formation and nucleus
// validation. Every pass runs one lane per arena slot with no blocking:
// exclusive ownership is taken through the world's claim words, any partial
// acquisition is rolled back in full, and a lane that loses a race simply
// gives up until the next frame.
package aggregate

import (
	"sort"

	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/vec"
	"github.com/san-kum/quarksim/internal/world"
)

// TryFormHadron is the formation lane for particle i. Only a free quark
// proceeds. The baryon path runs first; the meson path is attempted only if
// no baryon formed this frame.
func TryFormHadron(w *world.World, p *forces.Params, i int32) {
	pt := &w.Particles[i]
	if !pt.Flavor.IsQuark() || !pt.Free() {
		return
	}
	if tryFormBaryon(w, p, i) {
		return
	}
	tryFormMeson(w, p, i)
}

// nearestFreeQuark scans for the closest free quark of the wanted color
// within radius of particle i, or -1.
func nearestFreeQuark(w *world.World, i int32, want world.Color, radius float64) int32 {
	origin := w.Particles[i].Pos
	best := int32(-1)
	bestD2 := radius * radius

	for j := range w.Particles {
		if int32(j) == i {
			continue
		}
		q := &w.Particles[j]
		if !q.Flavor.IsQuark() || q.Color != want || !q.Free() {
			continue
		}
		d2 := vec.Dist2(origin, q.Pos)
		if d2 <= bestD2 {
			bestD2 = d2
			best = int32(j)
		}
	}
	return best
}

func tryFormBaryon(w *world.World, p *forces.Params, i int32) bool {
	pt := &w.Particles[i]
	c := pt.Color
	if c == world.ColorNone {
		return false
	}

	need1, need2 := c.Complements()
	c1 := nearestFreeQuark(w, i, need1, p.BindRadius)
	if c1 < 0 {
		return false
	}
	c2 := nearestFreeQuark(w, i, need2, p.BindRadius)
	if c2 < 0 {
		return false
	}
	// The two candidates must also sit within binding range of each other.
	if vec.Dist(w.Particles[c1].Pos, w.Particles[c2].Pos) > p.BindRadius {
		return false
	}
	if !world.Colorless3(c, w.Particles[c1].Color, w.Particles[c2].Color) {
		return false
	}

	ids := []int32{i, c1, c2}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	if !w.ParticleClaims.AcquireOrdered(ids) {
		return false
	}

	// Re-verify under lock: a concurrent winner may have claimed any of the
	// three between the scan and the acquisition.
	for _, id := range ids {
		if !w.Particles[id].Free() {
			w.ParticleClaims.ReleaseAll(ids)
			return false
		}
	}

	typ := classifyBaryon(w, i, c1, c2)
	slot := w.AllocHadron(typ)
	if slot < 0 {
		w.ParticleClaims.ReleaseAll(ids)
		return false
	}

	hd := &w.Hadrons[slot]
	hd.Quarks = [3]int32{i, c1, c2}
	hd.BoundNucleus.Store(0)
	refreshHadronGeometry(w, hd, p)

	ref := slot + 1
	w.Particles[i].BoundHadron.Store(ref)
	w.Particles[c1].BoundHadron.Store(ref)
	w.Particles[c2].BoundHadron.Store(ref)

	w.ParticleClaims.ReleaseAll(ids)
	return true
}

// tryFormMeson pairs a primary-colored quark with its matching anticolor.
// Only the primary side leads, so a candidate pair has exactly one
// initiating lane.
func tryFormMeson(w *world.World, p *forces.Params, i int32) bool {
	pt := &w.Particles[i]
	if !pt.Color.IsPrimary() {
		return false
	}

	j := nearestFreeQuark(w, i, pt.Color.Anti(), p.BindRadius)
	if j < 0 {
		return false
	}

	ids := []int32{i, j}
	if ids[0] > ids[1] {
		ids[0], ids[1] = ids[1], ids[0]
	}
	if !w.ParticleClaims.AcquireOrdered(ids) {
		return false
	}
	for _, id := range ids {
		if !w.Particles[id].Free() {
			w.ParticleClaims.ReleaseAll(ids)
			return false
		}
	}

	slot := w.AllocHadron(world.Meson)
	if slot < 0 {
		w.ParticleClaims.ReleaseAll(ids)
		return false
	}

	hd := &w.Hadrons[slot]
	hd.Quarks = [3]int32{i, j, world.NoQuark}
	hd.BoundNucleus.Store(0)
	refreshHadronGeometry(w, hd, p)

	ref := slot + 1
	w.Particles[i].BoundHadron.Store(ref)
	w.Particles[j].BoundHadron.Store(ref)

	w.ParticleClaims.ReleaseAll(ids)
	return true
}

// classifyBaryon counts up/down flavors: 2u+1d is a proton, 1u+2d a
// neutron, anything else an exotic baryon.
func classifyBaryon(w *world.World, a, b, c int32) world.HadronType {
	ups := 0
	for _, id := range [3]int32{a, b, c} {
		if w.Particles[id].Flavor == world.Up {
			ups++
		}
	}
	switch ups {
	case 2:
		return world.Proton
	case 1:
		return world.Neutron
	default:
		return world.OtherBaryon
	}
}

// refreshHadronGeometry recomputes the mass-weighted center, mean velocity
// and bounding radius from the constituents and writes them back.
func refreshHadronGeometry(w *world.World, hd *world.Hadron, p *forces.Params) {
	n := hd.NumQuarks()

	center := vec.Vec3{}
	velSum := vec.Vec3{}
	mass := 0.0
	for k := 0; k < n; k++ {
		q := &w.Particles[hd.Quarks[k]]
		center = center.Add(q.Pos.Scale(q.Mass))
		velSum = velSum.Add(q.Vel)
		mass += q.Mass
	}
	center = center.Scale(1 / mass)

	radius := 0.0
	for k := 0; k < n; k++ {
		q := &w.Particles[hd.Quarks[k]]
		if d := vec.Dist(center, q.Pos) + q.Radius; d > radius {
			radius = d
		}
	}

	hd.Center = center
	hd.Vel = velSum.Scale(1 / float64(n))
	hd.Radius = radius + p.HadronPadding
}
