package aggregate

import (
	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/vec"
	"github.com/san-kum/quarksim/internal/world"
)

// TryFormNucleus is the formation lane for hadron slot h. Only a valid,
// unbound proton seeds: requiring the seeding subtype guarantees every
// nucleus contains at least one proton.
func TryFormNucleus(w *world.World, p *forces.Params, h int32) {
	hd := &w.Hadrons[h]
	if hd.Kind() != world.Proton || !hd.Free() {
		return
	}

	// Deterministic seeding: if any lower-indexed unbound proton sits within
	// binding range, this lane yields to it. At most one seed per spatial
	// cluster per frame.
	for j := int32(0); j < h; j++ {
		o := &w.Hadrons[j]
		if o.Kind() == world.Proton && o.Free() &&
			vec.Dist(o.Center, hd.Center) <= p.NucleusBindRadius {
			return
		}
	}

	// Collect every nearby unbound nucleon, self included, ascending index.
	members := make([]int32, 0, world.MaxNucleons)
	live := w.HadronsLive()
	for j := int32(0); j < live && len(members) < world.MaxNucleons; j++ {
		o := &w.Hadrons[j]
		if !o.Kind().IsNucleon() || !o.Free() {
			continue
		}
		if j != h && vec.Dist(o.Center, hd.Center) > p.NucleusBindRadius {
			continue
		}
		members = append(members, j)
	}

	if !w.HadronClaims.AcquireOrdered(members) {
		fallbackSingle(w, p, h)
		return
	}

	for _, m := range members {
		o := &w.Hadrons[m]
		if !o.Kind().IsNucleon() || !o.Free() {
			w.HadronClaims.ReleaseAll(members)
			fallbackSingle(w, p, h)
			return
		}
	}

	// Winner determinism: the lowest-indexed proton in the locked group
	// performs the creation. A losing lane releases everything and lets the
	// winner's own invocation (this frame or the next) do the write.
	winner := int32(-1)
	for _, m := range members {
		if w.Hadrons[m].Kind() == world.Proton {
			winner = m
			break
		}
	}
	if winner != h {
		w.HadronClaims.ReleaseAll(members)
		return
	}

	var protons, neutrons int32
	for _, m := range members {
		if w.Hadrons[m].Kind() == world.Proton {
			protons++
		} else {
			neutrons++
		}
	}

	slot := w.AllocNucleus(protons)
	if slot < 0 {
		w.HadronClaims.ReleaseAll(members)
		return
	}

	nc := &w.Nuclei[slot]
	writeNucleus(w, nc, members, protons, neutrons, p)
	for _, m := range members {
		w.Hadrons[m].BoundNucleus.Store(slot + 1)
	}

	w.HadronClaims.ReleaseAll(members)
}

// fallbackSingle turns an isolated or contended seed into a trivial
// one-hadron nucleus, best effort, so it still renders as a shell instead
// of being silently dropped.
func fallbackSingle(w *world.World, p *forces.Params, h int32) {
	if !w.HadronClaims.TryAcquire(h) {
		return
	}
	hd := &w.Hadrons[h]
	if hd.Kind() != world.Proton || !hd.Free() {
		w.HadronClaims.Release(h)
		return
	}

	slot := w.AllocNucleus(1)
	if slot < 0 {
		w.HadronClaims.Release(h)
		return
	}

	nc := &w.Nuclei[slot]
	writeNucleus(w, nc, []int32{h}, 1, 0, p)
	hd.BoundNucleus.Store(slot + 1)

	w.HadronClaims.Release(h)
}

// writeNucleus fills a freshly allocated or revalidated record. The type
// word (the proton count) is stored by the allocator or the caller; here we
// keep it in sync for the revalidation path.
func writeNucleus(w *world.World, nc *world.Nucleus, members []int32, protons, neutrons int32, p *forces.Params) {
	for k := range nc.Members {
		if k < len(members) {
			nc.Members[k] = members[k]
		} else {
			nc.Members[k] = -1
		}
	}
	nc.Protons = protons
	nc.Neutrons = neutrons
	nc.Count.Store(int32(len(members)))
	nc.Type.Store(protons)
	refreshNucleusGeometry(w, nc, members, p)
}

// refreshNucleusGeometry derives the aggregate center, mean velocity and
// bounding radius from the member hadrons.
func refreshNucleusGeometry(w *world.World, nc *world.Nucleus, members []int32, p *forces.Params) {
	if len(members) == 0 {
		return
	}
	center := vec.Vec3{}
	velSum := vec.Vec3{}
	for _, m := range members {
		center = center.Add(w.Hadrons[m].Center)
		velSum = velSum.Add(w.Hadrons[m].Vel)
	}
	inv := 1 / float64(len(members))
	center = center.Scale(inv)

	radius := 0.0
	for _, m := range members {
		if d := vec.Dist(center, w.Hadrons[m].Center) + w.Hadrons[m].Radius; d > radius {
			radius = d
		}
	}

	nc.Center = center
	nc.Vel = velSum.Scale(inv)
	nc.Radius = radius + p.HadronPadding
}
