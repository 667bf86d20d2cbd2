package aggregate

import (
	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/vec"
	"github.com/san-kum/quarksim/internal/world"
)

// ValidateNucleus is the validation lane for nucleus slot n. Membership
// may have changed since last frame, so the lane first re-derives a
// representative member (the first one still claiming this nucleus) and
// uses that hadron's claim word as the record lock. Everything else is
// try-lock: a contended absorption or merge target is simply skipped until
// next frame.
func ValidateNucleus(w *world.World, p *forces.Params, n int32) {
	nc := &w.Nuclei[n]
	if !nc.Valid() {
		return
	}
	ref := n + 1

	count := int(nc.Count.Load())
	if count > world.MaxNucleons {
		count = world.MaxNucleons
	}

	rep := int32(-1)
	for k := 0; k < count; k++ {
		m := nc.Members[k]
		if m >= 0 && m < w.HadronsLive() && w.Hadrons[m].BoundNucleus.Load() == ref {
			rep = m
			break
		}
	}
	if rep < 0 {
		// Nobody claims us anymore; empty shell.
		nc.Count.Store(0)
		nc.Type.Store(0)
		return
	}

	if !w.HadronClaims.TryAcquire(rep) {
		return // contended, retry next frame
	}
	defer w.HadronClaims.Release(rep)

	// A merge may have rehomed the representative between the scan and the
	// acquisition; if so this record is stale and its own pass is done.
	if w.Hadrons[rep].BoundNucleus.Load() != ref || !nc.Valid() {
		return
	}

	// Compact: keep members that are still valid nucleons claiming this
	// nucleus. A claimant that is no longer a nucleon gets its back
	// reference cleared so the slot can be rebound.
	kept := make([]int32, 0, world.MaxNucleons)
	var protons, neutrons int32
	for k := 0; k < count; k++ {
		m := nc.Members[k]
		if m < 0 || m >= w.HadronsLive() {
			continue
		}
		hd := &w.Hadrons[m]
		if hd.BoundNucleus.Load() != ref {
			continue
		}
		if !hd.Kind().IsNucleon() {
			hd.BoundNucleus.Store(0)
			continue
		}
		kept = append(kept, m)
		if hd.Kind() == world.Proton {
			protons++
		} else {
			neutrons++
		}
	}

	if protons == 0 {
		dissolve(w, nc, kept, ref)
		return
	}

	// (a) Absorb nearby unbound nucleons within the attach radius, each
	// individually claimed and re-checked before joining.
	live := w.HadronsLive()
	for j := int32(0); j < live && len(kept) < world.MaxNucleons; j++ {
		hd := &w.Hadrons[j]
		if !hd.Kind().IsNucleon() || !hd.Free() || j == rep {
			continue
		}
		if vec.Dist(hd.Center, nc.Center) > p.NucleusAttachRadius {
			continue
		}
		if !w.HadronClaims.TryAcquire(j) {
			continue
		}
		if hd.Kind().IsNucleon() && hd.Free() {
			hd.BoundNucleus.Store(ref)
			kept = append(kept, j)
			if hd.Kind() == world.Proton {
				protons++
			} else {
				neutrons++
			}
		}
		w.HadronClaims.Release(j)
	}

	// (b) Merge every overlapping higher-indexed nucleus that fits.
	nuclei := w.NucleiLive()
	for o := n + 1; o < nuclei; o++ {
		kept, protons, neutrons = tryMerge(w, p, nc, ref, o, kept, protons, neutrons)
	}

	// (c) Hysteresis breakup: the dissolution threshold sits outside the
	// formation radius so a nucleus at the boundary does not flicker.
	refreshNucleusGeometry(w, nc, kept, p)
	for _, m := range kept {
		if vec.Dist(w.Hadrons[m].Center, nc.Center) > p.NucleusBreakRadius {
			dissolve(w, nc, kept, ref)
			return
		}
	}

	// (d) Write back the refreshed record.
	writeNucleus(w, nc, kept, protons, neutrons, p)
}

// tryMerge transfers the whole membership of nucleus o into nc when their
// centers overlap and the union fits. The loser is locked through one of
// its own representative members, then invalidated.
func tryMerge(w *world.World, p *forces.Params, nc *world.Nucleus, ref, o int32,
	kept []int32, protons, neutrons int32) ([]int32, int32, int32) {

	other := &w.Nuclei[o]
	if !other.Valid() {
		return kept, protons, neutrons
	}
	if vec.Dist(other.Center, nc.Center) > p.NucleusMergeRadius {
		return kept, protons, neutrons
	}

	ocount := int(other.Count.Load())
	if ocount > world.MaxNucleons {
		ocount = world.MaxNucleons
	}
	if len(kept)+ocount > world.MaxNucleons {
		return kept, protons, neutrons
	}

	oref := o + 1
	orep := int32(-1)
	for k := 0; k < ocount; k++ {
		m := other.Members[k]
		if m >= 0 && m < w.HadronsLive() && w.Hadrons[m].BoundNucleus.Load() == oref {
			orep = m
			break
		}
	}
	if orep < 0 {
		return kept, protons, neutrons
	}
	if !w.HadronClaims.TryAcquire(orep) {
		return kept, protons, neutrons
	}
	defer w.HadronClaims.Release(orep)

	// Re-verify under the loser's lock before touching anything.
	if !other.Valid() || w.Hadrons[orep].BoundNucleus.Load() != oref {
		return kept, protons, neutrons
	}

	for k := 0; k < ocount && len(kept) < world.MaxNucleons; k++ {
		m := other.Members[k]
		if m < 0 || m >= w.HadronsLive() {
			continue
		}
		hd := &w.Hadrons[m]
		if hd.BoundNucleus.Load() != oref {
			continue
		}
		if !hd.Kind().IsNucleon() {
			hd.BoundNucleus.CompareAndSwap(oref, 0)
			continue
		}
		hd.BoundNucleus.Store(ref)
		kept = append(kept, m)
		if hd.Kind() == world.Proton {
			protons++
		} else {
			neutrons++
		}
	}

	other.Count.Store(0)
	other.Type.Store(0)
	return kept, protons, neutrons
}

// dissolve clears every member's back-reference and retires the slot.
func dissolve(w *world.World, nc *world.Nucleus, members []int32, ref int32) {
	for _, m := range members {
		w.Hadrons[m].BoundNucleus.CompareAndSwap(ref, 0)
	}
	nc.Count.Store(0)
	nc.Type.Store(0)
}

// ResetNuclei clears every bound_nucleus back-reference and retires every
// nucleus slot. Used at the start of a detection cycle when the engine is
// configured to rebuild membership from scratch.
func ResetNuclei(w *world.World) {
	live := w.HadronsLive()
	for i := int32(0); i < live; i++ {
		w.Hadrons[i].BoundNucleus.Store(0)
	}
	nuclei := w.NucleiLive()
	for i := int32(0); i < nuclei; i++ {
		w.Nuclei[i].Count.Store(0)
		w.Nuclei[i].Type.Store(0)
	}
	w.NucleusCount.Store(0)
}
