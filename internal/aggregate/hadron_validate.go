package aggregate

import (
	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/vec"
	"github.com/san-kum/quarksim/internal/world"
)

// ValidateHadron is the validation lane for hadron slot h. Constituents of
// a valid hadron belong to this slot alone, so the lane needs no claim
// words: it touches only its own record and its constituents' back-refs.
func ValidateHadron(w *world.World, p *forces.Params, h int32) {
	hd := &w.Hadrons[h]
	if !hd.Valid() {
		return
	}

	n := hd.NumQuarks()
	for k := 0; k < n; k++ {
		idx := hd.Quarks[k]
		if idx < 0 || int(idx) >= len(w.Particles) || !w.Particles[idx].Flavor.IsQuark() {
			breakHadron(w, hd, h)
			return
		}
	}

	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			pa := &w.Particles[hd.Quarks[a]]
			pb := &w.Particles[hd.Quarks[b]]
			if vec.Dist(pa.Pos, pb.Pos) > p.BreakRadius {
				breakHadron(w, hd, h)
				return
			}
		}
	}

	refreshHadronGeometry(w, hd, p)
}

// breakHadron frees the surviving constituents and marks the slot
// reusable. A stale bound_nucleus reference is left for the nucleus
// validator, which treats members that stopped being valid nucleons as
// never really bound.
func breakHadron(w *world.World, hd *world.Hadron, h int32) {
	ref := h + 1
	for k := 0; k < hd.NumQuarks(); k++ {
		idx := hd.Quarks[k]
		if idx < 0 || int(idx) >= len(w.Particles) {
			continue
		}
		w.Particles[idx].BoundHadron.CompareAndSwap(ref, 0)
	}
	hd.Type.Store(int32(world.HadronInvalid))
}
