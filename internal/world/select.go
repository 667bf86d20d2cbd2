package world

import "github.com/san-kum/quarksim/internal/vec"

// Selection ids arrive packed from an external picking layer: a kind tag in
// the top byte, a slot index below. Resolution is a plain lookup into a
// world-space position; it performs no aggregation logic.

type SelectKind uint32

const (
	SelectNone     SelectKind = 0
	SelectParticle SelectKind = 1
	SelectHadron   SelectKind = 2
	SelectNucleus  SelectKind = 3
)

func PackSelection(kind SelectKind, index int32) uint32 {
	return uint32(kind)<<24 | uint32(index)&0xffffff
}

// ResolveSelection maps a packed id to a current world-space position.
// Stale or malformed ids resolve to false.
func (w *World) ResolveSelection(sel uint32) (vec.Vec3, bool) {
	kind := SelectKind(sel >> 24)
	idx := int32(sel & 0xffffff)

	switch kind {
	case SelectParticle:
		if int(idx) >= len(w.Particles) {
			return vec.Vec3{}, false
		}
		return w.Particles[idx].Pos, true
	case SelectHadron:
		if idx >= w.HadronsLive() || !w.Hadrons[idx].Valid() {
			return vec.Vec3{}, false
		}
		return w.Hadrons[idx].Center, true
	case SelectNucleus:
		if idx >= w.NucleiLive() || !w.Nuclei[idx].Valid() {
			return vec.Vec3{}, false
		}
		return w.Nuclei[idx].Center, true
	default:
		return vec.Vec3{}, false
	}
}
