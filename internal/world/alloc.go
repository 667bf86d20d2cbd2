package world

// Slot allocation: reuse the lowest-index invalid slot if one exists,
// otherwise grow the high-water counter. A slot is claimed by CAS on its
// type word, so a grower losing its fresh slot to a concurrent scanner
// simply retries. Returns -1 when the arena is full; the caller drops the
// candidate composite and retries next frame.

// AllocHadron claims a hadron slot and stamps it with t.
func (w *World) AllocHadron(t HadronType) int32 {
	for {
		n := w.HadronsLive()
		for i := int32(0); i < n; i++ {
			if w.Hadrons[i].Type.CompareAndSwap(int32(HadronInvalid), int32(t)) {
				return i
			}
		}
		if n >= int32(len(w.Hadrons)) {
			return -1
		}
		if !w.HadronCount.CompareAndSwap(n, n+1) {
			continue
		}
		if w.Hadrons[n].Type.CompareAndSwap(int32(HadronInvalid), int32(t)) {
			return n
		}
	}
}

// AllocNucleus claims a nucleus slot and stamps it with the proton count,
// which doubles as the slot's type word.
func (w *World) AllocNucleus(protons int32) int32 {
	if protons <= 0 {
		return -1
	}
	for {
		n := w.NucleiLive()
		for i := int32(0); i < n; i++ {
			if w.Nuclei[i].Type.CompareAndSwap(0, protons) {
				return i
			}
		}
		if n >= int32(len(w.Nuclei)) {
			return -1
		}
		if !w.NucleusCount.CompareAndSwap(n, n+1) {
			continue
		}
		if w.Nuclei[n].Type.CompareAndSwap(0, protons) {
			return n
		}
	}
}
