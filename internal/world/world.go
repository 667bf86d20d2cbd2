package world

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/san-kum/quarksim/internal/vec"
)

// Options sizes and seeds a new world.
type Options struct {
	Ups       int
	Downs     int
	Electrons int
	Carriers  int

	HadronCap  int
	NucleusCap int

	BoxSize     float64
	QuarkRadius float64
	Seed        int64
}

func DefaultOptions() Options {
	return Options{
		Ups:         600,
		Downs:       600,
		Electrons:   200,
		Carriers:    20,
		HadronCap:   512,
		NucleusCap:  128,
		BoxSize:     40.0,
		QuarkRadius: 0.15,
		Seed:        1,
	}
}

// World owns the three flat arenas and their claim words. Particles are
// created once and never destroyed; hadron and nucleus slots are reused
// after invalidation. HadronCount and NucleusCount are high-water marks,
// bumped only by slot allocation.
type World struct {
	Particles []Particle
	Hadrons   []Hadron
	Nuclei    []Nucleus

	ParticleClaims *ClaimSet
	HadronClaims   *ClaimSet

	HadronCount  atomic.Int32
	NucleusCount atomic.Int32

	BoxSize float64
}

// New builds and populates a world. Quarks get the six color charges in
// round-robin so primary and anti populations stay balanced.
func New(opts Options) (*World, error) {
	if opts.Ups+opts.Downs < 3 {
		return nil, fmt.Errorf("%w, got %d", ErrTooFewQuarks, opts.Ups+opts.Downs)
	}
	if opts.HadronCap <= 0 || opts.NucleusCap <= 0 {
		return nil, fmt.Errorf("%w (hadron %d, nucleus %d)",
			ErrBadCapacity, opts.HadronCap, opts.NucleusCap)
	}
	if opts.BoxSize <= 0 {
		return nil, fmt.Errorf("%w, got %f", ErrBadBoxSize, opts.BoxSize)
	}

	n := opts.Ups + opts.Downs + opts.Electrons + opts.Carriers
	w := &World{
		Particles:      make([]Particle, n),
		Hadrons:        make([]Hadron, opts.HadronCap),
		Nuclei:         make([]Nucleus, opts.NucleusCap),
		ParticleClaims: NewClaimSet(n),
		HadronClaims:   NewClaimSet(opts.HadronCap),
		BoxSize:        opts.BoxSize,
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	i := 0
	quark := 0
	for k := 0; k < opts.Ups; k++ {
		w.initParticle(i, Up, Color(1+quark%6), MassUp, ChargeUp, opts, rng)
		i++
		quark++
	}
	for k := 0; k < opts.Downs; k++ {
		w.initParticle(i, Down, Color(1+quark%6), MassDown, ChargeDown, opts, rng)
		i++
		quark++
	}
	for k := 0; k < opts.Electrons; k++ {
		w.initParticle(i, Electron, ColorNone, MassElectron, ChargeElectron, opts, rng)
		i++
	}
	for k := 0; k < opts.Carriers; k++ {
		w.initParticle(i, Carrier, ColorNone, MassCarrier, 0, opts, rng)
		i++
	}

	return w, nil
}

func (w *World) initParticle(i int, f Flavor, c Color, mass, charge float64, opts Options, rng *rand.Rand) {
	p := &w.Particles[i]
	p.Pos = vec.Vec3{
		X: rng.Float64() * opts.BoxSize,
		Y: rng.Float64() * opts.BoxSize,
		Z: rng.Float64() * opts.BoxSize,
	}
	p.Vel = vec.Vec3{
		X: (rng.Float64() - 0.5) * 0.2,
		Y: (rng.Float64() - 0.5) * 0.2,
		Z: (rng.Float64() - 0.5) * 0.2,
	}
	p.Mass = mass
	p.Charge = charge
	p.Radius = opts.QuarkRadius
	p.Flavor = f
	p.Color = c
	p.BoundHadron.Store(0)
}

// HadronsLive returns the current hadron high-water mark, clamped to
// capacity (allocation may transiently overshoot visibility).
func (w *World) HadronsLive() int32 {
	n := w.HadronCount.Load()
	if c := int32(len(w.Hadrons)); n > c {
		return c
	}
	return n
}

func (w *World) NucleiLive() int32 {
	n := w.NucleusCount.Load()
	if c := int32(len(w.Nuclei)); n > c {
		return c
	}
	return n
}

// HadronAt returns the hadron for a 1-indexed back-reference, or nil if the
// reference is out of range or the slot is invalid.
func (w *World) HadronAt(ref int32) *Hadron {
	if ref <= 0 || ref > w.HadronsLive() {
		return nil
	}
	h := &w.Hadrons[ref-1]
	if !h.Valid() {
		return nil
	}
	return h
}

// FrameStats is a read-only summary of one frame, sampled after the
// validation stages complete.
type FrameStats struct {
	Frame         int     `json:"frame"`
	Time          float64 `json:"time"`
	FreeQuarks    int     `json:"free_quarks"`
	Protons       int     `json:"protons"`
	Neutrons      int     `json:"neutrons"`
	OtherBaryons  int     `json:"other_baryons"`
	Mesons        int     `json:"mesons"`
	Hadrons       int     `json:"hadrons"`
	Nuclei        int     `json:"nuclei"`
	MaxNucleus    int     `json:"max_nucleus"`
	BoundFraction float64 `json:"bound_fraction"`
	Kinetic       float64 `json:"kinetic"`
}

// Stats scans the arenas. Call it between frames only.
func (w *World) Stats(frame int, t float64) FrameStats {
	s := FrameStats{Frame: frame, Time: t}

	quarks, bound := 0, 0
	for i := range w.Particles {
		p := &w.Particles[i]
		s.Kinetic += 0.5 * p.Mass * p.Vel.Len2()
		if !p.Flavor.IsQuark() {
			continue
		}
		quarks++
		if p.Free() {
			s.FreeQuarks++
		} else {
			bound++
		}
	}
	if quarks > 0 {
		s.BoundFraction = float64(bound) / float64(quarks)
	}

	for i := int32(0); i < w.HadronsLive(); i++ {
		switch w.Hadrons[i].Kind() {
		case Proton:
			s.Protons++
		case Neutron:
			s.Neutrons++
		case OtherBaryon:
			s.OtherBaryons++
		case Meson:
			s.Mesons++
		default:
			continue
		}
		s.Hadrons++
	}

	for i := int32(0); i < w.NucleiLive(); i++ {
		nu := &w.Nuclei[i]
		if !nu.Valid() {
			continue
		}
		s.Nuclei++
		if c := int(nu.Count.Load()); c > s.MaxNucleus {
			s.MaxNucleus = c
		}
	}

	return s
}
