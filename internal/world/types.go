package world

import (
	"sync/atomic"

	"github.com/san-kum/quarksim/internal/vec"
)

// Flavor is a particle's fixed kind.
type Flavor uint8

const (
	Up Flavor = iota
	Down
	Electron
	Carrier
)

func (f Flavor) IsQuark() bool { return f == Up || f == Down }

func (f Flavor) String() string {
	switch f {
	case Up:
		return "up"
	case Down:
		return "down"
	case Electron:
		return "electron"
	default:
		return "carrier"
	}
}

// Color is the six-valued color charge carried by quarks. Non-quarks are
// ColorNone.
type Color uint8

const (
	ColorNone Color = iota
	Red
	Green
	Blue
	AntiRed
	AntiGreen
	AntiBlue
)

func (c Color) IsPrimary() bool { return c >= Red && c <= Blue }
func (c Color) IsAnti() bool    { return c >= AntiRed && c <= AntiBlue }

// Anti returns the matching anticolor (or primary, for an anticolor).
func (c Color) Anti() Color {
	switch {
	case c.IsPrimary():
		return c + 3
	case c.IsAnti():
		return c - 3
	default:
		return ColorNone
	}
}

// Complements returns the two colors needed alongside c to complete a
// color-neutral triplet: the remaining two primaries for a primary color,
// the remaining two anticolors for an anticolor.
func (c Color) Complements() (Color, Color) {
	switch c {
	case Red:
		return Green, Blue
	case Green:
		return Red, Blue
	case Blue:
		return Red, Green
	case AntiRed:
		return AntiGreen, AntiBlue
	case AntiGreen:
		return AntiRed, AntiBlue
	case AntiBlue:
		return AntiRed, AntiGreen
	default:
		return ColorNone, ColorNone
	}
}

// Compatible reports whether two colors attract under the strong force:
// a color with its matching anticolor, or two distinct colors of the same
// family. Identical colors, and a primary against a mismatched anticolor,
// repel.
func Compatible(a, b Color) bool {
	if a == ColorNone || b == ColorNone || a == b {
		return false
	}
	if a.Anti() == b {
		return true
	}
	if a.IsPrimary() && b.IsPrimary() {
		return true
	}
	return a.IsAnti() && b.IsAnti()
}

// Colorless3 reports whether three colors form a strictly neutral triplet:
// three distinct primaries or three distinct anticolors.
func Colorless3(a, b, c Color) bool {
	allPrimary := a.IsPrimary() && b.IsPrimary() && c.IsPrimary()
	allAnti := a.IsAnti() && b.IsAnti() && c.IsAnti()
	if !allPrimary && !allAnti {
		return false
	}
	return a != b && b != c && a != c
}

// Illustrative per-flavor constants. Charges follow the quark model; masses
// are loose stand-ins, not SI.
const (
	MassUp       = 2.2
	MassDown     = 4.7
	MassElectron = 0.51
	MassCarrier  = 0.1

	ChargeUp       = 2.0 / 3.0
	ChargeDown     = -1.0 / 3.0
	ChargeElectron = -1.0
)

// Particle is one slot in the particle arena. BoundHadron is 0 when free,
// else the owning hadron slot + 1; it is mutated only under the particle's
// claim word but read freely by other lanes.
type Particle struct {
	Pos    vec.Vec3
	Vel    vec.Vec3
	Force  vec.Vec3
	Mass   float64
	Charge float64
	Radius float64
	Flavor Flavor
	Color  Color

	BoundHadron atomic.Int32
}

func (p *Particle) Free() bool { return p.BoundHadron.Load() == 0 }

// HadronType classifies a composite by its constituent flavors. The zero
// value marks an unused or invalidated slot.
type HadronType int32

const (
	HadronInvalid HadronType = iota
	Proton                   // 2 up + 1 down
	Neutron                  // 1 up + 2 down
	OtherBaryon
	Meson
)

func (t HadronType) IsNucleon() bool { return t == Proton || t == Neutron }

func (t HadronType) String() string {
	switch t {
	case Proton:
		return "proton"
	case Neutron:
		return "neutron"
	case OtherBaryon:
		return "baryon"
	case Meson:
		return "meson"
	default:
		return "invalid"
	}
}

// NoQuark marks the unused third constituent of a 2-body composite.
const NoQuark int32 = -1

// Hadron is one slot in the hadron arena. Type doubles as the slot's
// liveness word: allocation claims a slot by CAS from HadronInvalid, breakup
// stores HadronInvalid back. Geometry is refreshed every frame by the
// validator.
type Hadron struct {
	Quarks [3]int32
	Center vec.Vec3
	Vel    vec.Vec3
	Radius float64

	Type         atomic.Int32
	BoundNucleus atomic.Int32
}

func (h *Hadron) Kind() HadronType { return HadronType(h.Type.Load()) }
func (h *Hadron) Valid() bool      { return h.Type.Load() != int32(HadronInvalid) }
func (h *Hadron) Free() bool       { return h.BoundNucleus.Load() == 0 }

// NumQuarks returns 2 for mesons, 3 otherwise.
func (h *Hadron) NumQuarks() int {
	if h.Quarks[2] == NoQuark {
		return 2
	}
	return 3
}

// NetCharge sums the constituent charges.
func (h *Hadron) NetCharge(w *World) float64 {
	q := 0.0
	for k := 0; k < h.NumQuarks(); k++ {
		idx := h.Quarks[k]
		if idx >= 0 && int(idx) < len(w.Particles) {
			q += w.Particles[idx].Charge
		}
	}
	return q
}

// MaxNucleons is the fixed membership capacity of a nucleus.
const MaxNucleons = 16

// Nucleus is one slot in the nucleus arena. Type equals the proton count
// (the atomic number), so 0 marks an unused or invalidated slot; a valid
// nucleus always holds at least one proton.
type Nucleus struct {
	Members  [MaxNucleons]int32
	Protons  int32
	Neutrons int32
	Center   vec.Vec3
	Vel      vec.Vec3
	Radius   float64

	Count atomic.Int32
	Type  atomic.Int32
}

func (n *Nucleus) Valid() bool { return n.Type.Load() != 0 }
