package forces

import "fmt"

// Params is the per-frame parameter block. The GUI/config layer writes it
// before the force stage runs; the engine snapshots it by value at frame
// start so every lane of a frame sees one consistent set.
type Params struct {
	// Pair forces.
	Gravity        float64 `yaml:"gravity"`
	Coulomb        float64 `yaml:"coulomb"`
	CoulombSoft    float64 `yaml:"coulomb_soft"`
	StrongA        float64 `yaml:"strong_a"`
	StrongB        float64 `yaml:"strong_b"`
	StrongRange    float64 `yaml:"strong_range"`
	CoreRadius     float64 `yaml:"core_radius"`
	CoreStrength   float64 `yaml:"core_strength"`
	ConfineRange   float64 `yaml:"confine_range"`
	ConfineBoost   float64 `yaml:"confine_boost"`
	WeakStrength   float64 `yaml:"weak_strength"`
	WeakRange      float64 `yaml:"weak_range"`
	MaxPairForce   float64 `yaml:"max_pair_force"`
	SofteningFloor float64 `yaml:"softening_floor"`

	// Electron-hadron terms.
	ElectronBuffer    float64 `yaml:"electron_buffer"`
	ElectronExclusion float64 `yaml:"electron_exclusion"`

	// Hadron formation and breakup.
	BindRadius    float64 `yaml:"bind_radius"`
	BreakRadius   float64 `yaml:"break_radius"`
	HadronPadding float64 `yaml:"hadron_padding"`

	// Nucleus formation, revision and breakup.
	NucleusBindRadius   float64 `yaml:"nucleus_bind_radius"`
	NucleusAttachRadius float64 `yaml:"nucleus_attach_radius"`
	NucleusMergeRadius  float64 `yaml:"nucleus_merge_radius"`
	NucleusBreakRadius  float64 `yaml:"nucleus_break_radius"`

	// Nucleon-nucleon residual force.
	NucleonExclusion   float64 `yaml:"nucleon_exclusion"`
	NucleonExclusionK  float64 `yaml:"nucleon_exclusion_k"`
	NucleonContact     float64 `yaml:"nucleon_contact"`
	NucleonAttraction  float64 `yaml:"nucleon_attraction"`
	NucleonYukawaRange float64 `yaml:"nucleon_yukawa_range"`
	NucleonDamping     float64 `yaml:"nucleon_damping"`

	// Integration.
	Dt              float64 `yaml:"dt"`
	VelocityDamping float64 `yaml:"velocity_damping"`
}

func Defaults() Params {
	return Params{
		Gravity:        0.05,
		Coulomb:        1.0,
		CoulombSoft:    0.05,
		StrongA:        2.0,
		StrongB:        0.5,
		StrongRange:    2.5,
		CoreRadius:     0.3,
		CoreStrength:   50.0,
		ConfineRange:   1.5,
		ConfineBoost:   2.0,
		WeakStrength:   0.5,
		WeakRange:      0.6,
		MaxPairForce:   100.0,
		SofteningFloor: 0.01,

		ElectronBuffer:    0.5,
		ElectronExclusion: 40.0,

		BindRadius:    1.2,
		BreakRadius:   2.4,
		HadronPadding: 0.1,

		NucleusBindRadius:   3.0,
		NucleusAttachRadius: 2.0,
		NucleusMergeRadius:  2.5,
		NucleusBreakRadius:  4.5,

		NucleonExclusion:   0.9,
		NucleonExclusionK:  30.0,
		NucleonContact:     2.0,
		NucleonAttraction:  8.0,
		NucleonYukawaRange: 1.5,
		NucleonDamping:     0.8,

		Dt:              0.01,
		VelocityDamping: 0.995,
	}
}

// Validate rejects parameter sets the pipeline cannot run with. Hysteresis
// thresholds must sit outside their formation counterparts or composites
// flicker every frame.
func (p *Params) Validate() error {
	if p.Dt <= 0 {
		return fmt.Errorf("forces: dt must be positive, got %f", p.Dt)
	}
	if p.VelocityDamping <= 0 || p.VelocityDamping > 1 {
		return fmt.Errorf("forces: velocity damping must be in (0,1], got %f", p.VelocityDamping)
	}
	if p.SofteningFloor <= 0 {
		return fmt.Errorf("forces: softening floor must be positive, got %f", p.SofteningFloor)
	}
	if p.BreakRadius <= p.BindRadius {
		return fmt.Errorf("forces: break radius %f must exceed bind radius %f",
			p.BreakRadius, p.BindRadius)
	}
	if p.NucleusBreakRadius <= p.NucleusBindRadius {
		return fmt.Errorf("forces: nucleus break radius %f must exceed bind radius %f",
			p.NucleusBreakRadius, p.NucleusBindRadius)
	}
	if p.NucleonContact <= p.NucleonExclusion {
		return fmt.Errorf("forces: nucleon contact range %f must exceed exclusion %f",
			p.NucleonContact, p.NucleonExclusion)
	}
	if p.MaxPairForce <= 0 {
		return fmt.Errorf("forces: max pair force must be positive, got %f", p.MaxPairForce)
	}
	return nil
}
