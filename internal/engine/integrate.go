package engine

import (
	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/world"
)

// Integrate advances particle i by one explicit Euler step from the force
// accumulated this frame. Velocity damping is applied before the position
// update so an undamped force spike cannot carry a particle across the
// whole box in one frame.
func Integrate(w *world.World, p *forces.Params, i int32) {
	pt := &w.Particles[i]
	if pt.Mass <= 0 {
		return
	}

	pt.Vel = pt.Vel.Add(pt.Force.Scale(p.Dt / pt.Mass)).Scale(p.VelocityDamping)

	next := pt.Pos.Add(pt.Vel.Scale(p.Dt))
	if !next.IsValid() {
		// A degenerate force blew up the step. Drop the velocity and keep
		// the last good position rather than poisoning the arena with NaNs.
		pt.Vel = pt.Vel.Scale(0)
		return
	}
	pt.Pos = next
}
