package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quarksim/internal/engine"
	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/vec"
	"github.com/san-kum/quarksim/internal/world"
)

var _ = Describe("Engine", func() {
	var (
		w *world.World
		e *engine.Engine
	)

	// Every particle starts parked far out on the X axis; individual specs
	// pull the ones they need into clusters. Ups are indices 0-7, downs
	// 8-11.
	BeforeEach(func() {
		var err error
		w, err = world.New(world.Options{
			Ups:         8,
			Downs:       4,
			HadronCap:   8,
			NucleusCap:  4,
			BoxSize:     40,
			QuarkRadius: 0.15,
			Seed:        1,
		})
		Expect(err).NotTo(HaveOccurred())
		for i := range w.Particles {
			w.Particles[i].Pos = vec.Vec3{X: float64(1000 * (i + 1))}
			w.Particles[i].Vel = vec.Vec3{}
		}
		e = engine.New(w, forces.Defaults())
	})

	cluster := func(ids [3]int32, center vec.Vec3) {
		colors := [3]world.Color{world.Red, world.Green, world.Blue}
		offsets := [3]vec.Vec3{{}, {X: 0.2}, {Y: 0.2}}
		for k, id := range ids {
			w.Particles[id].Color = colors[k]
			w.Particles[id].Pos = center.Add(offsets[k])
		}
	}

	Describe("hadron lifecycle", func() {
		BeforeEach(func() {
			cluster([3]int32{0, 1, 8}, vec.Vec3{})
		})

		It("forms a proton from a color-neutral cluster", func() {
			e.Step()

			Expect(w.HadronsLive()).To(Equal(int32(1)))
			Expect(w.Hadrons[0].Kind()).To(Equal(world.Proton))
			for _, id := range []int32{0, 1, 8} {
				Expect(w.Particles[id].BoundHadron.Load()).To(Equal(int32(1)))
			}
		})

		It("breaks a stretched hadron and reuses its slot on reformation", func() {
			e.Step()
			Expect(w.Hadrons[0].Valid()).To(BeTrue())

			w.Particles[0].Pos = vec.Vec3{X: 50}
			e.Step()

			Expect(w.Hadrons[0].Valid()).To(BeFalse())
			for _, id := range []int32{0, 1, 8} {
				Expect(w.Particles[id].Free()).To(BeTrue())
			}

			w.Particles[0].Pos = vec.Vec3{}
			w.Particles[0].Vel = vec.Vec3{}
			e.Step()

			Expect(w.HadronsLive()).To(Equal(int32(1)), "slot should be reused, not grown")
			Expect(w.Hadrons[0].Valid()).To(BeTrue())
		})
	})

	Describe("nucleus lifecycle", func() {
		BeforeEach(func() {
			cluster([3]int32{0, 1, 8}, vec.Vec3{})
			cluster([3]int32{2, 3, 9}, vec.Vec3{X: 2})
		})

		It("binds two nearby protons into a single nucleus", func() {
			e.Step()

			Expect(w.HadronsLive()).To(Equal(int32(2)))
			Expect(w.NucleiLive()).To(Equal(int32(1)))

			nc := &w.Nuclei[0]
			Expect(nc.Valid()).To(BeTrue())
			Expect(nc.Count.Load()).To(Equal(int32(2)))
			Expect(nc.Protons).To(Equal(int32(2)))
		})

		It("rediscovers membership each frame in rebuild mode", func() {
			e.RebuildNuclei = true

			e.Step()
			Expect(w.NucleiLive()).To(Equal(int32(1)))

			e.Step()

			valid := 0
			for n := int32(0); n < w.NucleiLive(); n++ {
				if w.Nuclei[n].Valid() {
					valid++
				}
			}
			Expect(valid).To(Equal(1))
			Expect(w.Nuclei[0].Count.Load()).To(Equal(int32(2)))
		})
	})

	Describe("frame accounting", func() {
		It("advances frame and time by one dt per step", func() {
			e.Step()
			e.Step()
			e.Step()

			Expect(e.Frame()).To(Equal(3))
			Expect(e.Time()).To(BeNumerically("~", 3*e.Params.Dt, 1e-12))
		})
	})
})
