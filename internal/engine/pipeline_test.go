package engine

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/san-kum/quarksim/internal/aggregate"
	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/vec"
	"github.com/san-kum/quarksim/internal/world"
)

func TestParallelForCoversRangeOnce(t *testing.T) {
	const n = 1000
	hits := make([]atomic.Int32, n)

	ParallelFor(n, 1, func(start, end int) {
		for i := start; i < end; i++ {
			hits[i].Add(1)
		}
	})

	for i := range hits {
		if got := hits[i].Load(); got != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, got)
		}
	}
}

func TestParallelForSmallRangeRunsInline(t *testing.T) {
	calls := 0
	ParallelFor(5, 100, func(start, end int) {
		calls++
		if start != 0 || end != 5 {
			t.Fatalf("inline chunk = [%d,%d), want [0,5)", start, end)
		}
	})
	if calls != 1 {
		t.Fatalf("chunk calls = %d, want 1", calls)
	}

	ParallelFor(0, 1, func(start, end int) {
		t.Fatal("fn called for empty range")
	})
}

// stagedWorld parks every particle far out on the X axis and zeroes
// velocities so tests can build clusters explicitly.
func stagedWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.Options{
		Ups:         8,
		Downs:       4,
		HadronCap:   8,
		NucleusCap:  4,
		BoxSize:     40,
		QuarkRadius: 0.15,
		Seed:        1,
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	for i := range w.Particles {
		w.Particles[i].Pos = vec.Vec3{X: float64(1000 * (i + 1))}
		w.Particles[i].Vel = vec.Vec3{}
	}
	return w
}

func TestStepFormsHadronFromCluster(t *testing.T) {
	w := stagedWorld(t)
	w.Particles[0].Color = world.Red
	w.Particles[0].Pos = vec.Vec3{}
	w.Particles[1].Color = world.Green
	w.Particles[1].Pos = vec.Vec3{X: 0.3}
	w.Particles[8].Color = world.Blue
	w.Particles[8].Pos = vec.Vec3{Y: 0.3}

	e := New(w, forces.Defaults())
	e.Step()

	if live := w.HadronsLive(); live != 1 {
		t.Fatalf("HadronsLive after step = %d, want 1", live)
	}
	if got := w.Hadrons[0].Kind(); got != world.Proton {
		t.Fatalf("Kind = %v, want Proton", got)
	}

	s := e.Stats()
	if s.Protons != 1 || s.Hadrons != 1 {
		t.Errorf("stats protons=%d hadrons=%d, want 1/1", s.Protons, s.Hadrons)
	}
	if s.BoundFraction <= 0 {
		t.Errorf("bound fraction = %f, want > 0", s.BoundFraction)
	}
}

type frameCounter struct{ n int }

func (c *frameCounter) Name() string               { return "frames" }
func (c *frameCounter) Observe(s world.FrameStats) { c.n++ }
func (c *frameCounter) Value() float64             { return float64(c.n) }
func (c *frameCounter) Reset()                     { c.n = 0 }

type lastFrameObserver struct{ last world.FrameStats }

func (o *lastFrameObserver) OnFrame(s world.FrameStats) { o.last = s }

func TestRunRecordsFramesAndMetrics(t *testing.T) {
	w := stagedWorld(t)
	e := New(w, forces.Defaults())

	fc := &frameCounter{n: 99} // Reset must clear this
	obs := &lastFrameObserver{}
	e.AddMetric(fc)
	e.AddObserver(obs)

	res, err := e.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.StepsTaken != 5 || len(res.Frames) != 5 {
		t.Fatalf("steps=%d frames=%d, want 5/5", res.StepsTaken, len(res.Frames))
	}
	if got := res.Metrics["frames"]; got != 5 {
		t.Errorf("metric value = %f, want 5", got)
	}
	if obs.last.Frame != 5 {
		t.Errorf("observer last frame = %d, want 5", obs.last.Frame)
	}
	if e.Frame() != 5 {
		t.Errorf("Frame() = %d, want 5", e.Frame())
	}
	wantT := 5 * e.Params.Dt
	if math.Abs(e.Time()-wantT) > 1e-12 {
		t.Errorf("Time() = %f, want %f", e.Time(), wantT)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	w := stagedWorld(t)

	e := New(w, forces.Defaults())
	if _, err := e.Run(context.Background(), 0); err == nil {
		t.Error("Run accepted zero frames")
	}

	bad := forces.Defaults()
	bad.Dt = 0
	e = New(w, bad)
	if _, err := e.Run(context.Background(), 1); err == nil {
		t.Error("Run accepted dt = 0")
	}
}

func TestRunCancelled(t *testing.T) {
	w := stagedWorld(t)
	e := New(w, forces.Defaults())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Run(ctx, 10)
	if err == nil {
		t.Fatal("Run ignored cancelled context")
	}
	if res.StepsTaken != 0 {
		t.Errorf("steps after immediate cancel = %d, want 0", res.StepsTaken)
	}
}

func TestPipelineInvariantsAfterRun(t *testing.T) {
	w, err := world.New(world.Options{
		Ups:         48,
		Downs:       24,
		Electrons:   12,
		Carriers:    4,
		HadronCap:   32,
		NucleusCap:  8,
		BoxSize:     12,
		QuarkRadius: 0.15,
		Seed:        3,
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}

	p := forces.Defaults()
	e := New(w, p)
	if _, err := e.Run(context.Background(), 25); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// One sequential validation sweep settles anything a contended lane
	// deferred to the next frame, then the structure must be fully
	// consistent.
	for h := int32(0); h < w.HadronsLive(); h++ {
		aggregate.ValidateHadron(w, &p, h)
	}
	for n := int32(0); n < w.NucleiLive(); n++ {
		aggregate.ValidateNucleus(w, &p, n)
	}

	checkStructure(t, w)
}

func TestValidationSweepIdempotent(t *testing.T) {
	w, err := world.New(world.Options{
		Ups:         48,
		Downs:       24,
		Electrons:   12,
		Carriers:    4,
		HadronCap:   32,
		NucleusCap:  8,
		BoxSize:     12,
		QuarkRadius: 0.15,
		Seed:        3,
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}

	p := forces.Defaults()
	e := New(w, p)
	if _, err := e.Run(context.Background(), 25); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sweep := func() {
		for h := int32(0); h < w.HadronsLive(); h++ {
			aggregate.ValidateHadron(w, &p, h)
		}
		for n := int32(0); n < w.NucleiLive(); n++ {
			aggregate.ValidateNucleus(w, &p, n)
		}
	}

	// First sweep settles anything a contended lane deferred.
	sweep()

	type geom struct {
		center, vel vec.Vec3
		radius      float64
		valid       bool
	}
	hadrons := make([]geom, w.HadronsLive())
	for h := range hadrons {
		hd := &w.Hadrons[h]
		hadrons[h] = geom{hd.Center, hd.Vel, hd.Radius, hd.Valid()}
	}
	nuclei := make([]geom, w.NucleiLive())
	for n := range nuclei {
		nc := &w.Nuclei[n]
		nuclei[n] = geom{nc.Center, nc.Vel, nc.Radius, nc.Valid()}
	}

	// With no force or integration step in between, a second sweep must
	// leave every record exactly where it was.
	sweep()

	for h := range hadrons {
		hd := &w.Hadrons[h]
		if got := (geom{hd.Center, hd.Vel, hd.Radius, hd.Valid()}); got != hadrons[h] {
			t.Errorf("hadron %d changed: %+v -> %+v", h, hadrons[h], got)
		}
	}
	for n := range nuclei {
		nc := &w.Nuclei[n]
		if got := (geom{nc.Center, nc.Vel, nc.Radius, nc.Valid()}); got != nuclei[n] {
			t.Errorf("nucleus %d changed: %+v -> %+v", n, nuclei[n], got)
		}
	}
}

func checkStructure(t *testing.T, w *world.World) {
	t.Helper()

	for i := range w.Particles {
		if w.ParticleClaims.Held(int32(i)) {
			t.Fatalf("particle claim %d held at frame boundary", i)
		}
	}
	for h := int32(0); h < w.HadronsLive(); h++ {
		if w.HadronClaims.Held(h) {
			t.Fatalf("hadron claim %d held at frame boundary", h)
		}
	}

	// Each quark belongs to at most one valid hadron, and membership and
	// back-references agree in both directions.
	owner := make(map[int32]int32)
	for h := int32(0); h < w.HadronsLive(); h++ {
		hd := &w.Hadrons[h]
		if !hd.Valid() {
			continue
		}
		for k := 0; k < hd.NumQuarks(); k++ {
			q := hd.Quarks[k]
			if q < 0 || int(q) >= len(w.Particles) {
				t.Fatalf("hadron %d has out-of-range quark %d", h, q)
			}
			if !w.Particles[q].Flavor.IsQuark() {
				t.Fatalf("hadron %d holds non-quark particle %d", h, q)
			}
			if prev, ok := owner[q]; ok {
				t.Fatalf("quark %d in hadrons %d and %d", q, prev, h)
			}
			owner[q] = h
			if ref := w.Particles[q].BoundHadron.Load(); ref != h+1 {
				t.Fatalf("quark %d ref = %d, hadron is %d", q, ref, h)
			}
		}
	}
	for i := range w.Particles {
		ref := w.Particles[i].BoundHadron.Load()
		if ref == 0 {
			continue
		}
		hd := w.HadronAt(ref)
		if hd == nil {
			t.Fatalf("particle %d references dead hadron %d", i, ref)
		}
		if owner[int32(i)] != ref-1 {
			t.Fatalf("particle %d not listed by hadron %d", i, ref-1)
		}
	}

	// Same agreement one level up, between hadrons and nuclei.
	nucOwner := make(map[int32]int32)
	for n := int32(0); n < w.NucleiLive(); n++ {
		nc := &w.Nuclei[n]
		if !nc.Valid() {
			continue
		}
		count := int(nc.Count.Load())
		if count < 1 || count > world.MaxNucleons {
			t.Fatalf("nucleus %d count = %d", n, count)
		}
		var protons int32
		for k := 0; k < count; k++ {
			m := nc.Members[k]
			if m < 0 || m >= w.HadronsLive() {
				t.Fatalf("nucleus %d has out-of-range member %d", n, m)
			}
			hd := &w.Hadrons[m]
			if !hd.Kind().IsNucleon() {
				t.Fatalf("nucleus %d member %d is %v", n, m, hd.Kind())
			}
			if prev, ok := nucOwner[m]; ok {
				t.Fatalf("hadron %d in nuclei %d and %d", m, prev, n)
			}
			nucOwner[m] = n
			if ref := hd.BoundNucleus.Load(); ref != n+1 {
				t.Fatalf("member %d ref = %d, nucleus is %d", m, ref, n)
			}
			if hd.Kind() == world.Proton {
				protons++
			}
		}
		if protons < 1 {
			t.Fatalf("nucleus %d has no proton", n)
		}
		if protons != nc.Protons {
			t.Fatalf("nucleus %d protons = %d, record says %d", n, protons, nc.Protons)
		}
	}
	for h := int32(0); h < w.HadronsLive(); h++ {
		hd := &w.Hadrons[h]
		ref := hd.BoundNucleus.Load()
		if ref == 0 || !hd.Valid() {
			continue
		}
		if ref > w.NucleiLive() || !w.Nuclei[ref-1].Valid() {
			t.Fatalf("hadron %d references dead nucleus %d", h, ref)
		}
		if nucOwner[h] != ref-1 {
			t.Fatalf("hadron %d not listed by nucleus %d", h, ref-1)
		}
	}
}
