package world

import (
	"errors"
	"testing"

	"github.com/san-kum/quarksim/internal/vec"
)

func TestNewPopulation(t *testing.T) {
	opts := DefaultOptions()
	opts.Ups, opts.Downs, opts.Electrons, opts.Carriers = 30, 30, 10, 4

	w, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if len(w.Particles) != 74 {
		t.Fatalf("expected 74 particles, got %d", len(w.Particles))
	}

	counts := map[Flavor]int{}
	for i := range w.Particles {
		p := &w.Particles[i]
		counts[p.Flavor]++

		if p.Flavor.IsQuark() && p.Color == ColorNone {
			t.Errorf("quark %d has no color", i)
		}
		if !p.Flavor.IsQuark() && p.Color != ColorNone {
			t.Errorf("non-quark %d has color %v", i, p.Color)
		}
		if !p.Free() {
			t.Errorf("particle %d should start free", i)
		}
		if p.Pos.X < 0 || p.Pos.X > opts.BoxSize {
			t.Errorf("particle %d outside box: %v", i, p.Pos)
		}
	}

	if counts[Up] != 30 || counts[Down] != 30 || counts[Electron] != 10 || counts[Carrier] != 4 {
		t.Errorf("flavor mix wrong: %v", counts)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
		want   error
	}{
		{"too few quarks", func(o *Options) { o.Ups, o.Downs = 1, 1 }, ErrTooFewQuarks},
		{"zero hadron cap", func(o *Options) { o.HadronCap = 0 }, ErrBadCapacity},
		{"zero nucleus cap", func(o *Options) { o.NucleusCap = 0 }, ErrBadCapacity},
		{"zero box", func(o *Options) { o.BoxSize = 0 }, ErrBadBoxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := New(opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestColorHelpers(t *testing.T) {
	if Red.Anti() != AntiRed || AntiBlue.Anti() != Blue {
		t.Error("Anti mapping wrong")
	}

	a, b := Green.Complements()
	if a != Red || b != Blue {
		t.Errorf("Green complements: got %v %v", a, b)
	}
	a, b = AntiRed.Complements()
	if a != AntiGreen || b != AntiBlue {
		t.Errorf("AntiRed complements: got %v %v", a, b)
	}

	tests := []struct {
		a, b Color
		want bool
	}{
		{Red, AntiRed, true},
		{Red, Green, true},
		{AntiGreen, AntiBlue, true},
		{Red, Red, false},
		{Red, AntiGreen, false},
		{Red, ColorNone, false},
	}
	for _, tt := range tests {
		if got := Compatible(tt.a, tt.b); got != tt.want {
			t.Errorf("Compatible(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}

	if !Colorless3(Red, Green, Blue) || !Colorless3(AntiBlue, AntiRed, AntiGreen) {
		t.Error("neutral triplets rejected")
	}
	if Colorless3(Red, Red, Blue) || Colorless3(Red, Green, AntiBlue) {
		t.Error("non-neutral triplet accepted")
	}
}

func TestResolveSelection(t *testing.T) {
	opts := DefaultOptions()
	opts.Ups, opts.Downs, opts.Electrons, opts.Carriers = 10, 10, 0, 0
	w, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	w.Particles[3].Pos = vec.Vec3{X: 1, Y: 2, Z: 3}
	pos, ok := w.ResolveSelection(PackSelection(SelectParticle, 3))
	if !ok || pos != (vec.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("particle selection: got %v, %v", pos, ok)
	}

	slot := w.AllocHadron(Proton)
	if slot != 0 {
		t.Fatalf("expected slot 0, got %d", slot)
	}
	w.Hadrons[slot].Center = vec.Vec3{X: 5, Y: 5, Z: 5}
	pos, ok = w.ResolveSelection(PackSelection(SelectHadron, slot))
	if !ok || pos != (vec.Vec3{X: 5, Y: 5, Z: 5}) {
		t.Errorf("hadron selection: got %v, %v", pos, ok)
	}

	if _, ok := w.ResolveSelection(PackSelection(SelectHadron, 99)); ok {
		t.Error("out-of-range hadron selection should fail")
	}
	if _, ok := w.ResolveSelection(PackSelection(SelectNucleus, 0)); ok {
		t.Error("invalid nucleus selection should fail")
	}
	if _, ok := w.ResolveSelection(0); ok {
		t.Error("zero selection should fail")
	}
}

func TestStats(t *testing.T) {
	opts := DefaultOptions()
	opts.Ups, opts.Downs, opts.Electrons, opts.Carriers = 4, 2, 2, 0
	w, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	slot := w.AllocHadron(Proton)
	for k := 0; k < 3; k++ {
		w.Hadrons[slot].Quarks[k] = int32(k)
		w.Particles[k].BoundHadron.Store(slot + 1)
	}

	s := w.Stats(7, 0.07)
	if s.Frame != 7 {
		t.Errorf("frame: got %d", s.Frame)
	}
	if s.FreeQuarks != 3 {
		t.Errorf("free quarks: expected 3, got %d", s.FreeQuarks)
	}
	if s.Protons != 1 || s.Hadrons != 1 {
		t.Errorf("hadron counts: %+v", s)
	}
	if s.BoundFraction != 0.5 {
		t.Errorf("bound fraction: expected 0.5, got %f", s.BoundFraction)
	}
}
