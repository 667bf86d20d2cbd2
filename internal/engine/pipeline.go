// Package engine drives the per-frame pipeline: force evaluation, explicit
// Euler integration, hadron formation, hadron validation, nucleus formation
// and nucleus validation. Stages run over flat index ranges with goroutine
// chunking, and each stage joins completely before the next begins.
package engine

import (
	"context"
	"fmt"

	"github.com/san-kum/quarksim/internal/aggregate"
	"github.com/san-kum/quarksim/internal/forces"
	"github.com/san-kum/quarksim/internal/world"
)

// Metric accumulates a scalar over the run from per-frame summaries.
type Metric interface {
	Name() string
	Observe(s world.FrameStats)
	Value() float64
	Reset()
}

// Observer is notified after every frame. Used by the live view and the
// frame recorder.
type Observer interface {
	OnFrame(s world.FrameStats)
}

// Result collects the per-frame history and final metric values of a run.
type Result struct {
	Frames     []world.FrameStats
	Metrics    map[string]float64
	StepsTaken int
}

// Engine advances a world under a fixed parameter set.
type Engine struct {
	World  *world.World
	Params forces.Params

	// RebuildNuclei clears every nucleus record at the top of each frame so
	// membership is rediscovered from scratch instead of carried forward
	// with hysteresis.
	RebuildNuclei bool

	metrics   []Metric
	observers []Observer

	frame int
	time  float64
}

func New(w *world.World, p forces.Params) *Engine {
	return &Engine{World: w, Params: p}
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Frame() int    { return e.frame }
func (e *Engine) Time() float64 { return e.time }

// Stats samples the world at the current frame boundary.
func (e *Engine) Stats() world.FrameStats {
	return e.World.Stats(e.frame, e.time)
}

// Step runs one frame. Params are snapshotted so every stage of the frame
// sees one consistent set even if the caller mutates e.Params between
// frames. Each ParallelFor join is the barrier separating the stages.
func (e *Engine) Step() {
	w := e.World
	p := e.Params

	if e.RebuildNuclei {
		aggregate.ResetNuclei(w)
	}

	n := len(w.Particles)

	ParallelFor(n, 32, func(start, end int) {
		for i := start; i < end; i++ {
			forces.Evaluate(w, &p, int32(i))
		}
	})

	ParallelFor(n, 256, func(start, end int) {
		for i := start; i < end; i++ {
			Integrate(w, &p, int32(i))
		}
	})

	ParallelFor(n, 64, func(start, end int) {
		for i := start; i < end; i++ {
			aggregate.TryFormHadron(w, &p, int32(i))
		}
	})

	ParallelFor(int(w.HadronsLive()), 32, func(start, end int) {
		for i := start; i < end; i++ {
			aggregate.ValidateHadron(w, &p, int32(i))
		}
	})

	ParallelFor(int(w.HadronsLive()), 32, func(start, end int) {
		for i := start; i < end; i++ {
			aggregate.TryFormNucleus(w, &p, int32(i))
		}
	})

	ParallelFor(int(w.NucleiLive()), 8, func(start, end int) {
		for i := start; i < end; i++ {
			aggregate.ValidateNucleus(w, &p, int32(i))
		}
	})

	e.frame++
	e.time += p.Dt
}

// Run advances the given number of frames, checking for cancellation
// between frames. The per-frame history and the accumulated metrics are
// returned even on early cancellation.
func (e *Engine) Run(ctx context.Context, frames int) (*Result, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("engine: frame count must be positive, got %d", frames)
	}
	if err := e.Params.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Frames:  make([]world.FrameStats, 0, frames),
		Metrics: make(map[string]float64),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	for k := 0; k < frames; k++ {
		select {
		case <-ctx.Done():
			e.finish(result)
			return result, ctx.Err()
		default:
		}

		e.Step()
		s := e.Stats()
		result.Frames = append(result.Frames, s)
		result.StepsTaken++

		for _, m := range e.metrics {
			m.Observe(s)
		}
		for _, obs := range e.observers {
			obs.OnFrame(s)
		}
	}

	e.finish(result)
	return result, nil
}

func (e *Engine) finish(result *Result) {
	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
