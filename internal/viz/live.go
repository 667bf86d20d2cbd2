package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quarksim/internal/engine"
	"github.com/san-kum/quarksim/internal/world"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
)

type TickMsg time.Time

// Model is the live terminal view: the world drawn as a braille particle
// field next to a stats panel. Building the engine goes through a factory
// so reset can start an identical fresh run.
type Model struct {
	build        func() *engine.Engine
	eng          *engine.Engine
	canvas       *Canvas
	running      bool
	stepsPerTick int
	boundHistory []float64
	stats        world.FrameStats
	selection    uint32
	showHelp     bool
}

func NewModel(build func() *engine.Engine) Model {
	return Model{
		build:        build,
		eng:          build(),
		canvas:       NewCanvas(width, height),
		running:      true,
		stepsPerTick: 1,
		boundHistory: make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.eng = m.build()
			m.boundHistory = m.boundHistory[:0]
			m.stats = world.FrameStats{}
			m.selection = world.PackSelection(world.SelectNone, 0)
		case "tab":
			m.selection = nextSelection(m.eng.World, m.selection)
		case "+", "=":
			if m.stepsPerTick < 64 {
				m.stepsPerTick *= 2
			}
		case "-", "_":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "n":
			m.eng.RebuildNuclei = !m.eng.RebuildNuclei
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			for i := 0; i < m.stepsPerTick; i++ {
				m.eng.Step()
			}
			m.stats = m.eng.Stats()
			m.boundHistory = append(m.boundHistory, m.stats.BoundFraction)
			if len(m.boundHistory) > historyCapacity {
				m.boundHistory = m.boundHistory[1:]
			}
		}
		m.draw()
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// draw projects the XY plane of the world onto the braille canvas:
// particles as dots, bond lines from each constituent quark to its hadron
// center, valid hadrons and nuclei as shells.
func (m *Model) draw() {
	m.canvas.Clear()
	w := m.eng.World
	if len(w.Particles) == 0 {
		return
	}

	minX, maxX := w.Particles[0].Pos.X, w.Particles[0].Pos.X
	minY, maxY := w.Particles[0].Pos.Y, w.Particles[0].Pos.Y
	for i := range w.Particles {
		p := &w.Particles[i]
		if p.Pos.X < minX {
			minX = p.Pos.X
		}
		if p.Pos.X > maxX {
			maxX = p.Pos.X
		}
		if p.Pos.Y < minY {
			minY = p.Pos.Y
		}
		if p.Pos.Y > maxY {
			maxY = p.Pos.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	cw, ch := float64(width*2-1), float64(height*4-1)
	px := func(x float64) int { return int((x - minX) / rangeX * cw) }
	py := func(y float64) int { return int(ch - (y-minY)/rangeY*ch) }
	scale := cw / rangeX
	if s := ch / rangeY; s < scale {
		scale = s
	}

	for i := range w.Particles {
		p := &w.Particles[i]
		m.canvas.Set(px(p.Pos.X), py(p.Pos.Y))
	}
	for h := int32(0); h < w.HadronsLive(); h++ {
		hd := &w.Hadrons[h]
		if !hd.Valid() {
			continue
		}
		cx, cy := px(hd.Center.X), py(hd.Center.Y)
		for k := 0; k < hd.NumQuarks(); k++ {
			q := hd.Quarks[k]
			if q >= 0 && int(q) < len(w.Particles) {
				qp := &w.Particles[q]
				m.canvas.DrawLine(px(qp.Pos.X), py(qp.Pos.Y), cx, cy)
			}
		}
		m.canvas.DrawCircle(cx, cy, int(hd.Radius*scale))
	}
	for n := int32(0); n < w.NucleiLive(); n++ {
		nc := &w.Nuclei[n]
		if nc.Valid() {
			m.canvas.DrawCircle(px(nc.Center.X), py(nc.Center.Y), int(nc.Radius*scale))
		}
	}

	if pos, ok := w.ResolveSelection(m.selection); ok {
		x, y := px(pos.X), py(pos.Y)
		m.canvas.DrawLine(x-3, y, x+3, y)
		m.canvas.DrawLine(x, y-3, x, y+3)
	}
}

// nextSelection cycles hadron slots, then nucleus slots, then back to no
// selection, skipping retired records.
func nextSelection(w *world.World, sel uint32) uint32 {
	kind := world.SelectKind(sel >> 24)
	idx := int32(sel & 0xffffff)

	start := int32(0)
	if kind == world.SelectHadron {
		start = idx + 1
	}
	if kind == world.SelectNone || kind == world.SelectHadron {
		for h := start; h < w.HadronsLive(); h++ {
			if w.Hadrons[h].Valid() {
				return world.PackSelection(world.SelectHadron, h)
			}
		}
		start = 0
	} else {
		start = idx + 1
	}
	for n := start; n < w.NucleiLive(); n++ {
		if w.Nuclei[n].Valid() {
			return world.PackSelection(world.SelectNucleus, n)
		}
	}
	return world.PackSelection(world.SelectNone, 0)
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("QUARKSIM") + "\n")

	status := statusRunning.Render("RUNNING")
	if !m.running {
		status = statusPaused.Render("PAUSED")
	}
	s.WriteString(status + fmt.Sprintf("  x%d/tick", m.stepsPerTick))
	if m.eng.RebuildNuclei {
		s.WriteString("  [rebuild]")
	}
	s.WriteString("\n\n")

	if len(m.boundHistory) > 1 {
		chart := asciigraph.Plot(m.boundHistory,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Bound fraction"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	st := m.stats
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Frame", fmt.Sprintf("%d", st.Frame))
	row("Time", fmt.Sprintf("%.2f", st.Time))
	row("Free quarks", fmt.Sprintf("%d", st.FreeQuarks))
	row("Protons", fmt.Sprintf("%d", st.Protons))
	row("Neutrons", fmt.Sprintf("%d", st.Neutrons))
	row("Mesons", fmt.Sprintf("%d", st.Mesons))
	row("Nuclei", fmt.Sprintf("%d", st.Nuclei))
	row("Max nucleus", fmt.Sprintf("%d", st.MaxNucleus))
	row("Kinetic", fmt.Sprintf("%.2f", st.Kinetic))
	switch world.SelectKind(m.selection >> 24) {
	case world.SelectHadron:
		row("Selected", fmt.Sprintf("hadron %d", m.selection&0xffffff))
	case world.SelectNucleus:
		row("Selected", fmt.Sprintf("nucleus %d", m.selection&0xffffff))
	}
	s.WriteString(labelStyle.Render("Bound") + ProgressBar(st.BoundFraction, 16) + "\n")

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Speed N:Rebuild Tab:Select ?:Help"))

	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Restart the run          ║
║  Q        - Quit                     ║
║  + / -    - Frames per tick          ║
║  N        - Toggle nucleus rebuild   ║
║  Tab      - Cycle hadron/nucleus     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
