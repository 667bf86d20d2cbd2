package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/quarksim/internal/world"
)

// SnapshotSVG renders an XY projection of the current world state:
// particles as dots colored by species, valid hadrons and nuclei as
// enclosing shells.
func SnapshotSVG(w *world.World, width, height int) string {
	if w == nil || len(w.Particles) == 0 {
		return ""
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
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	px := func(x float64) float64 { return (x - minX) / rangeX * float64(width) }
	py := func(y float64) float64 { return float64(height) - (y-minY)/rangeY*float64(height) }
	scale := float64(width) / rangeX
	if s := float64(height) / rangeY; s < scale {
		scale = s
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for n := int32(0); n < w.NucleiLive(); n++ {
		nc := &w.Nuclei[n]
		if !nc.Valid() {
			continue
		}
		sb.WriteString(fmt.Sprintf(
			"<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"none\" stroke=\"#ff9933\" stroke-width=\"1.2\"/>\n",
			px(nc.Center.X), py(nc.Center.Y), nc.Radius*scale))
	}

	for h := int32(0); h < w.HadronsLive(); h++ {
		hd := &w.Hadrons[h]
		if !hd.Valid() {
			continue
		}
		sb.WriteString(fmt.Sprintf(
			"<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"none\" stroke=\"#dddd44\" stroke-width=\"0.8\"/>\n",
			px(hd.Center.X), py(hd.Center.Y), hd.Radius*scale))
	}

	for i := range w.Particles {
		p := &w.Particles[i]
		sb.WriteString(fmt.Sprintf(
			"<circle cx=\"%.1f\" cy=\"%.1f\" r=\"2.0\" fill=\"%s\"/>\n",
			px(p.Pos.X), py(p.Pos.Y), particleFill(p)))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func particleFill(p *world.Particle) string {
	switch p.Flavor {
	case world.Electron:
		return "#4aa8ff"
	case world.Carrier:
		return "#777777"
	}
	switch p.Color {
	case world.Red, world.AntiRed:
		return "#ff5555"
	case world.Green, world.AntiGreen:
		return "#55ff55"
	case world.Blue, world.AntiBlue:
		return "#6688ff"
	default:
		return "#cccccc"
	}
}
