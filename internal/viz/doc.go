// Package viz renders the particle world in the terminal: a braille
// canvas for the live field view, lipgloss-styled panels for run stats and
// asciigraph charts for per-frame series.
package viz
