package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// Terminal plots for run diagnostics. All of these are pure string
// builders; the caller decides where they go.

func EnergyPlot(energies []float64, width, height int) string {
	if len(energies) < 2 {
		return "(not enough samples to plot)"
	}
	return asciigraph.Plot(energies,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("total energy over time"))
}

func SeparationPlot(separations []float64, width, height int) string {
	if len(separations) < 2 {
		return "(not enough samples to plot)"
	}
	return asciigraph.Plot(separations,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("trajectory separation"))
}

// LogSeparationPlot plots log10 of the separation series, the natural
// scale for exponential divergence. Non-positive entries are clipped to
// the smallest positive value seen.
func LogSeparationPlot(separations []float64, width, height int) string {
	if len(separations) < 2 {
		return "(not enough samples to plot)"
	}

	floor := math.Inf(1)
	for _, s := range separations {
		if s > 0 && s < floor {
			floor = s
		}
	}
	if math.IsInf(floor, 1) {
		return "(no positive separations to plot)"
	}

	logs := make([]float64, len(separations))
	for i, s := range separations {
		if s <= 0 {
			s = floor
		}
		logs[i] = math.Log10(s)
	}
	return asciigraph.Plot(logs,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("log10 trajectory separation"))
}
