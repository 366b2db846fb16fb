package viz

import (
	"github.com/guptarohit/asciigraph"
)

// EnergyPlot charts a total energy history; it returns "" for fewer than
// two samples.
func EnergyPlot(hist []float64, width, height int) string {
	if len(hist) < 2 {
		return ""
	}
	return asciigraph.Plot(hist,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("Total energy"))
}
