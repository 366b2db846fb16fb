package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/viz"
)

const (
	background  = "#0a0a0a"
	anchorColor = "#ffcc00"
	bodyColor   = "#00ff00"
)

var trailColors = []string{"#00ff00", "#00ccff", "#ff00ff", "#ff6600", "#ffffff"}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Dots()
	var sb strings.Builder
	header(&sb, float64(w)*scale, float64(h)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", bodyColor)

	dotRadius := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// frame maps the x/y plane onto a width by height image centered on the
// anchor, with extent the largest absolute coordinate plus 10%.
type frame struct {
	width, height float64
	extent        float64
}

func newFrame(width, height int, extent float64) frame {
	if extent == 0 {
		extent = 1
	}
	return frame{width: float64(width), height: float64(height), extent: extent * 1.1}
}

func (f frame) point(p mgl32.Vec3) (float64, float64) {
	side := math.Min(f.width, f.height) / 2
	x := f.width/2 + float64(p.X())/f.extent*side
	y := f.height/2 - float64(p.Y())/f.extent*side
	return x, y
}

func extentOf(pts []mgl32.Vec3) float64 {
	var m float64
	for _, p := range pts {
		m = math.Max(m, math.Max(math.Abs(float64(p.X())), math.Abs(float64(p.Y()))))
	}
	return m
}

// PositionsToSVG draws a top-down view of pos. Index 0 is drawn as the
// anchor.
func PositionsToSVG(pos []mgl32.Vec3, width, height int) string {
	if len(pos) == 0 {
		return ""
	}

	f := newFrame(width, height, extentOf(pos))
	var sb strings.Builder
	header(&sb, float64(width), float64(height))

	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", bodyColor)
	for _, p := range pos[1:] {
		x, y := f.point(p)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"1.5\"/>\n", x, y)
	}
	sb.WriteString("</g>\n")

	x, y := f.point(pos[0])
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"5\" fill=\"%s\"/>\n", x, y, anchorColor)

	sb.WriteString("</svg>")
	return sb.String()
}

// TrailsToSVG draws each recorded trail as a polyline over a top-down view.
func TrailsToSVG(t *Trails, width, height int) string {
	paths := t.Paths()
	var all []mgl32.Vec3
	for _, p := range paths {
		all = append(all, p...)
	}
	if len(all) == 0 {
		return ""
	}

	f := newFrame(width, height, extentOf(all))
	var sb strings.Builder
	header(&sb, float64(width), float64(height))

	for i, path := range paths {
		if len(path) < 2 {
			continue
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, trailColors[i%len(trailColors)])
		for j, p := range path {
			x, y := f.point(p)
			if j == 0 {
				fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	x, y := f.point(mgl32.Vec3{})
	fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"5\" fill=\"%s\"/>\n", x, y, anchorColor)

	sb.WriteString("</svg>")
	return sb.String()
}
