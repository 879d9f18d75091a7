package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/san-kum/stepbridge/internal/analysis"
	"github.com/san-kum/stepbridge/internal/viz"
)

var ErrTooFewPoints = errors.New("trajectory needs at least two points")

const background = "#0a0a0a"

// Canvas writes every set dot of a braille canvas as an SVG circle; each
// sub-pixel becomes a scale x scale square.
func Canvas(w io.Writer, c *viz.Canvas, scale float64, fill string) error {
	if c == nil {
		return errors.New("nil canvas")
	}
	cols, rows := c.Width*2, c.Height*4
	width, height := float64(cols)*scale, float64(rows)*scale

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="%s">
`, width, height, width, height, background, fill)

	r := scale * 0.4
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// Trajectory writes points as a single polyline scaled to fit width x
// height with a 10% margin. Y grows upward.
func Trajectory(w io.Writer, points []analysis.Point, width, height int, stroke string) error {
	if len(points) < 2 {
		return ErrTooFewPoints
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	rangeX, rangeY := span(maxX-minX), span(maxY-minY)
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, background, stroke)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(bw, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
		}
	}
	bw.WriteString("\"/>\n</svg>\n")
	return bw.Flush()
}

func span(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
