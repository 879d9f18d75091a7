// Package export renders recorded flights as SVG: a polyline for a pair of
// state fields, or the dots of a braille scene canvas.
package export
